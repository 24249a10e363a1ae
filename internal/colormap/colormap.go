// Package colormap computes indicator colors from mixer parameter values.
//
// This package is internal to KeyGlow and contains only pure functions:
// the same inputs always produce the same color, no input produces an
// error, and out-of-range values are clamped rather than rejected.
//
// The main components are:
//
//   - [RGB]: an 8-bit-per-channel color value
//   - [ForBoolean]: fixed on/off colors for boolean parameters
//   - [ForGain]: gradient mapping for continuous parameters
//
// Users of the keyglow library should not need to interact with this
// package directly. The root package re-exports the mapping functions.
package colormap

// RGB is an 8-bit-per-channel color.
//
// This is the colormap-internal representation, decoupled from the public
// keyglow.RGB type to allow independent evolution.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Fixed colors for boolean parameters and gradient endpoints.
var (
	// On is the color shown when a boolean parameter is set.
	On = RGB{G: 255}

	// Off is the color shown when a boolean parameter is cleared.
	Off = RGB{R: 255}

	// BelowOrigin is the color shown when a continuous value lies
	// outside its reference range on the origin side.
	BelowOrigin = RGB{B: 255}

	// End is the color shown at (and beyond) the end reference point.
	End = RGB{R: 255}
)

// ForBoolean returns the fixed on/off color for a boolean parameter.
func ForBoolean(state bool) RGB {
	if state {
		return On
	}
	return Off
}

// ForGain maps a continuous value onto a green-to-red gradient defined by
// the reference pair (origin, end).
//
// The mapping is order-invariant: the ratio is 0 at origin and 1 at end
// whether origin < end or origin > end. Values outside the range on the
// origin side return [BelowOrigin]; values outside on the end side return
// [End]. A degenerate range (origin == end) returns [End].
//
// Interpolated colors move on the red and green channels only; blue is
// always zero between origin and end.
func ForGain(value, origin, end float64) RGB {
	if origin == end {
		return End
	}

	lo, hi := origin, end
	if lo > hi {
		lo, hi = hi, lo
	}

	if value < lo {
		if origin < end {
			return BelowOrigin // below origin in an ascending range
		}
		return End // beyond end in a descending range
	}
	if value > hi {
		if origin < end {
			return End
		}
		return BelowOrigin
	}

	ratio := (value - origin) / (end - origin)
	ratio = clamp(ratio, 0, 1)

	return RGB{
		R: uint8(255 * ratio),
		G: uint8(255 * (1 - ratio)),
	}
}

// clamp limits v to the range [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
