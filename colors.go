package keyglow

import "github.com/jpalmerr/keyglow/internal/colormap"

// RGB is an 8-bit-per-channel indicator color.
//
// All colors produced by KeyGlow fit this model; no other color spaces
// are supported. The alpha channel is carried separately at the
// [Lighting] boundary.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Fixed colors used by the mapping functions.
var (
	// ColorOn is shown when a boolean parameter is set.
	ColorOn = RGB{G: 255}

	// ColorOff is shown when a boolean parameter is cleared.
	ColorOff = RGB{R: 255}

	// ColorBelowOrigin is shown when a continuous value lies outside
	// its reference range on the origin side.
	ColorBelowOrigin = RGB{B: 255}

	// ColorEnd is shown at (and beyond) the end reference point.
	ColorEnd = RGB{R: 255}
)

// ColorForBoolean returns the fixed on/off color for a boolean parameter.
//
// ColorForBoolean is pure and total: it is deterministic and takes exactly
// one of two fixed values.
func ColorForBoolean(state bool) RGB {
	return fromColormap(colormap.ForBoolean(state))
}

// ColorForGain maps a continuous value onto the green-to-red gradient
// defined by the reference pair (origin, end).
//
// The mapping direction is reference-order-invariant: the result is the
// full origin color at origin and the full end color at end whether
// origin < end or origin > end. Values outside the range return
// [ColorBelowOrigin] on the origin side and [ColorEnd] on the end side;
// a degenerate range (origin == end) returns [ColorEnd].
//
// ColorForGain is pure and total: no input produces an error, and
// out-of-range values are clamped rather than rejected.
//
// Example, with origin 0.0 and end -30.0 (a descending range):
//
//	ColorForGain(0.0, 0.0, -30.0)   // full green
//	ColorForGain(-15.0, 0.0, -30.0) // half red, half green
//	ColorForGain(-30.0, 0.0, -30.0) // full red
//	ColorForGain(5.0, 0.0, -30.0)   // blue (beyond origin)
func ColorForGain(value, origin, end float64) RGB {
	return fromColormap(colormap.ForGain(value, origin, end))
}

// fromColormap converts the internal color representation to the public one.
func fromColormap(c colormap.RGB) RGB {
	return RGB{R: c.R, G: c.G, B: c.B}
}
