package keyglow

import (
	"errors"
	"fmt"
)

// Kind discriminates the two parameter variants a binding can address.
//
// Using a string type keeps logs human-readable while the constants
// preserve type safety. A binding's kind determines which value type the
// engine tracks and which toggle rule applies; kind-specific fields (the
// gain reference pair) are only settable through the matching constructor.
type Kind string

const (
	// KindBoolean is an on/off parameter such as a mute or a send enable.
	KindBoolean Kind = "boolean"

	// KindGain is a continuous parameter colored along a gradient
	// between an (origin, end) reference pair.
	KindGain Kind = "gain"
)

// String returns the string representation of the kind.
// This implements the fmt.Stringer interface.
func (k Kind) String() string {
	return string(k)
}

// ParamLocation addresses one mixer parameter: a channel strip index plus
// a parameter name within that strip.
type ParamLocation struct {
	// Strip is the zero-based channel strip index.
	Strip int

	// Param is the parameter name, e.g. "mute", "gain", "A1".
	Param string
}

// String returns the location in "strip[N].param" form.
func (l ParamLocation) String() string {
	return fmt.Sprintf("strip[%d].%s", l.Strip, l.Param)
}

// Binding links one input trigger to one mixer parameter and one
// indicator.
//
// Binding is immutable after creation via [NewBoolBinding] or
// [NewGainBinding]. All fields are private with getter methods, ensuring
// a binding cannot be modified after construction. Trigger values must be
// unique across all bindings passed to [New]; uniqueness is validated
// there, not here.
type Binding struct {
	trigger   int
	name      string
	location  ParamLocation
	indicator int
	kind      Kind
	origin    float64
	end       float64
}

// Trigger returns the input key code that toggles this binding.
func (b Binding) Trigger() int {
	return b.trigger
}

// Name returns the binding's display name, used in logs and updates.
// Defaults to the location string if not set via [WithName].
func (b Binding) Name() string {
	return b.name
}

// Location returns the bound mixer parameter's address.
func (b Binding) Location() ParamLocation {
	return b.location
}

// Indicator returns the addressable index of the bound light element.
func (b Binding) Indicator() int {
	return b.indicator
}

// Kind returns the binding's parameter variant.
func (b Binding) Kind() Kind {
	return b.kind
}

// GainRange returns the (origin, end) reference pair for gain bindings.
// ok is false for boolean bindings, which carry no reference pair.
func (b Binding) GainRange() (origin, end float64, ok bool) {
	if b.kind != KindGain {
		return 0, 0, false
	}
	return b.origin, b.end, true
}

// NewBoolBinding creates a [Binding] for an on/off parameter.
//
// The trigger is the raw key code the input device reports on release;
// the indicator is the light element index on the lighting device.
//
// Example:
//
//	b, err := keyglow.NewBoolBinding(97, keyglow.ParamLocation{Strip: 0, Param: "B1"}, 116)
func NewBoolBinding(trigger int, loc ParamLocation, indicator int, opts ...BindingOption) (Binding, error) {
	return newBinding(trigger, loc, indicator, KindBoolean, 0, 0, opts)
}

// NewGainBinding creates a [Binding] for a continuous parameter with the
// reference pair (origin, end).
//
// The pair may be given in either order; ascending (0.0, 0.40) and
// descending (0.0, -30.0) ranges both map origin to full green and end to
// full red. A toggle on a gain binding flips between exactly these two
// values, snapping to end from any other value.
//
// Example:
//
//	b, err := keyglow.NewGainBinding(104, keyglow.ParamLocation{Strip: 5, Param: "gain"}, 110, 0.0, -30.0)
func NewGainBinding(trigger int, loc ParamLocation, indicator int, origin, end float64, opts ...BindingOption) (Binding, error) {
	return newBinding(trigger, loc, indicator, KindGain, origin, end, opts)
}

func newBinding(trigger int, loc ParamLocation, indicator int, kind Kind, origin, end float64, opts []BindingOption) (Binding, error) {
	if trigger < 0 {
		return Binding{}, fmt.Errorf("trigger must be non-negative, got %d", trigger)
	}
	if loc.Strip < 0 {
		return Binding{}, fmt.Errorf("strip index must be non-negative, got %d", loc.Strip)
	}
	if loc.Param == "" {
		return Binding{}, errors.New("parameter name cannot be empty")
	}
	if indicator < 0 {
		return Binding{}, fmt.Errorf("indicator must be non-negative, got %d", indicator)
	}

	cfg := &bindingConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Binding{}, err
		}
	}

	name := cfg.name
	if name == "" {
		name = loc.String()
	}

	return Binding{
		trigger:   trigger,
		name:      name,
		location:  loc,
		indicator: indicator,
		kind:      kind,
		origin:    origin,
		end:       end,
	}, nil
}
