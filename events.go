package keyglow

import (
	"context"
	"time"
)

// Source identifies what caused an [UpdateEvent].
type Source string

const (
	// SourceInit marks updates from the initial state read at startup.
	SourceInit Source = "init"

	// SourceToggle marks updates applied in response to a keypress.
	SourceToggle Source = "toggle"

	// SourceExternal marks changes detected by a reconciliation pass,
	// i.e. made out of band through an external control surface.
	SourceExternal Source = "external"
)

// String returns the string representation of the source.
// This implements the fmt.Stringer interface.
func (s Source) String() string {
	return string(s)
}

// UpdateEvent holds the outcome of one parameter update.
//
// UpdateEvent is immutable after creation. Exactly one of BoolValue or
// GainValue is meaningful, selected by Kind. Color is the value that was
// pushed toward the indicator for this update.
type UpdateEvent struct {
	// Trigger is the key code of the binding that changed.
	Trigger int

	// Name is the binding's display name.
	Name string

	// Location is the mixer parameter that changed.
	Location ParamLocation

	// Indicator is the light element the new color was pushed to.
	Indicator int

	// Kind selects which of BoolValue or GainValue applies.
	Kind Kind

	// BoolValue is the new value for boolean bindings.
	BoolValue bool

	// GainValue is the new value for gain bindings.
	GainValue float64

	// Color is the computed indicator color for the new value.
	Color RGB

	// Source identifies what caused the update.
	Source Source

	// ObservedAt is when the engine applied or observed the change.
	ObservedAt time.Time
}

// ParameterState is the last-known state of one binding, as returned by
// [KeyGlow.Snapshot].
type ParameterState struct {
	Trigger   int
	Name      string
	Location  ParamLocation
	Indicator int
	Kind      Kind
	BoolValue bool
	GainValue float64
	Color     RGB
	UpdatedAt time.Time
}

// KeyEvent is one key-release notification from an [InputSource].
type KeyEvent struct {
	// Code is the raw key code. It toggles a parameter only if some
	// binding's trigger equals it; other codes are silently ignored.
	Code int

	// At is when the release was observed.
	At time.Time
}

// Mixer reads and writes mixer parameters. Implemented by transport
// adapters (e.g. the OSC adapter under internal/oscmixer) or by callers
// embedding KeyGlow against their own mixer API.
//
// Implementations must be safe for calls from a single goroutine at a
// time; KeyGlow serializes all access. Calls are expected to be bounded
// and fast; any transport timeout is the implementation's concern.
type Mixer interface {
	// ReadBool returns the current value of a boolean parameter.
	ReadBool(ctx context.Context, loc ParamLocation) (bool, error)

	// WriteBool sets a boolean parameter.
	WriteBool(ctx context.Context, loc ParamLocation, v bool) error

	// ReadGain returns the current value of a continuous parameter.
	ReadGain(ctx context.Context, loc ParamLocation) (float64, error)

	// WriteGain sets a continuous parameter.
	WriteGain(ctx context.Context, loc ParamLocation, v float64) error
}

// Lighting applies colors to addressable indicators on a lighting device.
//
// Indicator ids are small integers unique per device. Failures are
// treated as non-fatal by the engine: mixer-side state is never coupled
// to lighting availability.
type Lighting interface {
	// SetColor issues one color-set request for exactly one indicator.
	// Alpha is full opacity (255) for every engine-driven update.
	SetColor(ctx context.Context, indicator int, c RGB, alpha uint8) error
}

// InputSource emits key-release events from the physical input device.
//
// The events channel is closed when the underlying listener stops; this
// signals KeyGlow to shut down its poll loop and return from Start.
type InputSource interface {
	Events() <-chan KeyEvent
}
