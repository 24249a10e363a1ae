package keyglow

import "errors"

// bindingConfig holds mutable state during Binding construction.
type bindingConfig struct {
	name string
}

// BindingOption is a function that configures a [Binding] during
// construction with [NewBoolBinding] or [NewGainBinding].
//
// BindingOption implements the functional options pattern. Options return
// an error if validation fails.
type BindingOption func(*bindingConfig) error

// WithName sets the binding's display name, used in logs and updates.
//
// If not specified, the name defaults to the location string, e.g.
// "strip[5].gain".
//
// Example:
//
//	b, err := keyglow.NewBoolBinding(97, loc, 116,
//	    keyglow.WithName("Mic to Headphones"),
//	)
//
// Returns an error if the name is empty.
func WithName(name string) BindingOption {
	return func(cfg *bindingConfig) error {
		if name == "" {
			return errors.New("binding name cannot be empty")
		}
		cfg.name = name
		return nil
	}
}
