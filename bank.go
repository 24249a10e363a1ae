package keyglow

import (
	"errors"
	"fmt"
	"strings"
)

// bankConfig holds mutable state during bank expansion.
type bankConfig struct {
	gain   bool
	origin float64
	end    float64
}

// BankOption is a function that configures a binding bank during
// expansion with [NewBindingBank].
type BankOption func(*bankConfig) error

// WithBankGainRange makes every binding in the bank a gain binding with
// the given (origin, end) reference pair. Without this option the bank
// expands to boolean bindings.
func WithBankGainRange(origin, end float64) BankOption {
	return func(cfg *bankConfig) error {
		cfg.gain = true
		cfg.origin = origin
		cfg.end = end
		return nil
	}
}

// NewBindingBank creates one binding per strip for the same parameter
// name, assigning triggers and indicators by arithmetic offset.
//
// The i-th strip in the list is bound to trigger triggerBase+i and
// indicator indicatorBase+i. Each binding is named "Base Name (strip N)".
// This replaces repetitive per-strip binding declarations for rows of
// identical controls.
//
// Example:
//
//	// sends A1 on strips 5-7, keys 100-102, pads 113-115
//	bindings, err := keyglow.NewBindingBank("Send A1", "A1", []int{5, 6, 7}, 100, 113)
//	// usable with WithBindings(bindings...)
func NewBindingBank(baseName, param string, strips []int, triggerBase, indicatorBase int, opts ...BankOption) ([]Binding, error) {
	if strings.TrimSpace(baseName) == "" {
		return nil, errors.New("base name cannot be empty")
	}
	if param == "" {
		return nil, errors.New("parameter name cannot be empty")
	}
	if len(strips) == 0 {
		return nil, errors.New("at least one strip is required")
	}
	if triggerBase < 0 || indicatorBase < 0 {
		return nil, errors.New("trigger and indicator bases must be non-negative")
	}

	seen := make(map[int]bool, len(strips))
	for _, s := range strips {
		if s < 0 {
			return nil, fmt.Errorf("strip index must be non-negative, got %d", s)
		}
		if seen[s] {
			return nil, fmt.Errorf("duplicate strip index: %d", s)
		}
		seen[s] = true
	}

	cfg := &bankConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	bindings := make([]Binding, 0, len(strips))
	for i, strip := range strips {
		loc := ParamLocation{Strip: strip, Param: param}
		name := fmt.Sprintf("%s (strip %d)", baseName, strip)

		var (
			b   Binding
			err error
		)
		if cfg.gain {
			b, err = NewGainBinding(triggerBase+i, loc, indicatorBase+i, cfg.origin, cfg.end, WithName(name))
		} else {
			b, err = NewBoolBinding(triggerBase+i, loc, indicatorBase+i, WithName(name))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create binding %q: %w", name, err)
		}
		bindings = append(bindings, b)
	}

	return bindings, nil
}
