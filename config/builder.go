package config

import (
	"fmt"

	"github.com/jpalmerr/keyglow"
)

// BuildBindings converts parsed configuration into SDK Binding objects.
//
// It processes both direct bindings and banks, returning a combined
// slice. Bank declarations expand to one binding per strip.
func BuildBindings(cfg *Config) ([]keyglow.Binding, error) {
	var bindings []keyglow.Binding

	// convert direct bindings
	for _, bc := range cfg.Bindings {
		b, err := buildBinding(bc)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	// expand banks
	for _, bank := range cfg.Banks {
		var opts []keyglow.BankOption
		if bank.Kind == "gain" {
			opts = append(opts, keyglow.WithBankGainRange(bank.Range[0], bank.Range[1]))
		}

		expanded, err := keyglow.NewBindingBank(bank.Name, bank.Param, bank.Strips, bank.TriggerBase, bank.IndicatorBase, opts...)
		if err != nil {
			return nil, fmt.Errorf("bank %q: %w", bank.Name, err)
		}
		bindings = append(bindings, expanded...)
	}

	return bindings, nil
}

// buildBinding converts a single BindingConfig to an SDK Binding.
func buildBinding(bc BindingConfig) (keyglow.Binding, error) {
	loc := keyglow.ParamLocation{Strip: bc.Strip, Param: bc.Param}

	var opts []keyglow.BindingOption
	if bc.Name != "" {
		opts = append(opts, keyglow.WithName(bc.Name))
	}

	if bc.Kind == "gain" {
		return keyglow.NewGainBinding(bc.Trigger, loc, bc.Indicator, bc.Range[0], bc.Range[1], opts...)
	}
	return keyglow.NewBoolBinding(bc.Trigger, loc, bc.Indicator, opts...)
}
