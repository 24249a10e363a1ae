// Package config provides YAML configuration parsing for KeyGlow.
//
// This package enables running KeyGlow as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	poll_interval: 100ms
//
//	mixer:
//	  send: ${MIXER_HOST:-127.0.0.1}:10024
//	  listen: 0.0.0.0:9000
//
//	device:
//	  port: Launchpad
//
//	bindings:
//	  - name: Mic to B1
//	    trigger: 97
//	    strip: 0
//	    param: B1
//	    indicator: 116
//	  - trigger: 104
//	    strip: 5
//	    param: gain
//	    indicator: 110
//	    kind: gain
//	    range: [0.0, -30.0]
//
//	banks:
//	  - name: Send A1
//	    param: A1
//	    strips: [5, 6, 7]
//	    trigger_base: 100
//	    indicator_base: 113
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// minPollInterval is the minimum allowed reconciliation interval.
// This prevents accidental CPU thrashing with overly aggressive polling.
const minPollInterval = 10 * time.Millisecond

// Config is the root configuration structure for KeyGlow.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// PollInterval is the time between reconciliation passes.
	// Accepts duration strings like "100ms", "1s". Defaults to 100ms.
	PollInterval Duration `yaml:"poll_interval"`

	// Mixer configures the OSC mixer transport.
	Mixer MixerConfig `yaml:"mixer"`

	// Device configures the lighting/input device.
	Device DeviceConfig `yaml:"device"`

	// Bindings defines individual key-to-parameter bindings.
	Bindings []BindingConfig `yaml:"bindings"`

	// Banks defines binding banks that expand one declaration into one
	// binding per strip.
	Banks []BankConfig `yaml:"banks"`
}

// MixerConfig addresses the mixer's OSC endpoints.
type MixerConfig struct {
	// Send is the host:port the mixer listens on for parameter writes.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Send string `yaml:"send"`

	// Listen is the local host:port for the mixer's feedback messages.
	// Supports environment variable substitution.
	Listen string `yaml:"listen"`
}

// DeviceConfig selects the lighting/input device.
type DeviceConfig struct {
	// Port is a substring of the device's MIDI port name.
	// Supports environment variable substitution.
	Port string `yaml:"port"`
}

// BindingConfig defines a single key-to-parameter binding.
type BindingConfig struct {
	// Name is the display name used in logs. Defaults to the location.
	Name string `yaml:"name"`

	// Trigger is the raw key code reported by the input device.
	Trigger int `yaml:"trigger"`

	// Strip is the zero-based mixer channel strip index.
	Strip int `yaml:"strip"`

	// Param is the parameter name within the strip.
	Param string `yaml:"param"`

	// Indicator is the light element index on the device.
	Indicator int `yaml:"indicator"`

	// Kind is "boolean" or "gain". Defaults to boolean.
	Kind string `yaml:"kind"`

	// Range is the [origin, end] reference pair; required with exactly
	// two values when kind is gain, and rejected otherwise.
	Range []float64 `yaml:"range"`
}

// BankConfig defines a binding bank: one declaration expanded into one
// binding per strip, with triggers and indicators assigned by arithmetic
// offset from a base.
type BankConfig struct {
	// Name is the base display name for generated bindings.
	Name string `yaml:"name"`

	// Param is the parameter name bound on every strip.
	Param string `yaml:"param"`

	// Strips lists the channel strip indices to bind.
	Strips []int `yaml:"strips"`

	// TriggerBase is the key code for the first strip; the i-th strip
	// uses TriggerBase+i.
	TriggerBase int `yaml:"trigger_base"`

	// IndicatorBase is the light element index for the first strip.
	IndicatorBase int `yaml:"indicator_base"`

	// Kind is "boolean" or "gain". Defaults to boolean.
	Kind string `yaml:"kind"`

	// Range is the [origin, end] reference pair for gain banks.
	Range []float64 `yaml:"range"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with
// environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the mixer addresses and the
// device port. The poll interval defaults to 100ms.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.PollInterval == 0 {
		cfg.PollInterval = Duration(100 * time.Millisecond)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the
// config, failing fast on the first problem.
func (c *Config) expandAndValidate() error {
	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}

	if c.Mixer.Send == "" {
		return errors.New("mixer.send is required")
	}
	if c.Mixer.Listen == "" {
		return errors.New("mixer.listen is required")
	}
	if c.Device.Port == "" {
		return errors.New("device.port is required")
	}

	for _, field := range []struct {
		name  string
		value *string
	}{
		{"mixer.send", &c.Mixer.Send},
		{"mixer.listen", &c.Mixer.Listen},
		{"device.port", &c.Device.Port},
	} {
		expanded, err := expandEnvVars(*field.value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}

	for i := range c.Bindings {
		b := &c.Bindings[i]
		label := fmt.Sprintf("bindings[%d]", i)
		if b.Name != "" {
			label = fmt.Sprintf("bindings[%d] (%s)", i, b.Name)
		}

		if b.Trigger < 0 {
			return fmt.Errorf("%s: trigger must be non-negative, got %d", label, b.Trigger)
		}
		if b.Strip < 0 {
			return fmt.Errorf("%s: strip must be non-negative, got %d", label, b.Strip)
		}
		if b.Param == "" {
			return fmt.Errorf("%s: param is required", label)
		}
		if b.Indicator < 0 {
			return fmt.Errorf("%s: indicator must be non-negative, got %d", label, b.Indicator)
		}
		if err := validateKindAndRange(b.Kind, b.Range, label); err != nil {
			return err
		}
	}

	for i := range c.Banks {
		bank := &c.Banks[i]
		label := fmt.Sprintf("banks[%d]", i)
		if bank.Name != "" {
			label = fmt.Sprintf("banks[%d] (%s)", i, bank.Name)
		}

		if bank.Name == "" {
			return fmt.Errorf("%s: name is required", label)
		}
		if bank.Param == "" {
			return fmt.Errorf("%s: param is required", label)
		}
		if len(bank.Strips) == 0 {
			return fmt.Errorf("%s: at least one strip is required", label)
		}
		if bank.TriggerBase < 0 {
			return fmt.Errorf("%s: trigger_base must be non-negative, got %d", label, bank.TriggerBase)
		}
		if bank.IndicatorBase < 0 {
			return fmt.Errorf("%s: indicator_base must be non-negative, got %d", label, bank.IndicatorBase)
		}
		seen := make(map[int]struct{}, len(bank.Strips))
		for _, s := range bank.Strips {
			if s < 0 {
				return fmt.Errorf("%s: strip must be non-negative, got %d", label, s)
			}
			if _, dup := seen[s]; dup {
				return fmt.Errorf("%s: duplicate strip %d", label, s)
			}
			seen[s] = struct{}{}
		}
		if err := validateKindAndRange(bank.Kind, bank.Range, label); err != nil {
			return err
		}
	}

	if len(c.Bindings) == 0 && len(c.Banks) == 0 {
		return errors.New("at least one binding or bank must be defined")
	}

	return nil
}

// validateKindAndRange checks the kind enum and the structural validity
// of the reference pair: exactly two endpoints when kind is gain, none
// otherwise.
func validateKindAndRange(kind string, rng []float64, label string) error {
	switch kind {
	case "", "boolean":
		if len(rng) != 0 {
			return fmt.Errorf("%s: range is only valid for gain bindings", label)
		}
	case "gain":
		if len(rng) != 2 {
			return fmt.Errorf("%s: gain bindings require a range of exactly two values [origin, end], got %d", label, len(rng))
		}
	default:
		return fmt.Errorf("%s: kind must be \"boolean\" or \"gain\", got %q", label, kind)
	}
	return nil
}
