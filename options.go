package keyglow

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// kgConfig holds mutable state during KeyGlow construction.
type kgConfig struct {
	bindings        []Binding
	pollInterval    time.Duration
	mixer           Mixer
	lighting        Lighting
	input           InputSource
	logger          *slog.Logger
	updateCallbacks []func(UpdateEvent)
}

// Option is a function that configures a [KeyGlow] instance during
// construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithBinding], [WithBindings], [WithPollInterval],
// [WithMixer], [WithLighting], [WithInput], [WithLogger],
// [WithUpdateCallback].
type Option func(*kgConfig) error

// WithBinding adds a single [Binding] to the registry.
//
// Can be called multiple times. At least one binding must be configured
// for [New] to succeed.
func WithBinding(b Binding) Option {
	return func(cfg *kgConfig) error {
		cfg.bindings = append(cfg.bindings, b)
		return nil
	}
}

// WithBindings adds multiple [Binding] values to the registry.
//
// This is a convenience function for adding several bindings at once,
// e.g. the result of [NewBindingBank]. Equivalent to calling
// [WithBinding] multiple times.
func WithBindings(bindings ...Binding) Option {
	return func(cfg *kgConfig) error {
		cfg.bindings = append(cfg.bindings, bindings...)
		return nil
	}
}

// WithPollInterval sets how often the reconciliation pass runs.
//
// Each pass sweeps all bindings once, so the interval (plus pass
// duration) bounds how stale an indicator can be after an out-of-band
// change. Defaults to 100 milliseconds if not specified.
//
// Returns an error if the duration is below 10 milliseconds.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *kgConfig) error {
		if d < minPollInterval {
			return fmt.Errorf("poll interval must be at least %s, got %s", minPollInterval, d)
		}
		cfg.pollInterval = d
		return nil
	}
}

// WithMixer sets the mixer parameter transport. Required.
func WithMixer(m Mixer) Option {
	return func(cfg *kgConfig) error {
		if m == nil {
			return errors.New("mixer cannot be nil")
		}
		cfg.mixer = m
		return nil
	}
}

// WithLighting sets the indicator transport. Required.
func WithLighting(l Lighting) Option {
	return func(cfg *kgConfig) error {
		if l == nil {
			return errors.New("lighting cannot be nil")
		}
		cfg.lighting = l
		return nil
	}
}

// WithInput sets the key-event source. Required.
//
// [KeyGlow.Start] returns when the source's events channel closes, so the
// input device's lifetime bounds the session.
func WithInput(in InputSource) Option {
	return func(cfg *kgConfig) error {
		if in == nil {
			return errors.New("input source cannot be nil")
		}
		cfg.input = in
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the KeyGlow instance.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *kgConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithUpdateCallback registers a function called on every parameter
// update: the initial push, each toggle, and each externally detected
// change.
//
// Multiple callbacks may be registered by calling WithUpdateCallback
// multiple times; they execute in registration order.
//
// IMPORTANT: Callbacks must be non-blocking. Long-running work should be
// dispatched to a separate goroutine; a blocking callback delays the
// processing of subsequent updates and input events.
//
// Callbacks are invoked synchronously. Panics within callbacks are
// recovered and logged with a correlation id; they do not crash the
// engine.
//
// Nil callbacks are silently ignored.
func WithUpdateCallback(cb func(UpdateEvent)) Option {
	return func(cfg *kgConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.updateCallbacks = append(cfg.updateCallbacks, cb)
		return nil
	}
}
