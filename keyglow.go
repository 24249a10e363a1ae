package keyglow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/keyglow/internal/colormap"
	"github.com/jpalmerr/keyglow/internal/engine"
	"github.com/jpalmerr/keyglow/internal/poll"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	minPollInterval     = 10 * time.Millisecond
)

// KeyGlow is the main orchestrator for parameter-to-indicator
// synchronization.
//
// KeyGlow keeps the per-key colors of a lighting device in step with the
// live values of bound mixer parameters, and turns key releases into
// parameter toggles. It is created using [New] with functional options
// and started with [KeyGlow.Start].
//
// The typical lifecycle is:
//
//	kg, err := keyglow.New(
//	    keyglow.WithBinding(b),
//	    keyglow.WithMixer(mixer),
//	    keyglow.WithLighting(device),
//	    keyglow.WithInput(device),
//	)
//	if err != nil {
//	    slog.Error("failed to create keyglow", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	kg.Start(ctx) // blocks until context cancelled or input stops
//
// The caller controls the lifecycle via the context. Cancel the context
// to trigger graceful shutdown; closing the input source's event channel
// has the same effect.
type KeyGlow struct {
	bindings        []Binding
	pollInterval    time.Duration
	input           InputSource
	logger          *slog.Logger
	updateCallbacks []func(UpdateEvent)
	engine          *engine.Engine
}

// New creates a new [KeyGlow] instance with the given options.
//
// At least one binding must be configured via [WithBinding] or
// [WithBindings], and the mixer, lighting, and input collaborators are
// all required. The poll interval defaults to 100 milliseconds.
//
// Returns an error if a required collaborator is missing, if any option
// is invalid, or if two bindings share a trigger (trigger values must be
// unique so a key release maps to exactly one parameter).
func New(opts ...Option) (*KeyGlow, error) {
	cfg := &kgConfig{
		bindings:     []Binding{},
		pollInterval: defaultPollInterval,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.bindings) == 0 {
		return nil, errors.New("at least one binding is required")
	}
	if cfg.mixer == nil {
		return nil, errors.New("a mixer is required (use WithMixer)")
	}
	if cfg.lighting == nil {
		return nil, errors.New("a lighting device is required (use WithLighting)")
	}
	if cfg.input == nil {
		return nil, errors.New("an input source is required (use WithInput)")
	}

	// validate trigger uniqueness (a key release must address one binding)
	seen := make(map[int]string, len(cfg.bindings))
	for _, b := range cfg.bindings {
		if prev, dup := seen[b.Trigger()]; dup {
			return nil, fmt.Errorf("duplicate trigger %d: bound to both %q and %q", b.Trigger(), prev, b.Name())
		}
		seen[b.Trigger()] = b.Name()
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	kg := &KeyGlow{
		bindings:        cfg.bindings,
		pollInterval:    cfg.pollInterval,
		input:           cfg.input,
		logger:          logger,
		updateCallbacks: cfg.updateCallbacks,
	}
	kg.engine = engine.New(
		kg.toEngineBindings(),
		mixerAdapter{cfg.mixer},
		lightingAdapter{cfg.lighting},
		logger,
	)
	return kg, nil
}

// Start initializes the indicators and runs the synchronization session.
//
// Start is a blocking call. During execution:
//
//   - Every binding's current mixer value is read once and its color
//     pushed to its indicator.
//   - A poll loop reconciles all bindings at the configured interval,
//     catching changes made through external control surfaces.
//   - Key-release events from the input source toggle their bound
//     parameters.
//
// Start returns when the provided context is cancelled or when the input
// source's event channel closes (the listener stopped). An in-flight
// reconciliation pass always runs to completion first. Returns nil on
// graceful shutdown.
func (kg *KeyGlow) Start(ctx context.Context) error {
	kg.logger.Info("keyglow starting", "binding_count", len(kg.bindings))
	kg.logger.Info("polling configured", "interval", kg.pollInterval.String())

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	for _, u := range kg.engine.Initialize(ctx) {
		kg.emit(u)
	}

	loop := poll.NewLoop(kg.engine, kg.pollInterval, kg.logger)
	loop.Start(ctx)

	// track the updates consumer goroutine to ensure clean shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for u := range loop.Updates() {
			kg.emit(u)
		}
	}()

	// cleanup function ensures the loop is stopped and all updates drained
	cleanup := func() {
		loop.Stop()
		wg.Wait()
	}

	events := kg.input.Events()
	for {
		select {
		case <-ctx.Done():
			cleanup()
			kg.logger.Info("keyglow stopped")
			return nil
		case ev, ok := <-events:
			if !ok {
				cleanup()
				kg.logger.Info("input listener stopped, keyglow stopped")
				return nil
			}
			if u, handled := kg.engine.Toggle(ctx, ev.Code); handled {
				kg.emit(u)
			}
		}
	}
}

// Snapshot returns the last-known state of every binding.
//
// Before Start has initialized the engine the slice is empty. The
// returned slice is a copy ordered by trigger; modifying it does not
// affect KeyGlow.
func (kg *KeyGlow) Snapshot() []ParameterState {
	entries := kg.engine.States()
	states := make([]ParameterState, len(entries))
	for i, e := range entries {
		states[i] = ParameterState{
			Trigger:   e.Trigger,
			Name:      e.Name,
			Location:  ParamLocation{Strip: e.Strip, Param: e.Param},
			Indicator: e.Indicator,
			Kind:      Kind(e.Kind),
			BoolValue: e.BoolValue,
			GainValue: e.GainValue,
			Color:     fromColormap(e.Color),
			UpdatedAt: e.UpdatedAt,
		}
	}
	return states
}

// Bindings returns a copy of the configured bindings.
//
// The returned slice is a copy; modifying it does not affect KeyGlow.
// Each [Binding] in the slice is immutable.
func (kg *KeyGlow) Bindings() []Binding {
	cp := make([]Binding, len(kg.bindings))
	copy(cp, kg.bindings)
	return cp
}

// PollInterval returns the configured interval between reconciliation
// passes.
func (kg *KeyGlow) PollInterval() time.Duration {
	return kg.pollInterval
}

// toEngineBindings converts the Binding slice to engine.Binding values.
func (kg *KeyGlow) toEngineBindings() []engine.Binding {
	result := make([]engine.Binding, len(kg.bindings))
	for i, b := range kg.bindings {
		eb := engine.Binding{
			Trigger:   b.Trigger(),
			Name:      b.Name(),
			Location:  engine.Location{Strip: b.Location().Strip, Param: b.Location().Param},
			Indicator: b.Indicator(),
			Kind:      engine.Kind(b.Kind()),
		}
		if origin, end, ok := b.GainRange(); ok {
			eb.Origin = origin
			eb.End = end
		}
		result[i] = eb
	}
	return result
}

// emit logs one update and fans it out to the registered callbacks.
func (kg *KeyGlow) emit(u engine.Update) {
	ev := updateToEvent(u)

	logAttrs := []any{
		"binding", ev.Name,
		"trigger", ev.Trigger,
		"source", ev.Source,
	}
	switch ev.Kind {
	case KindBoolean:
		logAttrs = append(logAttrs, "value", ev.BoolValue)
	case KindGain:
		logAttrs = append(logAttrs, "value", ev.GainValue)
	}
	// DEBUG level: updates fire on every keypress and external change
	kg.logger.Debug("parameter update", logAttrs...)

	for _, cb := range kg.updateCallbacks {
		invokeCallbackSafe(cb, ev, kg.logger)
	}
}

// updateToEvent converts an internal engine update to the public API type.
func updateToEvent(u engine.Update) UpdateEvent {
	return UpdateEvent{
		Trigger:    u.Trigger,
		Name:       u.Name,
		Location:   ParamLocation{Strip: u.Location.Strip, Param: u.Location.Param},
		Indicator:  u.Indicator,
		Kind:       Kind(u.Kind),
		BoolValue:  u.BoolValue,
		GainValue:  u.GainValue,
		Color:      fromColormap(u.Color),
		Source:     Source(u.Source),
		ObservedAt: u.ObservedAt,
	}
}

// invokeCallbackSafe calls an update callback with panic recovery.
// Panics are logged with a correlation id but do not propagate.
func invokeCallbackSafe(cb func(UpdateEvent), ev UpdateEvent, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			logger.Error("update callback panicked",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"binding", ev.Name,
				"stack", string(debug.Stack()),
			)
		}
	}()
	cb(ev)
}

// mixerAdapter bridges the public Mixer interface to the engine-internal
// one, converting location types.
type mixerAdapter struct {
	m Mixer
}

func (a mixerAdapter) ReadBool(ctx context.Context, loc engine.Location) (bool, error) {
	return a.m.ReadBool(ctx, ParamLocation{Strip: loc.Strip, Param: loc.Param})
}

func (a mixerAdapter) WriteBool(ctx context.Context, loc engine.Location, v bool) error {
	return a.m.WriteBool(ctx, ParamLocation{Strip: loc.Strip, Param: loc.Param}, v)
}

func (a mixerAdapter) ReadGain(ctx context.Context, loc engine.Location) (float64, error) {
	return a.m.ReadGain(ctx, ParamLocation{Strip: loc.Strip, Param: loc.Param})
}

func (a mixerAdapter) WriteGain(ctx context.Context, loc engine.Location, v float64) error {
	return a.m.WriteGain(ctx, ParamLocation{Strip: loc.Strip, Param: loc.Param}, v)
}

// lightingAdapter bridges the public Lighting interface to the
// engine-internal one, converting color types.
type lightingAdapter struct {
	l Lighting
}

func (a lightingAdapter) SetColor(ctx context.Context, indicator int, c colormap.RGB, alpha uint8) error {
	return a.l.SetColor(ctx, indicator, fromColormap(c), alpha)
}
