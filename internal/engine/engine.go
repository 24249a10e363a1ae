// Package engine implements the parameter synchronization core for KeyGlow.
//
// This package is internal to KeyGlow. It owns the last-known snapshot of
// every bound mixer parameter and reconciles indicator colors against it,
// whether a change arrives from a keypress (toggle) or out of band through
// an external control surface (reconcile).
//
// The main components are:
//
//   - [Engine]: serialized toggle/reconcile state machine
//   - [Binding]: engine-internal binding configuration
//   - [Mixer], [Lighting]: capability interfaces implemented by adapters
//   - [Update]: record of one observed or applied parameter change
//
// All public operations are serialized behind a single mutex: a toggle and
// a reconciliation pass never interleave on the same binding. Users of the
// keyglow library should not need to interact with this package directly.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jpalmerr/keyglow/internal/colormap"
	"github.com/jpalmerr/keyglow/internal/state"
)

// fullAlpha is the alpha channel sent with every indicator write.
// Parameter colors carry no transparency of their own.
const fullAlpha = 255

// Kind discriminates the two parameter variants an engine tracks.
type Kind string

const (
	// KindBoolean marks an on/off parameter (mute, send enable).
	KindBoolean Kind = "boolean"

	// KindGain marks a continuous parameter with an (origin, end)
	// reference pair.
	KindGain Kind = "gain"
)

// Source identifies what caused an [Update].
type Source string

const (
	// SourceInit marks updates emitted by the initial state read.
	SourceInit Source = "init"

	// SourceToggle marks updates applied in response to a keypress.
	SourceToggle Source = "toggle"

	// SourceExternal marks changes detected by a reconciliation pass.
	SourceExternal Source = "external"
)

// Location addresses one mixer parameter.
//
// This is the engine-internal version of the public keyglow.ParamLocation,
// decoupled to avoid circular dependencies.
type Location struct {
	// Strip is the channel strip index on the mixer.
	Strip int

	// Param is the parameter name within the strip (e.g. "mute", "gain").
	Param string
}

// Binding is the engine-internal representation of one configured binding,
// decoupled from the public keyglow.Binding type.
//
// Origin and End are meaningful only when Kind is [KindGain].
type Binding struct {
	// Trigger is the input key code that toggles this parameter.
	Trigger int

	// Name is the display name used in logs and updates.
	Name string

	// Location addresses the bound mixer parameter.
	Location Location

	// Indicator is the addressable index of the bound light element.
	Indicator int

	// Kind selects the parameter variant.
	Kind Kind

	// Origin is the reference value mapped to the full "origin" color.
	Origin float64

	// End is the reference value mapped to the full "end" color; it is
	// also the value a toggle snaps to from any non-end value.
	End float64
}

// Mixer reads and writes mixer parameters.
//
// Implementations are expected to return promptly; any transport timeout
// is the adapter's responsibility. Failures are treated as transient and
// scoped to the one parameter involved.
type Mixer interface {
	ReadBool(ctx context.Context, loc Location) (bool, error)
	WriteBool(ctx context.Context, loc Location, v bool) error
	ReadGain(ctx context.Context, loc Location) (float64, error)
	WriteGain(ctx context.Context, loc Location, v float64) error
}

// Lighting applies a color to one addressable indicator.
type Lighting interface {
	SetColor(ctx context.Context, indicator int, c colormap.RGB, alpha uint8) error
}

// Update records one parameter change the engine observed or applied.
//
// Exactly one of BoolValue or GainValue is meaningful, selected by Kind.
type Update struct {
	Trigger    int
	Name       string
	Location   Location
	Indicator  int
	Kind       Kind
	BoolValue  bool
	GainValue  float64
	Color      colormap.RGB
	Source     Source
	ObservedAt time.Time
}

// Engine keeps indicator colors synchronized with mixer parameter values.
//
// Engine owns a [state.Snapshot] of every binding's last-known value. It
// has no explicit state machine beyond initialized/running: its behavior
// is event-driven reconciliation. Create it with [New], seed it once with
// [Engine.Initialize], then drive it with [Engine.Toggle] (keypresses) and
// [Engine.Reconcile] (poll loop).
//
// A single coarse mutex serializes all three operations. This trades
// concurrency for guaranteed consistency between the snapshot, the mixer
// writes, and the indicator pushes.
type Engine struct {
	mu          sync.Mutex
	bindings    []Binding
	byTrigger   map[int]Binding
	snap        *state.Snapshot
	mixer       Mixer
	lighting    Lighting
	logger      *slog.Logger
	initialized bool
}

// New creates an [Engine] for the given bindings.
//
// Trigger uniqueness is validated by the caller (keyglow.New); the engine
// assumes it. The logger must be non-nil.
func New(bindings []Binding, mixer Mixer, lighting Lighting, logger *slog.Logger) *Engine {
	byTrigger := make(map[int]Binding, len(bindings))
	for _, b := range bindings {
		byTrigger[b.Trigger] = b
	}

	return &Engine{
		bindings:  bindings,
		byTrigger: byTrigger,
		snap:      state.NewSnapshot(),
		mixer:     mixer,
		lighting:  lighting,
		logger:    logger,
	}
}

// Initialize reads every binding's current mixer value, seeds the snapshot,
// and pushes each parameter's color to its indicator.
//
// Initialize must complete once before any Toggle or Reconcile call; the
// orchestrator guarantees this ordering. Binding order is unspecified.
//
// A failed read is logged and leaves that binding's snapshot at the zero
// value with no color pushed; the next reconciliation pass repairs it.
// Returns one [Update] per successfully read binding.
func (e *Engine) Initialize(ctx context.Context) []Update {
	e.mu.Lock()
	defer e.mu.Unlock()

	updates := make([]Update, 0, len(e.bindings))
	for _, b := range e.bindings {
		entry := entryFor(b)

		switch b.Kind {
		case KindBoolean:
			v, err := e.mixer.ReadBool(ctx, b.Location)
			if err != nil {
				e.warnBinding(b, "initial read failed", err)
				e.snap.Put(entry)
				continue
			}
			entry.BoolValue = v
			entry.Color = colormap.ForBoolean(v)
		case KindGain:
			v, err := e.mixer.ReadGain(ctx, b.Location)
			if err != nil {
				e.warnBinding(b, "initial read failed", err)
				e.snap.Put(entry)
				continue
			}
			entry.GainValue = v
			entry.Color = colormap.ForGain(v, b.Origin, b.End)
		}

		entry.UpdatedAt = time.Now()
		e.pushColor(ctx, b, entry.Color)
		e.snap.Put(entry)
		updates = append(updates, updateFor(b, entry, SourceInit))
	}

	e.initialized = true
	return updates
}

// Toggle flips the parameter bound to the given trigger.
//
// Unknown triggers are silently ignored (spurious key presses are
// expected) and return handled = false. Boolean parameters negate their
// last-known value. Gain parameters flip between the two configured
// reference points only: the new value is origin when the last value
// equals end exactly, otherwise end. A value that drifted to some third
// number snaps to end on the next toggle.
//
// The mixer write is committed before the indicator is updated. A failed
// write abandons the toggle and returns handled = false; the indicator and
// snapshot keep the previous value.
func (e *Engine) Toggle(ctx context.Context, trigger int) (Update, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return Update{}, false
	}

	b, ok := e.byTrigger[trigger]
	if !ok {
		return Update{}, false
	}

	entry, ok := e.snap.Get(trigger)
	if !ok {
		// unreachable once Initialize has run; fail quietly like an
		// unknown trigger
		return Update{}, false
	}

	switch b.Kind {
	case KindBoolean:
		next := !entry.BoolValue
		if err := e.mixer.WriteBool(ctx, b.Location, next); err != nil {
			e.warnBinding(b, "toggle write failed", err)
			return Update{}, false
		}
		entry.BoolValue = next
		entry.Color = colormap.ForBoolean(next)
	case KindGain:
		next := b.End
		if entry.GainValue == b.End {
			next = b.Origin
		}
		if err := e.mixer.WriteGain(ctx, b.Location, next); err != nil {
			e.warnBinding(b, "toggle write failed", err)
			return Update{}, false
		}
		entry.GainValue = next
		entry.Color = colormap.ForGain(next, b.Origin, b.End)
	}

	entry.UpdatedAt = time.Now()
	e.pushColor(ctx, b, entry.Color)
	e.snap.Put(entry)
	return updateFor(b, entry, SourceToggle), true
}

// Reconcile sweeps every binding once, comparing the current mixer value
// to the snapshot and repushing the indicator color on any difference.
//
// Detection uses exact equality: booleans compare directly and gains
// compare numerically with no epsilon. This is what catches changes made
// through an external control surface. A failed read is logged and skips
// that binding for this pass only; the pass always visits all bindings.
func (e *Engine) Reconcile(ctx context.Context) []Update {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil
	}

	var updates []Update
	for _, b := range e.bindings {
		entry, ok := e.snap.Get(b.Trigger)
		if !ok {
			continue
		}

		switch b.Kind {
		case KindBoolean:
			v, err := e.mixer.ReadBool(ctx, b.Location)
			if err != nil {
				e.warnBinding(b, "reconcile read failed", err)
				continue
			}
			// a zero UpdatedAt marks an entry whose initial read
			// failed; push unconditionally to repair its indicator
			if v == entry.BoolValue && !entry.UpdatedAt.IsZero() {
				continue
			}
			entry.BoolValue = v
			entry.Color = colormap.ForBoolean(v)
		case KindGain:
			v, err := e.mixer.ReadGain(ctx, b.Location)
			if err != nil {
				e.warnBinding(b, "reconcile read failed", err)
				continue
			}
			if v == entry.GainValue && !entry.UpdatedAt.IsZero() {
				continue
			}
			entry.GainValue = v
			entry.Color = colormap.ForGain(v, b.Origin, b.End)
		}

		entry.UpdatedAt = time.Now()
		e.pushColor(ctx, b, entry.Color)
		e.snap.Put(entry)
		updates = append(updates, updateFor(b, entry, SourceExternal))
	}

	return updates
}

// States returns the current snapshot of every tracked parameter.
func (e *Engine) States() []state.Entry {
	return e.snap.All()
}

// pushColor applies a color to a binding's indicator.
//
// Indicator failures are non-fatal: mixer-side state must not be coupled
// to lighting availability, so the failure is logged and the caller
// proceeds. The indicator stays stale until the next successful push.
func (e *Engine) pushColor(ctx context.Context, b Binding, c colormap.RGB) {
	if err := e.lighting.SetColor(ctx, b.Indicator, c, fullAlpha); err != nil {
		e.warnBinding(b, "indicator update failed", err)
	}
}

func (e *Engine) warnBinding(b Binding, msg string, err error) {
	e.logger.Warn(msg,
		"binding", b.Name,
		"trigger", b.Trigger,
		"location", b.Location.Strip,
		"param", b.Location.Param,
		"error", err.Error(),
	)
}

// entryFor builds the zero-valued snapshot entry for a binding.
func entryFor(b Binding) state.Entry {
	return state.Entry{
		Trigger:   b.Trigger,
		Name:      b.Name,
		Strip:     b.Location.Strip,
		Param:     b.Location.Param,
		Indicator: b.Indicator,
		Kind:      string(b.Kind),
	}
}

func updateFor(b Binding, entry state.Entry, src Source) Update {
	return Update{
		Trigger:    b.Trigger,
		Name:       b.Name,
		Location:   b.Location,
		Indicator:  b.Indicator,
		Kind:       b.Kind,
		BoolValue:  entry.BoolValue,
		GainValue:  entry.GainValue,
		Color:      entry.Color,
		Source:     src,
		ObservedAt: entry.UpdatedAt,
	}
}
