package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/jpalmerr/keyglow/internal/colormap"
)

// fakeMixer is an in-memory Mixer whose parameters can be flipped out of
// band to simulate an external control surface.
type fakeMixer struct {
	mu     sync.Mutex
	bools  map[Location]bool
	gains  map[Location]float64
	failOn map[Location]error
	writes int
}

func newFakeMixer() *fakeMixer {
	return &fakeMixer{
		bools:  make(map[Location]bool),
		gains:  make(map[Location]float64),
		failOn: make(map[Location]error),
	}
}

func (m *fakeMixer) ReadBool(_ context.Context, loc Location) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn[loc]; err != nil {
		return false, err
	}
	return m.bools[loc], nil
}

func (m *fakeMixer) WriteBool(_ context.Context, loc Location, v bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn[loc]; err != nil {
		return err
	}
	m.bools[loc] = v
	m.writes++
	return nil
}

func (m *fakeMixer) ReadGain(_ context.Context, loc Location) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn[loc]; err != nil {
		return 0, err
	}
	return m.gains[loc], nil
}

func (m *fakeMixer) WriteGain(_ context.Context, loc Location, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn[loc]; err != nil {
		return err
	}
	m.gains[loc] = v
	m.writes++
	return nil
}

func (m *fakeMixer) setBool(loc Location, v bool) {
	m.mu.Lock()
	m.bools[loc] = v
	m.mu.Unlock()
}

func (m *fakeMixer) setGain(loc Location, v float64) {
	m.mu.Lock()
	m.gains[loc] = v
	m.mu.Unlock()
}

func (m *fakeMixer) fail(loc Location, err error) {
	m.mu.Lock()
	m.failOn[loc] = err
	m.mu.Unlock()
}

// fakeLighting records the last color applied per indicator.
type fakeLighting struct {
	mu     sync.Mutex
	colors map[int]colormap.RGB
	alphas map[int]uint8
	err    error
	sets   int
}

func newFakeLighting() *fakeLighting {
	return &fakeLighting{
		colors: make(map[int]colormap.RGB),
		alphas: make(map[int]uint8),
	}
}

func (l *fakeLighting) SetColor(_ context.Context, indicator int, c colormap.RGB, alpha uint8) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.colors[indicator] = c
	l.alphas[indicator] = alpha
	l.sets++
	return nil
}

func (l *fakeLighting) color(indicator int) colormap.RGB {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.colors[indicator]
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	muteLoc = Location{Strip: 0, Param: "B1"}
	gainLoc = Location{Strip: 5, Param: "gain"}

	muteBinding = Binding{
		Trigger:   97,
		Name:      "strip[0].B1",
		Location:  muteLoc,
		Indicator: 116,
		Kind:      KindBoolean,
	}

	gainBinding = Binding{
		Trigger:   104,
		Name:      "strip[5].gain",
		Location:  gainLoc,
		Indicator: 110,
		Kind:      KindGain,
		Origin:    0.0,
		End:       -30.0,
	}
)

func newTestEngine(t *testing.T, bindings ...Binding) (*Engine, *fakeMixer, *fakeLighting) {
	t.Helper()
	m := newFakeMixer()
	l := newFakeLighting()
	return New(bindings, m, l, discard()), m, l
}

func TestInitialize_PushesCurrentColors(t *testing.T) {
	e, m, l := newTestEngine(t, muteBinding, gainBinding)
	m.setBool(muteLoc, true)
	m.setGain(gainLoc, -15.0)

	updates := e.Initialize(context.Background())

	if len(updates) != 2 {
		t.Fatalf("Initialize returned %d updates, want 2", len(updates))
	}
	for _, u := range updates {
		if u.Source != SourceInit {
			t.Errorf("update source = %q, want %q", u.Source, SourceInit)
		}
	}
	if got := l.color(116); got != colormap.On {
		t.Errorf("boolean indicator = %v, want on color %v", got, colormap.On)
	}
	if got := l.color(110); got != (colormap.RGB{R: 127, G: 127}) {
		t.Errorf("gain indicator = %v, want midpoint interpolation", got)
	}
	if l.alphas[110] != 255 {
		t.Errorf("alpha = %d, want 255", l.alphas[110])
	}
}

func TestToggle_UnknownTriggerIgnored(t *testing.T) {
	e, m, _ := newTestEngine(t, muteBinding)
	e.Initialize(context.Background())
	before := m.writes

	if _, handled := e.Toggle(context.Background(), 9999); handled {
		t.Error("Toggle on unknown trigger reported handled = true")
	}
	if m.writes != before {
		t.Error("Toggle on unknown trigger wrote to the mixer")
	}
}

func TestToggle_BeforeInitializeIgnored(t *testing.T) {
	e, _, _ := newTestEngine(t, muteBinding)

	if _, handled := e.Toggle(context.Background(), muteBinding.Trigger); handled {
		t.Error("Toggle before Initialize reported handled = true")
	}
}

func TestToggle_BooleanTwiceRestoresOriginal(t *testing.T) {
	e, m, l := newTestEngine(t, muteBinding)
	m.setBool(muteLoc, true)
	e.Initialize(context.Background())

	u1, handled := e.Toggle(context.Background(), 97)
	if !handled {
		t.Fatal("first Toggle not handled")
	}
	if u1.BoolValue {
		t.Error("first toggle should negate true to false")
	}
	if got := l.color(116); got != colormap.Off {
		t.Errorf("indicator after first toggle = %v, want off color", got)
	}

	u2, handled := e.Toggle(context.Background(), 97)
	if !handled {
		t.Fatal("second Toggle not handled")
	}
	if !u2.BoolValue {
		t.Error("second toggle should restore true")
	}
	if v, _ := m.ReadBool(context.Background(), muteLoc); !v {
		t.Error("external value not restored after double toggle")
	}
	if got := l.color(116); got != colormap.On {
		t.Errorf("indicator after double toggle = %v, want on color", got)
	}
}

func TestToggle_GainFlipsBetweenReferencePoints(t *testing.T) {
	e, m, _ := newTestEngine(t, gainBinding)
	m.setGain(gainLoc, -30.0) // exactly at end
	e.Initialize(context.Background())

	u, _ := e.Toggle(context.Background(), 104)
	if u.GainValue != 0.0 {
		t.Errorf("toggle from end = %v, want origin 0.0", u.GainValue)
	}

	u, _ = e.Toggle(context.Background(), 104)
	if u.GainValue != -30.0 {
		t.Errorf("toggle from origin = %v, want end -30.0", u.GainValue)
	}
	if v, _ := m.ReadGain(context.Background(), gainLoc); v != -30.0 {
		t.Errorf("external gain = %v, want -30.0", v)
	}
}

func TestToggle_GainSnapsDriftedValueToEnd(t *testing.T) {
	e, m, l := newTestEngine(t, gainBinding)
	m.setGain(gainLoc, -12.7) // neither origin nor end
	e.Initialize(context.Background())

	u, handled := e.Toggle(context.Background(), 104)
	if !handled {
		t.Fatal("Toggle not handled")
	}
	if u.GainValue != -30.0 {
		t.Errorf("toggle from drifted value = %v, want end -30.0", u.GainValue)
	}
	if got := l.color(110); got != colormap.End {
		t.Errorf("indicator = %v, want end color", got)
	}
}

func TestToggle_WriteFailureKeepsSnapshot(t *testing.T) {
	e, m, l := newTestEngine(t, muteBinding)
	m.setBool(muteLoc, true)
	e.Initialize(context.Background())

	m.fail(muteLoc, errors.New("mixer unreachable"))
	if _, handled := e.Toggle(context.Background(), 97); handled {
		t.Error("failed toggle reported handled = true")
	}
	if got := l.color(116); got != colormap.On {
		t.Errorf("indicator changed despite failed write: %v", got)
	}

	// once the mixer recovers the next toggle works from the old snapshot
	m.fail(muteLoc, nil)
	u, handled := e.Toggle(context.Background(), 97)
	if !handled || u.BoolValue {
		t.Errorf("recovered toggle = (%+v, %v), want negation of true", u, handled)
	}
}

func TestReconcile_DetectsExternalChange(t *testing.T) {
	e, m, l := newTestEngine(t, muteBinding, gainBinding)
	m.setGain(gainLoc, 0.0)
	e.Initialize(context.Background())

	// change both parameters behind the engine's back
	m.setBool(muteLoc, true)
	m.setGain(gainLoc, -30.0)

	updates := e.Reconcile(context.Background())
	if len(updates) != 2 {
		t.Fatalf("Reconcile returned %d updates, want 2", len(updates))
	}
	for _, u := range updates {
		if u.Source != SourceExternal {
			t.Errorf("update source = %q, want %q", u.Source, SourceExternal)
		}
	}
	if got := l.color(116); got != colormap.On {
		t.Errorf("boolean indicator = %v, want on color", got)
	}
	if got := l.color(110); got != colormap.End {
		t.Errorf("gain indicator = %v, want end color", got)
	}
}

func TestReconcile_NoChangeNoUpdate(t *testing.T) {
	e, _, l := newTestEngine(t, muteBinding, gainBinding)
	e.Initialize(context.Background())
	before := l.sets

	if updates := e.Reconcile(context.Background()); len(updates) != 0 {
		t.Errorf("Reconcile with no external change returned %d updates", len(updates))
	}
	if l.sets != before {
		t.Error("Reconcile repushed colors without a value change")
	}
}

func TestReconcile_FailureIsolatedPerBinding(t *testing.T) {
	e, m, l := newTestEngine(t, muteBinding, gainBinding)
	e.Initialize(context.Background())

	m.fail(muteLoc, errors.New("read timeout"))
	m.setGain(gainLoc, -30.0)

	updates := e.Reconcile(context.Background())
	if len(updates) != 1 {
		t.Fatalf("Reconcile returned %d updates, want 1 (failing binding skipped)", len(updates))
	}
	if updates[0].Trigger != 104 {
		t.Errorf("surviving update trigger = %d, want 104", updates[0].Trigger)
	}
	if got := l.color(110); got != colormap.End {
		t.Errorf("healthy binding's indicator not updated: %v", got)
	}
}

func TestReconcile_RepairsFailedInitialRead(t *testing.T) {
	e, m, l := newTestEngine(t, muteBinding)
	m.fail(muteLoc, errors.New("not ready"))

	if updates := e.Initialize(context.Background()); len(updates) != 0 {
		t.Fatalf("Initialize returned %d updates for a failing binding", len(updates))
	}

	// the mixer comes back with the same value as the zero snapshot;
	// the entry was never pushed, so reconcile must still repair it
	m.fail(muteLoc, nil)
	updates := e.Reconcile(context.Background())
	if len(updates) != 1 {
		t.Fatalf("Reconcile returned %d updates, want 1", len(updates))
	}
	if got := l.color(116); got != colormap.Off {
		t.Errorf("repaired indicator = %v, want off color", got)
	}
}

func TestIndicatorFailureIsNonFatal(t *testing.T) {
	e, m, l := newTestEngine(t, muteBinding)
	m.setBool(muteLoc, false)
	e.Initialize(context.Background())

	l.mu.Lock()
	l.err = errors.New("device disconnected")
	l.mu.Unlock()

	u, handled := e.Toggle(context.Background(), 97)
	if !handled {
		t.Fatal("toggle with failing lighting reported handled = false")
	}
	if !u.BoolValue {
		t.Error("toggle value not applied despite lighting failure")
	}
	if v, _ := m.ReadBool(context.Background(), muteLoc); !v {
		t.Error("mixer write skipped because of lighting failure")
	}
}

func TestStates_ReflectsSnapshot(t *testing.T) {
	e, m, _ := newTestEngine(t, muteBinding, gainBinding)
	m.setBool(muteLoc, true)
	m.setGain(gainLoc, -15.0)
	e.Initialize(context.Background())

	states := e.States()
	if len(states) != 2 {
		t.Fatalf("States returned %d entries, want 2", len(states))
	}
	for _, s := range states {
		switch s.Trigger {
		case 97:
			if !s.BoolValue {
				t.Error("boolean state not seeded from mixer")
			}
		case 104:
			if s.GainValue != -15.0 {
				t.Errorf("gain state = %v, want -15.0", s.GainValue)
			}
		default:
			t.Errorf("unexpected trigger %d in states", s.Trigger)
		}
	}
}

func TestConcurrentToggleAndReconcile(t *testing.T) {
	bindings := []Binding{muteBinding, gainBinding}
	for i := 0; i < 6; i++ {
		bindings = append(bindings, Binding{
			Trigger:   200 + i,
			Name:      fmt.Sprintf("strip[%d].A1", i),
			Location:  Location{Strip: i, Param: "A1"},
			Indicator: 120 + i,
			Kind:      KindBoolean,
		})
	}
	e, m, _ := newTestEngine(t, bindings...)
	e.Initialize(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			e.Toggle(context.Background(), 200+n%6)
		}(i)
		go func() {
			defer wg.Done()
			m.setGain(gainLoc, -5.0)
			e.Reconcile(context.Background())
		}()
	}
	wg.Wait()
}
