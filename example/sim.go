package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/jpalmerr/keyglow"
)

// SimMixer is an in-memory mixer for demo use.
//
// It drifts one gain parameter on its own timer to show the poll loop
// catching external changes, the way a hand on a physical fader would.
type SimMixer struct {
	mu    sync.Mutex
	bools map[keyglow.ParamLocation]bool
	gains map[keyglow.ParamLocation]float64
}

// NewSimMixer seeds the mixer with starting values for the demo bindings.
func NewSimMixer() *SimMixer {
	return &SimMixer{
		bools: map[keyglow.ParamLocation]bool{
			{Strip: 0, Param: "B1"}: false,
		},
		gains: map[keyglow.ParamLocation]float64{
			{Strip: 5, Param: "gain"}: 0.0,
		},
	}
}

func (m *SimMixer) ReadBool(_ context.Context, loc keyglow.ParamLocation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bools[loc], nil
}

func (m *SimMixer) WriteBool(_ context.Context, loc keyglow.ParamLocation, v bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bools[loc] = v
	return nil
}

func (m *SimMixer) ReadGain(_ context.Context, loc keyglow.ParamLocation) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gains[loc], nil
}

func (m *SimMixer) WriteGain(_ context.Context, loc keyglow.ParamLocation, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gains[loc] = v
	return nil
}

// Drift nudges the gain parameter every few seconds, simulating an
// operator moving a fader on another control surface. Runs until the
// context is cancelled; call in a goroutine.
func (m *SimMixer) Drift(ctx context.Context, loc keyglow.ParamLocation) {
	ticker := time.NewTicker(4 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			v := -30.0 * rand.Float64()
			m.gains[loc] = v
			m.mu.Unlock()
			slog.Info("external fader moved", "param", loc.String(), "value", fmt.Sprintf("%.1f", v))
		}
	}
}

// SimLighting prints color changes instead of driving real LEDs.
type SimLighting struct{}

func (SimLighting) SetColor(_ context.Context, indicator int, c keyglow.RGB, alpha uint8) error {
	fmt.Printf("  pad %3d -> #%02X%02X%02X (alpha %d)\n", indicator, c.R, c.G, c.B, alpha)
	return nil
}

// SimInput replays a scripted sequence of key releases.
//
// The channel closes when the script is exhausted, which ends the
// session the same way unplugging a device would.
type SimInput struct {
	events chan keyglow.KeyEvent
}

// NewSimInput starts replaying the given key codes with the given pause
// between releases.
func NewSimInput(pause time.Duration, codes ...int) *SimInput {
	s := &SimInput{events: make(chan keyglow.KeyEvent)}
	go func() {
		defer close(s.events)
		for _, code := range codes {
			time.Sleep(pause)
			s.events <- keyglow.KeyEvent{Code: code, At: time.Now()}
		}
		// leave time to observe the final state before the session ends
		time.Sleep(pause)
	}()
	return s
}

func (s *SimInput) Events() <-chan keyglow.KeyEvent {
	return s.events
}
