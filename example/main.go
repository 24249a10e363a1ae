package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/keyglow"
)

func main() {
	// simulated collaborators (see sim.go)
	mixer := NewSimMixer()
	lighting := SimLighting{}

	// script: toggle the mute twice, then the gain twice
	input := NewSimInput(2*time.Second, 97, 97, 104, 104)

	mute, err := keyglow.NewBoolBinding(97, keyglow.ParamLocation{Strip: 0, Param: "B1"}, 116,
		keyglow.WithName("Mic to B1"),
	)
	if err != nil {
		slog.Error("failed to create binding", "error", err)
		os.Exit(1)
	}

	gain, err := keyglow.NewGainBinding(104, keyglow.ParamLocation{Strip: 5, Param: "gain"}, 110, 0.0, -30.0,
		keyglow.WithName("Strip 5 fader"),
	)
	if err != nil {
		slog.Error("failed to create binding", "error", err)
		os.Exit(1)
	}

	kg, err := keyglow.New(
		keyglow.WithBindings(mute, gain),
		keyglow.WithPollInterval(500*time.Millisecond),
		keyglow.WithMixer(mixer),
		keyglow.WithLighting(lighting),
		keyglow.WithInput(input),
		keyglow.WithUpdateCallback(func(ev keyglow.UpdateEvent) {
			fmt.Printf("  update: %-14s source=%-8s color=#%02X%02X%02X\n",
				ev.Name, ev.Source, ev.Color.R, ev.Color.G, ev.Color.B)
		}),
	)
	if err != nil {
		slog.Error("failed to create keyglow", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  KeyGlow Demo")
	fmt.Println()
	fmt.Println("  Two simulated bindings:")
	fmt.Println("  - pad 116: mute on strip 0 (green/red)")
	fmt.Println("  - pad 110: gain on strip 5 (green-to-red gradient)")
	fmt.Println()
	fmt.Println("  A scripted input toggles each twice, and a background")
	fmt.Println("  fader drifts the gain so the poll loop has work to do.")
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop early")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// external changes for the reconciler to pick up
	go mixer.Drift(ctx, keyglow.ParamLocation{Strip: 5, Param: "gain"})

	if err := kg.Start(ctx); err != nil {
		slog.Error("keyglow error", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  Final state:")
	for _, s := range kg.Snapshot() {
		fmt.Printf("  %-14s color=#%02X%02X%02X\n", s.Name, s.Color.R, s.Color.G, s.Color.B)
	}
}
