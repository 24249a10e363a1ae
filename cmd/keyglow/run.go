package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"

	"github.com/jpalmerr/keyglow"
	"github.com/jpalmerr/keyglow/config"
	"github.com/jpalmerr/keyglow/internal/launchpad"
	"github.com/jpalmerr/keyglow/internal/oscmixer"
)

const (
	shutdownTimeout = 10 * time.Second

	// mixerSyncTimeout bounds the initial state handshake with the mixer.
	mixerSyncTimeout = 5 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// runCmd starts the synchronization session.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the synchronization session",
	Long: `Start the KeyGlow synchronization session.

The session will:
  - Load configuration from the specified YAML file
  - Connect to the mixer over OSC and the pad controller over MIDI
  - Light every bound pad from the mixer's current state
  - Toggle parameters on pad release and reconcile external changes

The session runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  keyglow run -c config.yaml
  keyglow run --config /etc/keyglow/config.yaml`,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = runCmd.MarkFlagRequired("config")
}

func runSession(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// convert config to SDK bindings
	bindings, err := config.BuildBindings(cfg)
	if err != nil {
		return fmt.Errorf("failed to build bindings: %w", err)
	}

	logger.Info("config loaded",
		"bindings", len(bindings),
		"poll_interval", cfg.PollInterval.Duration().String(),
	)

	defer midi.CloseDriver()

	device, err := launchpad.Open(cfg.Device.Port, logger)
	if err != nil {
		return fmt.Errorf("failed to open device: %w", err)
	}
	defer device.Close()

	mixer, err := oscmixer.New(cfg.Mixer.Send, cfg.Mixer.Listen, logger)
	if err != nil {
		return fmt.Errorf("failed to connect mixer: %w", err)
	}
	defer mixer.Close()

	// prime the mixer feedback cache before the session reads anything
	locations := make([]keyglow.ParamLocation, len(bindings))
	for i, b := range bindings {
		locations[i] = b.Location()
	}
	syncCtx, cancel := context.WithTimeout(context.Background(), mixerSyncTimeout)
	defer cancel()
	if err := mixer.Sync(syncCtx, locations); err != nil {
		return fmt.Errorf("mixer unreachable: %w", err)
	}
	logger.Info("mixer state synchronized", "parameters", len(locations))

	kg, err := keyglow.New(
		keyglow.WithBindings(bindings...),
		keyglow.WithPollInterval(cfg.PollInterval.Duration()),
		keyglow.WithMixer(mixer),
		keyglow.WithLighting(device),
		keyglow.WithInput(device),
		keyglow.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create keyglow: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start session - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- kg.Start(ctx)
	}()

	// wait for session to finish
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("session error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("session error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
