// Package keyglow keeps a keyboard's per-key LED colors synchronized with
// the live state of software audio-mixer parameters, and turns key
// releases into parameter toggles.
//
// KeyGlow is designed as an SDK-first library: bindings, transports, and
// callbacks are configured programmatically with immutable types, pure
// color-mapping functions, and the functional options pattern. A YAML
// configuration layer and a CLI binary are provided on top for standalone
// use.
//
// # Quick Start
//
// Create bindings, wire the collaborators, and start the session with
// graceful shutdown:
//
//	mute, _ := keyglow.NewBoolBinding(97, keyglow.ParamLocation{Strip: 0, Param: "B1"}, 116)
//	gain, _ := keyglow.NewGainBinding(104, keyglow.ParamLocation{Strip: 5, Param: "gain"}, 110, 0.0, -30.0)
//
//	kg, _ := keyglow.New(
//	    keyglow.WithBindings(mute, gain),
//	    keyglow.WithMixer(mixer),       // e.g. the OSC adapter
//	    keyglow.WithLighting(device),   // e.g. the Launchpad adapter
//	    keyglow.WithInput(device),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	kg.Start(ctx) // blocks until context is cancelled or the input stops
//
// # Synchronization model
//
// KeyGlow tracks the last-known value of every bound parameter. Two
// activity sources drive it: key-release events toggle parameters
// directly, and a fixed-interval poll loop reconciles the snapshot
// against the mixer, catching changes made through external control
// surfaces. Both paths are serialized behind one boundary, so a toggle
// and a reconciliation pass never interleave on the same binding.
//
// Boolean parameters show a fixed on/off color. Continuous parameters are
// colored along a green-to-red gradient between an (origin, end)
// reference pair; the pair may be given in ascending or descending order
// without changing the mapping. See [ColorForBoolean] and [ColorForGain].
//
// # Failure model
//
// Startup connectivity failures (no mixer, no device) are fatal and
// surfaced before Start. Everything after that is isolated per binding:
// a failed mixer read or write, or a failed indicator update, is logged
// at warning level and skipped; the next reconciliation pass naturally
// retries. Unknown key codes are ignored outright.
//
// # Architecture
//
// KeyGlow consists of several internal packages (under internal/):
//
//   - internal/colormap: pure value-to-color mapping
//   - internal/engine: serialized toggle/reconcile core
//   - internal/state: last-known-value snapshot
//   - internal/poll: fixed-interval reconciliation loop
//   - internal/oscmixer: Mixer adapter speaking OSC
//   - internal/launchpad: Lighting and InputSource adapter speaking MIDI
//
// The internal packages are not part of the public API and may change
// without notice. Custom transports are supported by implementing the
// [Mixer], [Lighting], and [InputSource] interfaces.
package keyglow
