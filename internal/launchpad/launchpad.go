// Package launchpad drives a Novation Launchpad-family pad controller
// over MIDI, implementing both the keyglow.Lighting and
// keyglow.InputSource interfaces with one device handle.
//
// The device is switched into programmer mode on open, which gives every
// pad a stable note number and accepts RGB LED messages over SysEx. Pad
// releases become key events; the grid pads report note-off, the top-row
// function buttons report control-change with value zero.
package launchpad

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/jpalmerr/keyglow"
)

// eventBufferDepth bounds the key event channel. Pad releases are slow
// on a human timescale, so a small buffer is enough to absorb bursts.
const eventBufferDepth = 16

// sysExHeader identifies Launchpad-family devices (Novation, Launchpad
// X product id, programmer-mode command set).
var sysExHeader = []byte{0x00, 0x20, 0x29, 0x02, 0x0C}

// Device is an open Launchpad handle.
//
// Create one with [Open]. The same value serves as the lighting sink and
// the key event source for a keyglow session. Close releases the MIDI
// listener and closes the event channel, which ends a running session
// gracefully.
type Device struct {
	in     drivers.In
	out    drivers.Out
	send   func(midi.Message) error
	stop   func()
	logger *slog.Logger
	events chan keyglow.KeyEvent

	closeOnce sync.Once
}

// Open finds the device whose MIDI port name contains portName, switches
// it into programmer mode, and starts listening for pad releases.
//
// A missing or unopenable port is a startup connectivity failure and is
// returned as an error. The caller should defer midi.CloseDriver() at
// process level.
func Open(portName string, logger *slog.Logger) (*Device, error) {
	in, err := midi.FindInPort(portName)
	if err != nil {
		return nil, fmt.Errorf("can't find MIDI input %q: %w", portName, err)
	}

	out, err := midi.FindOutPort(portName)
	if err != nil {
		return nil, fmt.Errorf("can't find MIDI output %q: %w", portName, err)
	}

	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("can't open MIDI output %q: %w", portName, err)
	}

	d := &Device{
		in:     in,
		out:    out,
		send:   send,
		logger: logger,
		events: make(chan keyglow.KeyEvent, eventBufferDepth),
	}

	if err := d.send(midi.SysEx(programmerMode())); err != nil {
		return nil, fmt.Errorf("can't enable programmer mode: %w", err)
	}

	stop, err := midi.ListenTo(in, d.handleMessage)
	if err != nil {
		return nil, fmt.Errorf("can't listen on MIDI input %q: %w", portName, err)
	}
	d.stop = stop

	logger.Info("launchpad connected", "port", in.String())
	return d, nil
}

// handleMessage converts pad releases to key events. Presses and other
// traffic are ignored; the session reacts to releases only.
func (d *Device) handleMessage(msg midi.Message, _ int32) {
	var ch, key, val uint8

	switch {
	case msg.GetNoteEnd(&ch, &key):
		d.publish(int(key))
	case msg.GetControlChange(&ch, &key, &val):
		// top-row buttons signal release with value zero
		if val == 0 {
			d.publish(int(key))
		}
	}
}

func (d *Device) publish(code int) {
	select {
	case d.events <- keyglow.KeyEvent{Code: code, At: time.Now()}:
	default:
		// a stalled consumer must not block the MIDI driver callback
		d.logger.Warn("key event dropped, consumer not keeping up", "code", code)
	}
}

// Events returns the pad release channel. It is closed by [Device.Close].
func (d *Device) Events() <-chan keyglow.KeyEvent {
	return d.events
}

// SetColor lights one pad with an RGB color over SysEx.
//
// Launchpad LEDs have no alpha channel, so alpha scales the color's
// brightness instead; alpha 255 shows the color as given and alpha 0
// turns the pad off.
func (d *Device) SetColor(_ context.Context, indicator int, c keyglow.RGB, alpha uint8) error {
	if indicator < 0 || indicator > 127 {
		return fmt.Errorf("launchpad: indicator %d out of MIDI range", indicator)
	}
	if err := d.send(midi.SysEx(colorMessage(indicator, c, alpha))); err != nil {
		return fmt.Errorf("launchpad: set color on pad %d: %w", indicator, err)
	}
	return nil
}

// Close stops the MIDI listener and closes the event channel. Safe to
// call multiple times.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		if d.stop != nil {
			d.stop()
		}
		close(d.events)
	})
	return nil
}

// programmerMode is the SysEx payload selecting programmer mode.
func programmerMode() []byte {
	return append(append([]byte{}, sysExHeader...), 0x0E, 0x01)
}

// colorMessage builds the SysEx payload for a static RGB pad color.
// The wire format carries 7-bit color components.
func colorMessage(indicator int, c keyglow.RGB, alpha uint8) []byte {
	payload := append(append([]byte{}, sysExHeader...), 0x03)
	return append(payload,
		0x03, // static RGB lighting type
		byte(indicator),
		scaleComponent(c.R, alpha),
		scaleComponent(c.G, alpha),
		scaleComponent(c.B, alpha),
	)
}

// scaleComponent applies alpha as a brightness factor and narrows the
// 8-bit component to the 7-bit range MIDI SysEx carries.
func scaleComponent(v, alpha uint8) byte {
	scaled := uint16(v) * uint16(alpha) / 255
	return byte(scaled >> 1)
}
