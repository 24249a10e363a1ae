// Package oscmixer implements the keyglow.Mixer interface over OSC.
//
// Mixers and DAWs that speak OSC push parameter feedback messages to a
// configured client address whenever a parameter changes. This adapter
// runs a small UDP server caching that feedback, so reads are answered
// from the last message received, and sends writes as OSC messages to
// the mixer's listening port.
//
// Parameters are addressed as "/strip/<index>/<param>". Boolean values
// travel as int32 0/1, gains as float32, matching common mixer remote
// protocols.
package oscmixer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/hypebeast/go-osc/osc"

	"github.com/jpalmerr/keyglow"
)

// refreshAddress asks the mixer to re-broadcast its full parameter state.
const refreshAddress = "/refresh"

// syncPollInterval is how often Sync re-checks the feedback cache.
const syncPollInterval = 50 * time.Millisecond

// ErrNoFeedback is returned by reads for parameters the mixer has not
// reported yet. The engine treats it as a transient per-binding failure.
var ErrNoFeedback = errors.New("oscmixer: no feedback received for parameter")

// Mixer is an OSC-backed implementation of keyglow.Mixer.
//
// Writes go straight to the mixer and are echoed into the local cache so
// a read immediately after a write is coherent even before the mixer
// confirms. Reads never touch the network; they are answered from the
// feedback cache.
type Mixer struct {
	client *osc.Client
	conn   net.PacketConn
	server *osc.Server
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]interface{}

	closeOnce sync.Once
}

// New connects the OSC transport.
//
// sendAddr is the host:port the mixer listens on for writes; listenAddr
// is the local host:port its feedback is directed at. Failing to bind the
// feedback listener is a startup connectivity failure and returns an
// error rather than starting partially connected.
func New(sendAddr, listenAddr string, logger *slog.Logger) (*Mixer, error) {
	host, portStr, err := net.SplitHostPort(sendAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid mixer send address %q: %w", sendAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid mixer send port %q: %w", portStr, err)
	}

	conn, err := net.ListenPacket("udp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind feedback listener on %s: %w", listenAddr, err)
	}

	m := &Mixer{
		client: osc.NewClient(host, port),
		conn:   conn,
		logger: logger,
		cache:  make(map[string]interface{}),
	}
	m.server = &osc.Server{
		Addr:       listenAddr,
		Dispatcher: &feedbackDispatcher{mixer: m},
	}

	go func() {
		if err := m.server.Serve(conn); err != nil && !errors.Is(err, net.ErrClosed) {
			m.logger.Warn("osc feedback server stopped", "error", err.Error())
		}
	}()

	return m, nil
}

// Sync requests a full state broadcast from the mixer and waits until
// feedback has arrived for every given location.
//
// Call it once after New, before handing the mixer to keyglow: the
// engine's initialization reads every bound parameter, and those reads
// are only meaningful once the cache is primed. Returns an error naming
// the missing parameters if the mixer stays silent until the context
// deadline; treat that as a fatal startup connectivity failure.
func (m *Mixer) Sync(ctx context.Context, locations []keyglow.ParamLocation) error {
	if err := m.client.Send(osc.NewMessage(refreshAddress)); err != nil {
		return fmt.Errorf("failed to request mixer state: %w", err)
	}

	ticker := time.NewTicker(syncPollInterval)
	defer ticker.Stop()

	for {
		missing := m.missing(locations)
		if len(missing) == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("mixer state sync incomplete, no feedback for %v: %w", missing, ctx.Err())
		case <-ticker.C:
		}
	}
}

// missing returns the addresses among locations that have no cached value.
func (m *Mixer) missing(locations []keyglow.ParamLocation) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var missing []string
	for _, loc := range locations {
		a := address(loc)
		if _, ok := m.cache[a]; !ok {
			missing = append(missing, a)
		}
	}
	return missing
}

// ReadBool returns the last feedback value for a boolean parameter.
func (m *Mixer) ReadBool(_ context.Context, loc keyglow.ParamLocation) (bool, error) {
	v, ok := m.lookup(loc)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNoFeedback, address(loc))
	}
	return toBool(v)
}

// WriteBool sets a boolean parameter, sent as int32 0/1.
func (m *Mixer) WriteBool(_ context.Context, loc keyglow.ParamLocation, v bool) error {
	var arg int32
	if v {
		arg = 1
	}
	if err := m.client.Send(osc.NewMessage(address(loc), arg)); err != nil {
		return fmt.Errorf("oscmixer: write %s: %w", address(loc), err)
	}
	m.store(address(loc), v)
	return nil
}

// ReadGain returns the last feedback value for a continuous parameter.
func (m *Mixer) ReadGain(_ context.Context, loc keyglow.ParamLocation) (float64, error) {
	v, ok := m.lookup(loc)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoFeedback, address(loc))
	}
	return toFloat(v)
}

// WriteGain sets a continuous parameter, sent as float32.
func (m *Mixer) WriteGain(_ context.Context, loc keyglow.ParamLocation, v float64) error {
	if err := m.client.Send(osc.NewMessage(address(loc), float32(v))); err != nil {
		return fmt.Errorf("oscmixer: write %s: %w", address(loc), err)
	}
	m.store(address(loc), v)
	return nil
}

// Close releases the feedback listener. Safe to call multiple times.
func (m *Mixer) Close() error {
	var err error
	m.closeOnce.Do(func() {
		err = m.conn.Close()
	})
	return err
}

func (m *Mixer) lookup(loc keyglow.ParamLocation) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.cache[address(loc)]
	return v, ok
}

func (m *Mixer) store(addr string, v interface{}) {
	m.mu.Lock()
	m.cache[addr] = v
	m.mu.Unlock()
}

// address maps a parameter location to its OSC address.
func address(loc keyglow.ParamLocation) string {
	return fmt.Sprintf("/strip/%d/%s", loc.Strip, loc.Param)
}

// feedbackDispatcher caches every incoming parameter message. It
// implements the osc.Dispatcher interface; bundles are flattened into
// their member messages.
type feedbackDispatcher struct {
	mixer *Mixer
}

func (d *feedbackDispatcher) Dispatch(packet osc.Packet) {
	switch p := packet.(type) {
	case *osc.Message:
		d.message(p)
	case *osc.Bundle:
		for _, msg := range p.Messages {
			d.message(msg)
		}
	}
}

func (d *feedbackDispatcher) message(msg *osc.Message) {
	if len(msg.Arguments) == 0 {
		return
	}
	// mixers send one value per parameter message; the last argument
	// wins if a device batches several
	d.mixer.store(msg.Address, msg.Arguments[len(msg.Arguments)-1])
}

// toBool interprets an OSC argument as a boolean.
// Conversions are best-effort across the numeric types mixers send.
func toBool(v interface{}) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case int32:
		return val > 0, nil
	case int64:
		return val > 0, nil
	case float32:
		return val > 0, nil
	case float64:
		return val > 0, nil
	default:
		return false, fmt.Errorf("oscmixer: cannot interpret %T as bool", v)
	}
}

// toFloat interprets an OSC argument as a float64.
func toFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float32:
		return float64(val), nil
	case float64:
		return val, nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("oscmixer: cannot interpret %T as float", v)
	}
}
