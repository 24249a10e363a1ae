// Package poll drives periodic reconciliation passes for KeyGlow.
//
// This package is internal to KeyGlow. It runs the sync engine's
// reconciliation at a fixed cadence and forwards the resulting updates to
// a channel consumed by the orchestrator.
//
// The main components are:
//
//   - [Loop]: ticker-driven reconciliation runner
//   - [Reconciler]: the interface the sync engine satisfies
//
// Users of the keyglow library should not need to interact with this
// package directly.
package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jpalmerr/keyglow/internal/engine"
)

// updateBuffer sizes the updates channel. A full buffer never blocks a
// reconciliation pass; see forward.
const updateBuffer = 64

// Reconciler runs one full reconciliation pass and reports the changes it
// applied. Implemented by engine.Engine.
type Reconciler interface {
	Reconcile(ctx context.Context) []engine.Update
}

// Loop invokes a [Reconciler] at a fixed interval.
//
// The loop does not run an immediate pass on start: the engine's
// Initialize already pushed current state, so the first pass waits one
// interval. Each pass runs to completion before the next tick is
// considered; pass duration plus the interval bounds detection latency
// for out-of-band changes.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Loop struct {
	rec      Reconciler
	interval time.Duration
	updates  chan engine.Update
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// NewLoop creates a reconciliation [Loop].
//
// The loop must be started with [Loop.Start] and stopped with [Loop.Stop].
// Updates are available via [Loop.Updates].
func NewLoop(rec Reconciler, interval time.Duration, logger *slog.Logger) *Loop {
	return &Loop{
		rec:      rec,
		interval: interval,
		updates:  make(chan engine.Update, updateBuffer),
		logger:   logger,
	}
}

// Updates returns a receive-only channel emitting the updates produced by
// reconciliation passes.
//
// The channel is closed when the loop stops. Consumers should read until
// it is closed to receive all updates.
func (l *Loop) Updates() <-chan engine.Update {
	return l.updates
}

// Start begins ticking in a background goroutine.
//
// Start is non-blocking and idempotent; subsequent calls after the first
// are no-ops, as is Start after Stop. If ctx is nil, context.Background()
// is used as the parent context.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	if l.started || l.stopped {
		l.mu.Unlock()
		return
	}
	l.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	loopCtx := l.ctx // capture under lock to avoid race
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		defer l.closeOnce.Do(func() { close(l.updates) })

		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				// the pass itself is never interrupted mid-way;
				// cancellation only bounds the I/O inside it
				for _, u := range l.rec.Reconcile(loopCtx) {
					l.forward(u)
				}
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight pass to complete.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op; the updates channel is closed either way.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.stopped {
		l.stopped = true
		if l.cancel != nil {
			l.cancel()
		}
	}
	l.mu.Unlock()

	l.wg.Wait()

	// ensure channel is closed even if Start() was never called
	l.closeOnce.Do(func() { close(l.updates) })
}

// forward hands an update to the consumer without ever blocking the pass.
// If the consumer is slow the update is dropped with a warning; the
// indicator itself was already pushed by the engine.
func (l *Loop) forward(u engine.Update) {
	select {
	case l.updates <- u:
	default:
		l.logger.Warn("update consumer slow, dropping update",
			"binding", u.Name,
			"trigger", u.Trigger,
		)
	}
}
