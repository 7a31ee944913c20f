package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskhub/internal/metrics"
)

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// Dispatcher emits events in the background so request handlers are never blocked by the broker.
// A nil Dispatcher, or one without an emitter, drops events.
type Dispatcher struct {
	emitter Emitter
	log     *zap.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

// NewDispatcher returns a Dispatcher for emitter. emitter may be nil when no broker is configured.
func NewDispatcher(emitter Emitter, log *zap.Logger, m *metrics.Metrics) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{emitter: emitter, log: log, metrics: m}
}

// Publish emits event in a goroutine with its own timeout; request cancellation does not abort it.
func (d *Dispatcher) Publish(event *Event) {
	if d == nil || d.emitter == nil || event == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		err := d.emitter.Emit(ctx, event)
		d.metrics.ObserveEvent(event.Type, err)
		if err != nil {
			d.log.Warn("events: async emit failed",
				zap.String("type", event.Type),
				zap.String("workspace_id", event.WorkspaceID),
				zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight emits finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	if d == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
