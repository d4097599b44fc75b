package events

import (
	"context"
	"log/slog"
	"time"

	"prevplan/internal/plans/metrics"
)

// Sink delivers events to one destination.
type Sink interface {
	Name() string
	Publish(ctx context.Context, e Event) error
}

// Dispatcher decouples request handling from sink latency. Emit enqueues
// without blocking and Run drains the queue into every sink.
type Dispatcher struct {
	inbox   chan Event
	sinks   []Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithPublishTimeout bounds each sink call.
func WithPublishTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// NewDispatcher builds a dispatcher with a queue of the given capacity.
func NewDispatcher(capacity int, sinks []Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		inbox:   make(chan Event, capacity),
		sinks:   sinks,
		logger:  slog.Default(),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Emit queues e. When the queue is full the event is dropped and logged;
// lifecycle events are notifications, never the record of truth.
func (d *Dispatcher) Emit(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	select {
	case d.inbox <- e:
	default:
		d.logger.WarnContext(ctx, "event queue full, dropping event",
			"kind", string(e.Kind),
			"action", string(e.Action),
			"id", e.ID,
		)
	}
}

// Run delivers queued events until ctx is cancelled, then drains what is
// already queued.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return nil
		case e := <-d.inbox:
			d.deliver(ctx, e)
		}
	}
}

func (d *Dispatcher) drain() {
	ctx := context.Background()
	for {
		select {
		case e := <-d.inbox:
			d.deliver(ctx, e)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e Event) {
	for _, sink := range d.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err := sink.Publish(sinkCtx, e)
		cancel()
		if err != nil {
			d.logger.Error("event publish failed",
				"sink", sink.Name(),
				"kind", string(e.Kind),
				"id", e.ID,
				"error", err,
			)
			continue
		}
		d.metrics.IncrementEventsPublished(sink.Name(), string(e.Kind))
	}
}
