package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prevplan/internal/plans/metrics"
	"prevplan/internal/plans/models"
)

type recordingSink struct {
	name string
	err  error

	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Publish(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) received() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcherFansOutToEverySink(t *testing.T) {
	ok := &recordingSink{name: "ok"}
	failing := &recordingSink{name: "failing", err: errors.New("broker down")}
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	d := NewDispatcher(8, []Sink{failing, ok}, WithLogger(quietLogger()), WithMetrics(m))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()

	d.Emit(ctx, Event{Kind: models.KindPlan, Action: models.ActionCreate, ID: "p-1"})

	require.Eventually(t, func() bool { return len(ok.received()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	got := ok.received()[0]
	assert.Equal(t, "p-1", got.ID)
	assert.False(t, got.At.IsZero(), "emit stamps the event time")
	assert.Len(t, failing.received(), 1, "a failing sink does not stop delivery to the others")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("ok", "plan")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("failing", "plan")))
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &recordingSink{name: "ok"}
	d := NewDispatcher(1, []Sink{sink}, WithLogger(quietLogger()))

	ctx := context.Background()
	d.Emit(ctx, Event{Kind: models.KindClient, Action: models.ActionCreate, ID: "first"})
	d.Emit(ctx, Event{Kind: models.KindClient, Action: models.ActionCreate, ID: "dropped"})

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.NoError(t, d.Run(cancelled))

	got := sink.received()
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].ID)
}
