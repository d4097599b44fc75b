package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementOutcome("plan", "create", StatusAccepted)
		m.IncrementRejection("plan", "policy_violation", "product_on_sale")
		m.ObserveValidateLatency("plan", time.Millisecond)
		m.ObserveResolveLatency("plan", time.Millisecond)
		m.IncrementProductCache(CacheHit)
		m.IncrementEventsPublished("websocket", "plan")
	})
}

func TestCounters(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.IncrementOutcome("rescue", "create", StatusRejected)
	m.IncrementOutcome("rescue", "create", StatusRejected)
	m.IncrementRejection("rescue", "policy_violation", "balance_sufficient")
	m.IncrementProductCache(CacheMiss)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MutationOutcome.WithLabelValues("rescue", "create", StatusRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("rescue", "policy_violation", "balance_sufficient")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductCache.WithLabelValues(CacheMiss)))
}
