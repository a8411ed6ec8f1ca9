package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorCounts(t *testing.T) {
	m := NewMetricsCollector(prometheus.NewRegistry())

	m.RecordOrderCreated()
	m.RecordOrderCreated()
	m.RecordStockRejection()
	m.RecordReturnTransition("pending")
	m.RecordReturnTransition("returned")
	m.RecordReturnTransition("returned")
	m.RecordHTTPRequest("GET", "/products", 200, 10*time.Millisecond)
	m.RecordCacheOperation("products", false)
	m.RecordCacheOperation("products", true)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ordersCreatedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.stockRejectionsTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.returnTransitionsTotal.WithLabelValues("returned")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/products", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheHitsTotal.WithLabelValues("products")))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var m *MetricsCollector

	assert.NotPanics(t, func() {
		m.RecordOrderCreated()
		m.RecordStockRejection()
		m.RecordReturnTransition("rejected")
		m.RecordTicketTransition("Closed")
		m.RecordHTTPRequest("GET", "/", 500, time.Second)
		m.RecordCacheOperation("products", true)
	})
}

func TestStatusCategory(t *testing.T) {
	assert.Equal(t, "2xx", getStatusCategory(201))
	assert.Equal(t, "4xx", getStatusCategory(404))
	assert.Equal(t, "5xx", getStatusCategory(503))
	assert.Equal(t, "unknown", getStatusCategory(0))
}
