package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCount(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/passes/:id", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/passes/:id", "GET", 200, 20*time.Millisecond)
	m.RecordError("/passes", "POST", "VALIDATION_FAILED")
	m.RecordIngested("received", 3)
	m.RecordIngested("loaded", 0)
	m.RecordDropped("validate")
	m.RecordBatch("ok", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/passes/:id", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/passes", "POST", "VALIDATION_FAILED")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ingestRecords.WithLabelValues("received")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ingestRecords.WithLabelValues("loaded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ingestDropped.WithLabelValues("validate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ingestBatches.WithLabelValues("ok")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordIngested("received", 1)
		m.RecordDropped("decode")
		m.RecordBatch("failed", time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}

func TestTwoInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}
