package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveBlock(t *testing.T) {
	m := New()
	m.ObserveBlock(BindingFramed, 64, 300, time.Millisecond)
	m.ObserveBlock(BindingFramed, 64, 300, time.Millisecond)
	m.ObserveBlock(BindingHTTP, 300, 300, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BlocksServed.WithLabelValues(BindingFramed)))
	assert.Equal(t, 128.0, testutil.ToFloat64(m.BytesServed.WithLabelValues(BindingFramed)))
	assert.Equal(t, 300.0, testutil.ToFloat64(m.BytesServed.WithLabelValues(BindingHTTP)))
	assert.Equal(t, 300.0, testutil.ToFloat64(m.DocumentSize))
}

func TestObserveFailureAndInteraction(t *testing.T) {
	m := New()
	m.ObserveFailure(BindingHTTP, "invalid")
	m.ObserveInteraction(BindingFramed, "readproperty", "SUCCESS")
	m.SetActiveTransfers(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues(BindingHTTP, "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Interactions.WithLabelValues(BindingFramed, "readproperty", "SUCCESS")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveTransfers))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBlock(BindingHTTP, 1, 1, 0)
		m.ObserveFailure(BindingHTTP, "x")
		m.ObserveInteraction(BindingHTTP, "x", "y")
		m.SetActiveTransfers(1)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveBlock(BindingHTTP, 10, 10, 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "wot_td_blocks_served_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
