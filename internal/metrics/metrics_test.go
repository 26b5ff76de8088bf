package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveTool("new_browser_tab", OutcomeOK, 120*time.Millisecond)
	m.ObserveTool("new_browser_tab", OutcomeError, time.Second)
	m.ObserveTurn(OutcomeOK)
	m.ScreenshotSent()
	m.ScreenshotSent()
	m.SetSessions(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("new_browser_tab", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("new_browser_tab", OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ToolDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Screenshots))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SessionsActive))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveTool("x", OutcomeOK, time.Millisecond)
		m.ObserveTurn(OutcomeError)
		m.ScreenshotSent()
		m.InboundDrop("rate_limited")
		m.SessionLaunch(OutcomeOK)
		m.SetSessions(1)
	})
}
