// Package metrics holds the Prometheus collectors of the service. Collectors
// are registered on the registry handed to NewMetrics so tests can use a
// private one.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "browser_pilot"

const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
	OutcomeInvalid = "invalid"
)

type Metrics struct {
	ToolCalls       *prometheus.CounterVec
	ToolDuration    *prometheus.HistogramVec
	SessionsActive  prometheus.Gauge
	Turns           *prometheus.CounterVec
	Screenshots     prometheus.Counter
	InboundDropped  *prometheus.CounterVec
	SessionLaunches *prometheus.CounterVec
}

// NewRegistry returns the process registry with runtime collectors attached.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		ToolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Wall time of tool invocations.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"tool"}),
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Client sessions currently holding a browser.",
		}),
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed turns by outcome.",
		}, []string{"outcome"}),
		Screenshots: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "screenshots_sent_total",
			Help:      "Screenshot events written to clients.",
		}),
		InboundDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_dropped_total",
			Help:      "Inbound client messages that did not become a turn.",
		}, []string{"reason"}),
		SessionLaunches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_launches_total",
			Help:      "Browser launches for new sessions by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveTool records one tool invocation. A nil receiver is a no-op.
func (m *Metrics) ObserveTool(tool, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}

	m.Turns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ScreenshotSent() {
	if m == nil {
		return
	}

	m.Screenshots.Inc()
}

func (m *Metrics) InboundDrop(reason string) {
	if m == nil {
		return
	}

	m.InboundDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) SessionLaunch(outcome string) {
	if m == nil {
		return
	}

	m.SessionLaunches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}

	m.SessionsActive.Set(float64(n))
}
