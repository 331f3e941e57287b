// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the bot. A nil *Metrics is valid
// and turns every record method into a no-op, so components can run without
// metrics wired in tests.
type Metrics struct {
	// Update handling
	UpdatesProcessed prometheus.Counter
	HandlerPanics    prometheus.Counter
	CommandsHandled  *prometheus.CounterVec

	// Swap execution
	SwapsExecuted *prometheus.CounterVec
	SwapDuration  prometheus.Histogram

	// Outbound delivery
	DeliveryAttempts prometheus.Counter
	DeliveryFailures prometheus.Counter

	// Sessions
	ActiveSessions prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "swap_bot"
	}

	return &Metrics{
		UpdatesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "telegram",
			Name:      "updates_processed_total",
			Help:      "Total number of chat updates processed",
		}),
		HandlerPanics: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "telegram",
			Name:      "handler_panics_total",
			Help:      "Total number of panics recovered in update handlers",
		}),
		CommandsHandled: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "telegram",
			Name:      "commands_handled_total",
			Help:      "Total number of commands handled by command name",
		}, []string{"command"}),

		SwapsExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "executed_total",
			Help:      "Total number of swap attempts by outcome status",
		}, []string{"status"}),
		SwapDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "duration_seconds",
			Help:      "End-to-end swap execution duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),

		DeliveryAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "attempts_total",
			Help:      "Total number of outbound message send attempts",
		}),
		DeliveryFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "failures_total",
			Help:      "Total number of messages dropped after exhausting retries",
		}),

		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "telegram",
			Name:      "active_sessions",
			Help:      "Number of chat sessions currently mid-conversation",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordUpdate increments the processed updates counter.
func (m *Metrics) RecordUpdate() {
	if m == nil {
		return
	}
	m.UpdatesProcessed.Inc()
}

// RecordPanic increments the recovered panics counter.
func (m *Metrics) RecordPanic() {
	if m == nil {
		return
	}
	m.HandlerPanics.Inc()
}

// RecordCommand increments the per-command counter.
func (m *Metrics) RecordCommand(command string) {
	if m == nil {
		return
	}
	m.CommandsHandled.WithLabelValues(command).Inc()
}

// RecordSwap records a swap attempt outcome and its duration.
func (m *Metrics) RecordSwap(status string, seconds float64) {
	if m == nil {
		return
	}
	m.SwapsExecuted.WithLabelValues(status).Inc()
	m.SwapDuration.Observe(seconds)
}

// RecordDeliveryAttempt increments the send attempts counter.
func (m *Metrics) RecordDeliveryAttempt() {
	if m == nil {
		return
	}
	m.DeliveryAttempts.Inc()
}

// RecordDeliveryFailure increments the dropped messages counter.
func (m *Metrics) RecordDeliveryFailure() {
	if m == nil {
		return
	}
	m.DeliveryFailures.Inc()
}

// SetActiveSessions updates the in-flight session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
