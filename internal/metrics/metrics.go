// Package metrics holds the Prometheus collectors for taskhub.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for authorization, the task lifecycle and the gRPC surface.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Authorization decisions by action and decision ("allow" or "deny")
	AuthzDecisions *prometheus.CounterVec

	// Task status transitions by from and to status
	TaskTransitions *prometheus.CounterVec

	// RPCs by full method and status code
	RPCRequests *prometheus.CounterVec

	RPCLatency *prometheus.HistogramVec

	// Domain events by type and result ("ok" or "error")
	EventsPublished *prometheus.CounterVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AuthzDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_authz_decisions_total",
			Help: "Authorization decisions by action and outcome",
		}, []string{"action", "decision"}),

		TaskTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_task_status_transitions_total",
			Help: "Applied task status changes by from and to status",
		}, []string{"from", "to"}),

		RPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_grpc_requests_total",
			Help: "Handled gRPC requests by method and code",
		}, []string{"method", "code"}),

		RPCLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskhub_grpc_request_duration_seconds",
			Help:    "Duration of handled gRPC requests by method",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method"}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_events_published_total",
			Help: "Domain events handed to the broker by type and result",
		}, []string{"type", "result"}),
	}
}

// ObserveDecision records one authorization decision.
func (m *Metrics) ObserveDecision(action string, allowed bool) {
	if m != nil {
		decision := "deny"
		if allowed {
			decision = "allow"
		}
		m.AuthzDecisions.WithLabelValues(action, decision).Inc()
	}
}

// ObserveTransition records an applied status change.
func (m *Metrics) ObserveTransition(from, to string) {
	if m != nil {
		m.TaskTransitions.WithLabelValues(from, to).Inc()
	}
}

// ObserveRPC records a handled RPC.
func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	if m != nil {
		m.RPCRequests.WithLabelValues(method, code).Inc()
		m.RPCLatency.WithLabelValues(method).Observe(d.Seconds())
	}
}

// ObserveEvent records the outcome of publishing a domain event.
func (m *Metrics) ObserveEvent(eventType string, err error) {
	if m != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.EventsPublished.WithLabelValues(eventType, result).Inc()
	}
}
