// Package metrics holds the Prometheus collectors of the server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for guard decisions.
const (
	OutcomeAllow  = "allow"
	OutcomeReject = "reject"
	OutcomeError  = "error"
)

// Result label for a token verification that found no token at all.
const ResultAbsent = "absent"

// ResultValid is the result label for a token that verified.
const ResultValid = "valid"

// Metrics groups the server collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	tokenVerifications *prometheus.CounterVec
	guardDecisions     *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// Panics if registration fails (following prometheus convention).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tokenVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messagely_token_verifications_total",
			Help: "Total number of request token verifications by result",
		}, []string{"result"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messagely_guard_decisions_total",
			Help: "Total number of access guard decisions",
		}, []string{"guard", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "messagely_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	reg.MustRegister(m.tokenVerifications, m.guardDecisions, m.requestDuration)
	return m
}

// TokenVerifications returns the token verification counter.
func (m *Metrics) TokenVerifications() *prometheus.CounterVec { return m.tokenVerifications }

// GuardDecisions returns the guard decision counter.
func (m *Metrics) GuardDecisions() *prometheus.CounterVec { return m.guardDecisions }

// RequestDuration returns the request duration histogram.
func (m *Metrics) RequestDuration() *prometheus.HistogramVec { return m.requestDuration }

// RecordTokenVerification counts one verification.
// result is ResultAbsent, ResultValid or a token failure kind.
func (m *Metrics) RecordTokenVerification(result string) {
	if m == nil {
		return
	}
	m.tokenVerifications.WithLabelValues(result).Inc()
}

// RecordGuardDecision counts one guard decision (use Outcome* constants).
func (m *Metrics) RecordGuardDecision(guard, outcome string) {
	if m == nil {
		return
	}
	m.guardDecisions.WithLabelValues(guard, outcome).Inc()
}

// RecordRequest observes the duration of a served request.
func (m *Metrics) RecordRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, statusClass(status)).Observe(duration.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
