// Package metrics collects and exposes Prometheus metrics for the auth
// service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is consumed by the HTTP layer to record auth outcomes.
type Collector struct {
	authAttempts    *prometheus.CounterVec
	reconciliations *prometheus.CounterVec
	tokensIssued    prometheus.Counter
	tokensValidated *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "floodwatch_auth_attempts_total",
			Help: "Authentication attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "floodwatch_reconciliations_total",
			Help: "Identity reconciliations by resolution path.",
		}, []string{"path"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "floodwatch_session_tokens_issued_total",
			Help: "Session tokens issued.",
		}),
		tokensValidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "floodwatch_session_tokens_validated_total",
			Help: "Session token validations by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.authAttempts,
		c.reconciliations,
		c.tokensIssued,
		c.tokensValidated,
	)

	return c
}

// RecordAuthAttempt records one authentication attempt. Method is "password"
// or the provider name; outcome is "success", "rejected", or "error".
func (c *Collector) RecordAuthAttempt(method, outcome string) {
	c.authAttempts.WithLabelValues(method, outcome).Inc()
}

// RecordReconciliation records one reconciliation by its resolution path.
func (c *Collector) RecordReconciliation(path string) {
	c.reconciliations.WithLabelValues(path).Inc()
}

// RecordTokenIssued records one issued session token.
func (c *Collector) RecordTokenIssued() {
	c.tokensIssued.Inc()
}

// RecordTokenValidated records one token validation by outcome: "valid",
// "expired", or "invalid".
func (c *Collector) RecordTokenValidated(outcome string) {
	c.tokensValidated.WithLabelValues(outcome).Inc()
}

// Handler returns the Prometheus scrape handler for the gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
