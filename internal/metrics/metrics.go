// ABOUTME: Prometheus metrics for routing decisions, acceptor failures, and latency
// ABOUTME: Registered on a caller-supplied registerer; nil *Metrics records nothing

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Decision outcomes used as the "outcome" label.
const (
	OutcomeRouted     = "routed"
	OutcomeUnroutable = "unroutable"
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	RouteDecisions *prometheus.CounterVec
	AcceptorErrors *prometheus.CounterVec
	RouteDuration  *prometheus.HistogramVec
	CatalogSize    *prometheus.GaugeVec
}

// NewWithRegistry creates Metrics registered on registerer.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		RouteDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mokai_route_decisions_total",
				Help: "Routing decisions by router and outcome",
			},
			[]string{"router", "outcome"},
		),
		AcceptorErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mokai_acceptor_errors_total",
				Help: "Acceptor evaluations that failed instead of answering",
			},
			[]string{"router", "connector"},
		),
		RouteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mokai_route_duration_seconds",
				Help:    "Time spent deciding a route",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8), // 10µs to ~160ms
			},
			[]string{"router"},
		),
		CatalogSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mokai_catalog_services",
				Help: "Connector services registered per section",
			},
			[]string{"section"},
		),
	}
}

// Decision counts one routing outcome.
func (m *Metrics) Decision(router string, unroutable bool) {
	if m == nil {
		return
	}
	outcome := OutcomeRouted
	if unroutable {
		outcome = OutcomeUnroutable
	}
	m.RouteDecisions.WithLabelValues(router, outcome).Inc()
}

// AcceptorError counts one failed acceptor evaluation.
func (m *Metrics) AcceptorError(router, connectorID string) {
	if m == nil {
		return
	}
	m.AcceptorErrors.WithLabelValues(router, connectorID).Inc()
}

// ObserveDuration records how long a routing call took.
func (m *Metrics) ObserveDuration(router string, d time.Duration) {
	if m == nil {
		return
	}
	m.RouteDuration.WithLabelValues(router).Observe(d.Seconds())
}

// SetCatalogSize records the number of services in a registry section.
func (m *Metrics) SetCatalogSize(section string, n int) {
	if m == nil {
		return
	}
	m.CatalogSize.WithLabelValues(section).Set(float64(n))
}

// Handler serves the metrics in gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
