// Package metrics exposes Prometheus instruments for billing activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Gateway metrics
	GatewayRequestsTotal   *prometheus.CounterVec
	GatewayRequestDuration *prometheus.HistogramVec

	// Billing metrics
	ChargesTotal         *prometheus.CounterVec
	DueSubscriptions     prometheus.Gauge
	ChargeRunsSkipped    prometheus.Counter
	CompensationsTotal   *prometheus.CounterVec
	SubscriptionsExpired prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics on registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pecal_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pecal_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		GatewayRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pecal_gateway_requests_total",
				Help: "Total number of payment gateway calls by operation and result code",
			},
			[]string{"operation", "result"},
		),
		GatewayRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pecal_gateway_request_duration_seconds",
				Help:    "Payment gateway call duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"operation"},
		),

		ChargesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pecal_charges_total",
				Help: "Charge attempts by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		DueSubscriptions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pecal_due_subscriptions",
				Help: "Subscriptions found due in the last recurring charge run",
			},
		),
		ChargeRunsSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pecal_charge_runs_skipped_total",
				Help: "Recurring charge runs skipped because another run held the lock",
			},
		),
		CompensationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pecal_compensations_total",
				Help: "Charges cancelled after a local failure or an unanswered approval",
			},
			[]string{"outcome"},
		),
		SubscriptionsExpired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pecal_subscriptions_expired_by_retry_total",
				Help: "Subscriptions expired after reaching the retry limit",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GatewayRequestsTotal,
		m.GatewayRequestDuration,
		m.ChargesTotal,
		m.DueSubscriptions,
		m.ChargeRunsSkipped,
		m.CompensationsTotal,
		m.SubscriptionsExpired,
	)

	return m
}

// NewNop returns metrics registered on a private registry. Used by tests
// and commands that never expose /metrics.
func NewNop() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// ObserveGateway records one gateway call.
func (m *Metrics) ObserveGateway(operation, result string, started time.Time) {
	m.GatewayRequestsTotal.WithLabelValues(operation, result).Inc()
	m.GatewayRequestDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// RecordCharge counts a charge outcome such as "approved", "failed" or "unknown".
func (m *Metrics) RecordCharge(kind, outcome string) {
	m.ChargesTotal.WithLabelValues(kind, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GinMiddleware records request counts and latency per route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
