// Package metrics exposes application-level Prometheus instruments.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Metrics exposes counters for the expense pipeline.
type Metrics struct {
	ClaimsSubmitted   *prometheus.CounterVec
	ApprovalDecisions *prometheus.CounterVec
	BatchesProcessed  *prometheus.CounterVec
	PaymentsSimulated *prometheus.CounterVec
	MileageGenerated  *prometheus.CounterVec

	httpDuration *prometheus.HistogramVec
}

// New registers the application instruments on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ClaimsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "expensio_claims_submitted_total",
			Help: "Expense claims submitted, by validation outcome.",
		}, []string{"outcome"}),
		ApprovalDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "expensio_approval_decisions_total",
			Help: "Approval decisions recorded, by decision.",
		}, []string{"decision"}),
		BatchesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "expensio_reimbursement_batches_total",
			Help: "Reimbursement batches processed, by status.",
		}, []string{"status"}),
		PaymentsSimulated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "expensio_payments_simulated_total",
			Help: "Simulated bank payments, by outcome.",
		}, []string{"outcome"}),
		MileageGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "expensio_mileage_claims_total",
			Help: "Monthly mileage claim generation results.",
		}, []string{"result"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "expensio_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// GinMiddleware records request latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Module wires the Prometheus registry and application instruments.
var Module = fx.Module("metrics",
	fx.Provide(func() *prometheus.Registry {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		return reg
	}),
	fx.Provide(func(reg *prometheus.Registry) prometheus.Registerer { return reg }),
	fx.Provide(New),
)
