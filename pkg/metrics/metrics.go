// Package metrics holds the Prometheus collectors for sync runs and the
// HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	SyncRunsTotal     *prometheus.CounterVec
	SyncStepDuration  *prometheus.HistogramVec
	SyncStepFailures  *prometheus.CounterVec
	ConflictsFlagged  prometheus.Gauge
	MembersRanked     prometheus.Gauge
	HTTPRequestsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New registers every collector on a private registry so tests can build
// as many instances as they like.
func New() *Metrics {
	m := &Metrics{
		SyncRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "integritywatch",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Sync runs by outcome",
		}, []string{"ok"}),
		SyncStepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "integritywatch",
			Subsystem: "sync",
			Name:      "step_duration_seconds",
			Help:      "Duration of each sync step",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"step"}),
		SyncStepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "integritywatch",
			Subsystem: "sync",
			Name:      "step_failures_total",
			Help:      "Sync steps that reported ok=false",
		}, []string{"step"}),
		ConflictsFlagged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "integritywatch",
			Subsystem: "audit",
			Name:      "conflicts_flagged",
			Help:      "Conflict flags produced by the last audit pass",
		}),
		MembersRanked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "integritywatch",
			Subsystem: "audit",
			Name:      "members_ranked",
			Help:      "Members scored by the last audit pass",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "integritywatch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"route", "status"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.SyncRunsTotal,
		m.SyncStepDuration,
		m.SyncStepFailures,
		m.ConflictsFlagged,
		m.MembersRanked,
		m.HTTPRequestsTotal,
	)
	return m
}

func (m *Metrics) ObserveStep(step string, ok bool, d time.Duration) {
	m.SyncStepDuration.WithLabelValues(step).Observe(d.Seconds())
	if !ok {
		m.SyncStepFailures.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) ObserveRun(ok bool) {
	m.SyncRunsTotal.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func (m *Metrics) ObserveAudit(members, conflicts int) {
	m.MembersRanked.Set(float64(members))
	m.ConflictsFlagged.Set(float64(conflicts))
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware counts requests by matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
