// Package metrics exposes Prometheus collectors for the HTTP layer and the
// activity domain.
package metrics

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fitness_backend/internal/feature/activities/domain/entity"
)

const namespace = "fitness"

// Metrics holds the collectors registered on a single registry.
type Metrics struct {
	registry *prometheus.Registry

	requests          *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	activitiesCreated *prometheus.CounterVec
	lastCreated       prometheus.Gauge
}

// New creates the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		activitiesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activities",
			Name:      "created_total",
			Help:      "Activities created by type and initial status.",
		}, []string{"activity_type", "status"}),
		lastCreated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "activities",
			Name:      "last_created_timestamp_seconds",
			Help:      "Unix timestamp of the most recently created activity.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.activitiesCreated,
		m.lastCreated,
	)
	return m
}

// Middleware records request count and latency. Unmatched routes share one
// label value to keep cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ActivityCreated implements the activities usecase Recorder. Types outside
// the known set are counted as "other".
func (m *Metrics) ActivityCreated(activityType, status string) {
	if !slices.Contains(entity.KnownTypes(), activityType) {
		activityType = "other"
	}
	m.activitiesCreated.WithLabelValues(activityType, status).Inc()
	m.lastCreated.SetToCurrentTime()
}
