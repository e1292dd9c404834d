// Package metrics exposes Prometheus collectors for HTTP traffic and gym events.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gym"

// Metrics groups the collectors registered on one registry.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	checkIns              prometheus.Counter
	checkOuts             *prometheus.CounterVec
	subscriptionConfirmed prometheus.Counter
	jobRuns               *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
		checkIns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkin",
			Name:      "checkins_total",
			Help:      "Members checked in by QR scan.",
		}),
		checkOuts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkin",
			Name:      "checkouts_total",
			Help:      "Members checked out, by scan or automatically.",
		}, []string{"auto"}),
		subscriptionConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "confirmed_total",
			Help:      "Registrations confirmed by the owner.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Scheduled job runs.",
		}, []string{"job", "success"}),
	}
	m.Registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.checkIns,
		m.checkOuts,
		m.subscriptionConfirmed,
		m.jobRuns,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) CheckIn() {
	if m == nil {
		return
	}
	m.checkIns.Inc()
}

func (m *Metrics) CheckOut(auto bool) {
	if m == nil {
		return
	}
	m.checkOuts.WithLabelValues(strconv.FormatBool(auto)).Inc()
}

func (m *Metrics) SubscriptionConfirmed() {
	if m == nil {
		return
	}
	m.subscriptionConfirmed.Inc()
}

// JobRun counts one run of a scheduled job.
func (m *Metrics) JobRun(job string, err error) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, strconv.FormatBool(err == nil)).Inc()
}
