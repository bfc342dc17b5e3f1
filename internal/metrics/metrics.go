// Package metrics exposes Prometheus metrics for the rota service.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zapponejosh/shift-rota/internal/calendar"
	"github.com/zapponejosh/shift-rota/internal/export"
	"github.com/zapponejosh/shift-rota/internal/rota"
)

const namespace = "rota"

// Collector holds the service's metrics on its own registry.
type Collector struct {
	reg *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	assignments     prometheus.Counter
	imagesRendered  prometheus.Counter
	renderDuration  prometheus.Histogram
	batchesFinished *prometheus.CounterVec
}

// Compile-time assertion that Collector observes exports.
var _ export.Observer = (*Collector)(nil)

// New creates a collector with a fresh registry, including Go runtime and
// process collectors.
func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		assignments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_computed_total",
			Help:      "Worker assignments computed.",
		}),

		imagesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "images_total",
			Help:      "Month images rendered.",
		}),

		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "render_duration_seconds",
			Help:      "Time to build and encode one month image.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),

		batchesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "batches_total",
			Help:      "Export batches by result (ok, cancelled, error).",
		}, []string{"result"}),
	}

	c.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.httpDuration,
		c.assignments,
		c.imagesRendered,
		c.renderDuration,
		c.batchesFinished,
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}

// Handler serves the metrics in Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, took time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(took.Seconds())
}

// ImageRendered implements export.Observer.
func (c *Collector) ImageRendered(_ calendar.Month, took time.Duration) {
	c.imagesRendered.Inc()
	c.renderDuration.Observe(took.Seconds())
}

// BatchFinished implements export.Observer.
func (c *Collector) BatchFinished(_ int, err error) {
	result := "ok"
	switch {
	case errors.Is(err, context.Canceled):
		result = "cancelled"
	case err != nil:
		result = "error"
	}
	c.batchesFinished.WithLabelValues(result).Inc()
}

// CountAssignments wraps an assigner so every call is counted.
func (c *Collector) CountAssignments(a calendar.Assigner) calendar.Assigner {
	return countingAssigner{next: a, counter: c.assignments}
}

type countingAssigner struct {
	next    calendar.Assigner
	counter prometheus.Counter
}

func (ca countingAssigner) Assign(worker string, date civil.Date) rota.Assignment {
	ca.counter.Inc()
	return ca.next.Assign(worker, date)
}
