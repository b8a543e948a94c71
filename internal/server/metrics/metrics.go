// Package metrics holds the Prometheus collectors of the Persistence Service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RecordsCreated  *prometheus.CounterVec
	RecordsDeleted  *prometheus.CounterVec
	AuthFailures    prometheus.Counter
}

// New registers every collector on a private registry, so several instances
// can coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "melitton_http_requests_total",
			Help: "HTTP requests served, by route pattern, method and status code",
		}, []string{"route", "method", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "melitton_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		RecordsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "melitton_records_created_total",
			Help: "Records created, by kind (box, log, bait)",
		}, []string{"kind"}),
		RecordsDeleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "melitton_records_deleted_total",
			Help: "Delete requests accepted, by kind",
		}, []string{"kind"}),
		AuthFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "melitton_auth_failures_total",
			Help: "Requests rejected for a missing or invalid bearer token",
		}),
	}
}

func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) IncrementCreated(kind string) {
	m.RecordsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementDeleted(kind string) {
	m.RecordsDeleted.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementAuthFailures() {
	m.AuthFailures.Inc()
}

// Handler serves the exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
