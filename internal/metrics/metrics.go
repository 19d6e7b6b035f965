package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "glmeal"

// Outcome labels for remote requests.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeQuota   = "quota_exceeded"
)

// Metrics holds the Prometheus collectors used by glmeal.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	transitions     *prometheus.CounterVec
	loading         prometheus.Gauge
}

// NewMetrics creates a Metrics value with a private registry that also
// carries the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Requests sent to the meal-analysis service, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Latency of requests to the meal-analysis service.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remote_requests_in_flight",
			Help:      "Requests to the meal-analysis service currently awaiting a response.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flow_transitions_total",
			Help:      "Flow step changes, by destination step.",
		}, []string{"step"}),
		loading: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "flow_loading",
			Help:      "1 while the flow controller waits on a remote call.",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.inFlight,
		m.transitions,
		m.loading,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// IncrementInFlight marks the start of a remote request.
func (m *Metrics) IncrementInFlight() { m.inFlight.Inc() }

// DecrementInFlight marks the end of a remote request.
func (m *Metrics) DecrementInFlight() { m.inFlight.Dec() }

// ObserveRequest records one finished remote request.
func (m *Metrics) ObserveRequest(operation, outcome string, d time.Duration) {
	m.requestsTotal.WithLabelValues(operation, outcome).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// WritePrometheus serves the registry in the Prometheus exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
