package httptransport

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the request metrics of a Client.
type Metrics struct {
	// requests counts completed requests by method, operation and status
	// code ("error" when no response was received).
	requests *prometheus.CounterVec

	// duration observes the request duration in seconds.
	duration *prometheus.HistogramVec

	// inflight gauges the requests currently in flight.
	inflight prometheus.Gauge
}

// NewMetrics creates the client metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalystwan_requests_total",
			Help: "Total number of requests sent to the manager",
		}, []string{"method", "operation", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalystwan_request_duration_seconds",
			Help:    "Duration of requests sent to the manager (in seconds)",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "operation"}),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "catalystwan_requests_inflight",
			Help: "The number of requests currently in flight",
		}),
	}
}

func (m *Metrics) begin() func(method, operation string, status int) {
	if m == nil {
		return func(string, string, int) {}
	}
	start := time.Now()
	m.inflight.Inc()
	return func(method, operation string, status int) {
		m.inflight.Dec()
		code := "error"
		if status > 0 {
			code = strconv.Itoa(status)
		}
		m.requests.WithLabelValues(method, operation, code).Inc()
		m.duration.WithLabelValues(method, operation).Observe(time.Since(start).Seconds())
	}
}
