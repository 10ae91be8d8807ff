package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics instruments the executor's transport and recovery path.
// All methods are nil-receiver safe so metrics stay optional.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	refreshes prometheus.Counter
	retries   prometheus.Counter
	evictions prometheus.Counter
}

// NewMetrics registers the client metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fouron4",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Outbound API requests by method and status code.",
		}, []string{"method", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fouron4",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Outbound API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		refreshes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fouron4",
			Subsystem: "api",
			Name:      "token_refreshes_total",
			Help:      "Token refresh attempts triggered by 401 responses.",
		}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fouron4",
			Subsystem: "api",
			Name:      "request_retries_total",
			Help:      "Requests retried after a successful token refresh.",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fouron4",
			Subsystem: "api",
			Name:      "session_evictions_total",
			Help:      "Sessions cleared after a failed token refresh.",
		}),
	}
}

// instrument wraps rt with request counting and latency observation.
func (m *Metrics) instrument(rt http.RoundTripper) http.RoundTripper {
	if m == nil {
		return rt
	}
	if rt == nil {
		rt = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperCounter(m.requests,
		promhttp.InstrumentRoundTripperDuration(m.duration, rt))
}

func (m *Metrics) refreshAttempted() {
	if m != nil {
		m.refreshes.Inc()
	}
}

func (m *Metrics) requestRetried() {
	if m != nil {
		m.retries.Inc()
	}
}

func (m *Metrics) sessionEvicted() {
	if m != nil {
		m.evictions.Inc()
	}
}
