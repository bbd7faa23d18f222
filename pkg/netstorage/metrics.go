package netstorage

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records per-action request counts and latencies.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the client metrics with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netstorage_client_requests_total",
				Help: "Total number of NetStorage requests",
			},
			[]string{"method", "action", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netstorage_client_request_duration_seconds",
				Help:    "NetStorage request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "action"},
		),
	}
}

// Middleware returns a decorator that feeds m. Transport errors are counted
// with status "error".
func (m *Metrics) Middleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			action := actionLabel(r)

			resp, err := next.RoundTrip(r)

			status := "error"
			if err == nil {
				status = strconv.Itoa(resp.StatusCode)
			}
			m.requestsTotal.WithLabelValues(r.Method, action, status).Inc()
			m.requestDuration.WithLabelValues(r.Method, action).Observe(time.Since(start).Seconds())
			return resp, err
		})
	}
}
