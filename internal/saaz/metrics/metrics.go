// Package metrics exposes Prometheus instruments for the identity flows,
// mail dispatch, housekeeping and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Identity flow names used as the "flow" label.
const (
	FlowRegister       = "register"
	FlowLogin          = "login"
	FlowFederated      = "federated"
	FlowForgotPassword = "forgot_password"
	FlowResetPassword  = "reset_password"
)

var (
	// AuthAttemptsTotal counts identity flow outcomes.
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaz_auth_attempts_total",
			Help: "Identity flow attempts by flow and outcome",
		},
		[]string{"flow", "outcome"},
	)

	// AuthDuration tracks identity flow latency, dominated by bcrypt.
	AuthDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saaz_auth_duration_seconds",
			Help:    "Duration of identity flows in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"flow"},
	)

	// MailDispatchTotal counts outbound mail by outcome (sent, failed, rejected).
	MailDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaz_mail_dispatch_total",
			Help: "Outbound mail dispatch attempts by outcome",
		},
		[]string{"outcome"},
	)

	// MailBreakerState is 0 closed, 1 half-open, 2 open.
	MailBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "saaz_mail_breaker_state",
			Help: "Mail dispatch circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	// HousekeepingPurgedTotal counts rows cleared by housekeeping.
	HousekeepingPurgedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaz_housekeeping_purged_total",
			Help: "Expired records cleared by housekeeping",
		},
		[]string{"kind"},
	)

	// HTTPRequestsTotal counts served requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaz_http_requests_total",
			Help: "HTTP requests by method and status code",
		},
		[]string{"method", "code"},
	)

	// HTTPRequestDuration tracks request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saaz_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// ObserveAuth records the outcome and latency of one identity flow call.
func ObserveAuth(flow string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	AuthAttemptsTotal.WithLabelValues(flow, outcome).Inc()
	AuthDuration.WithLabelValues(flow).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HTTPMiddleware records request counts and latency.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(sw.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
