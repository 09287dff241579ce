// Package metrics exposes Prometheus instrumentation for the relay.
package metrics

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes recorded by the send endpoint.
const (
	OutcomeSent         = "sent"
	OutcomeNotReady     = "not_configured"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalid      = "invalid"
	OutcomeFailed       = "failed"
)

var reqDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: []float64{0.01, 0.1, 0.3, 1.2, 5},
	},
	[]string{"path", "method", "status"},
)

var submissions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "contact_submissions_total",
		Help: "Contact form submissions by outcome.",
	},
	[]string{"outcome", "provider"},
)

var deliveryDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "contact_delivery_duration_seconds",
		Help:    "Duration of provider send calls.",
		Buckets: []float64{0.05, 0.2, 0.5, 1, 2.5, 10},
	},
	[]string{"provider"},
)

// RegisterDefault registers the Go runtime and process collectors plus the
// relay's own collectors with the default registry. Calling it more than
// once is harmless.
func RegisterDefault() {
	register("Go collector", collectors.NewGoCollector())
	register("process collector", collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	register("HTTP request histogram", reqDuration)
	register("submission counter", submissions)
	register("delivery histogram", deliveryDuration)
}

func register(name string, c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return
		}
		slog.Error("failed to register metrics collector", "collector", name, "error", err)
	}
}

// ObserveSubmission counts one send-endpoint outcome.
func ObserveSubmission(outcome, provider string) {
	submissions.WithLabelValues(outcome, provider).Inc()
}

// ObserveDelivery records the latency of one provider call.
func ObserveDelivery(provider string, d time.Duration) {
	deliveryDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// HTTPMetrics is a middleware that records request duration labelled by
// the chi route pattern rather than the raw path.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		reqDuration.WithLabelValues(path, r.Method, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// Handler returns an http.Handler that exposes the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
