// metrics/metrics.go
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "stockwatch"

var (
	reqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.3, 1.2, 5},
		},
		[]string{"route", "method", "status"},
	)

	dbConnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_connect_total",
			Help:      "MongoDB connection attempts by result (ok, invalid_uri, authentication, network, timeout, unknown).",
		},
		[]string{"result"},
	)

	watchlistOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watchlist_ops_total",
			Help:      "Watchlist mutations by operation (add, remove).",
		},
		[]string{"op"},
	)

	authAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Authentication attempts by operation and result.",
		},
		[]string{"op", "result"},
	)

	digestSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digest_emails_total",
			Help:      "Watchlist digest emails by result (sent, failed).",
		},
		[]string{"result"},
	)
)

// RegisterDefault registers the Go runtime and process collectors, the
// HTTP histogram, and the domain counters. Calling it twice is harmless.
// Any other registration failure is fatal.
func RegisterDefault(logger *zap.Logger) {
	mustRegister(logger, "Go collector", collectors.NewGoCollector())
	mustRegister(logger, "process collector", collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mustRegister(logger, "HTTP request histogram", reqDuration)
	mustRegister(logger, "db connect counter", dbConnects)
	mustRegister(logger, "watchlist ops counter", watchlistOps)
	mustRegister(logger, "auth attempts counter", authAttempts)
	mustRegister(logger, "digest counter", digestSends)
}

func mustRegister(logger *zap.Logger, name string, c prometheus.Collector) {
	err := prometheus.Register(c)
	if err == nil {
		return
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return
	}
	if logger != nil {
		logger.Fatal("failed to register "+name, zap.Error(err))
	}
	panic("metrics: failed to register " + name + ": " + err.Error())
}

// DBConnect counts a connection attempt. result is "ok" or an error kind.
func DBConnect(result string) { dbConnects.WithLabelValues(result).Inc() }

// WatchlistOp counts a successful watchlist mutation.
func WatchlistOp(op string) { watchlistOps.WithLabelValues(op).Inc() }

// AuthAttempt counts a sign-up, sign-in, or sign-out outcome.
func AuthAttempt(op, result string) { authAttempts.WithLabelValues(op, result).Inc() }

// DigestSend counts one digest email.
func DigestSend(ok bool) {
	if ok {
		digestSends.WithLabelValues("sent").Inc()
		return
	}
	digestSends.WithLabelValues("failed").Inc()
}

// maxRouteLabelLength bounds the route label for unmatched paths.
const maxRouteLabelLength = 256

// HTTPMetrics records request durations labelled with the chi route
// pattern. Unmatched requests share the "unmatched" label so scanners
// can't blow up cardinality.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		protoMajor := r.ProtoMajor
		if protoMajor < 1 {
			protoMajor = 1
		}
		ww := middleware.NewWrapResponseWriter(w, protoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status < 100 || status > 599 {
			status = http.StatusInternalServerError
		}

		reqDuration.WithLabelValues(
			routeLabel(r),
			r.Method,
			strconv.Itoa(status),
		).Observe(time.Since(start).Seconds())
	})
}

func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return truncateUTF8(r.URL.Path, maxRouteLabelLength)
	}
	pattern := rctx.RoutePattern()
	if pattern == "" {
		return "unmatched"
	}
	return truncateUTF8(pattern, maxRouteLabelLength)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// truncateUTF8 cuts s to at most maxBytes without splitting a rune.
func truncateUTF8(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
