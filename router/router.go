// router/router.go
package router

import (
	"github.com/dalemusser/stockwatch/config"
	"github.com/dalemusser/stockwatch/logging"
	"github.com/dalemusser/stockwatch/metrics"
	"github.com/dalemusser/stockwatch/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// New returns a chi.Router with the standard stack installed, outermost
// first: request ID, real IP, metrics, access log, panic recovery,
// CORS, API headers, body size limit. Unknown routes and methods get JSON
// errors. Routes, /health and /metrics are mounted by the caller.
func New(coreCfg *config.CoreConfig, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	// Recoverer sits inside metrics and the access log so panics are
	// recorded as 500s.
	r.Use(metrics.HTTPMetrics)
	r.Use(logging.RequestLogger(logger))
	r.Use(logging.Recoverer(logger))

	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.APIHeaders)
	r.Use(middleware.LimitBodySize(coreCfg.MaxRequestBodyBytes))

	r.NotFound(middleware.NotFoundHandler(logger))
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler(logger))

	return r
}
