// middleware/notfound.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/stockwatch/httputil"
	"go.uber.org/zap"
)

// NotFoundHandler logs at debug and returns the JSON 404 envelope.
// Pass it to chi.Router.NotFound.
func NotFoundHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if logger != nil {
			logger.Debug("not_found", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		}
		httputil.JSONError(w, http.StatusNotFound, "not_found", "The requested resource was not found")
	}
}

// MethodNotAllowedHandler is the 405 counterpart of NotFoundHandler.
func MethodNotAllowedHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if logger != nil {
			logger.Debug("method_not_allowed", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		}
		httputil.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			"The requested HTTP method is not allowed for this resource")
	}
}
