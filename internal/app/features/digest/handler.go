// internal/app/features/digest/handler.go
package digest

import (
	"context"
	"net/http"

	"github.com/dalemusser/stockwatch/httputil"
	"go.uber.org/zap"
)

// Runner runs one digest pass.
type Runner interface {
	Run(ctx context.Context) (Result, error)
}

// Handler triggers a digest run and reports {sent, failed}. It is mounted
// behind apikey.Require.
func Handler(r Runner, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, req *http.Request) {
		res, err := r.Run(req.Context())
		if err != nil {
			logger.Error("watchlist digest run failed", zap.Error(err))
			httputil.JSONError(w, http.StatusInternalServerError, "internal", "digest run failed")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, res)
	}
}
