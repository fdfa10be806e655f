// internal/app/features/auth/middleware.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/stockwatch/httputil"
	"go.uber.org/zap"
)

type ctxKey struct{}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// ClaimsFrom returns the claims Middleware stored on the context.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}

// Authenticator turns a bearer token into claims.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*Claims, error)
}

// Middleware requires "Authorization: Bearer <token>". A missing,
// invalid, or revoked token is 401; a revocation store failure is 503.
func Middleware(a Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}
			claims, err := a.Authenticate(r.Context(), raw)
			if err != nil {
				if errors.Is(err, ErrInvalidToken) {
					unauthorized(w)
					return
				}
				logger.Error("session check failed", zap.Error(err))
				httputil.JSONError(w, http.StatusServiceUnavailable, "unavailable", "session check unavailable")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="stockwatch"`)
	httputil.JSONError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
