// metrics/metrics_test.go
package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(authAttempts.WithLabelValues("sign_in", "ok"))
	AuthAttempt("sign_in", "ok")
	AuthAttempt("sign_in", "ok")
	assert.Equal(t, before+2, testutil.ToFloat64(authAttempts.WithLabelValues("sign_in", "ok")))

	before = testutil.ToFloat64(watchlistOps.WithLabelValues("add"))
	WatchlistOp("add")
	assert.Equal(t, before+1, testutil.ToFloat64(watchlistOps.WithLabelValues("add")))

	before = testutil.ToFloat64(dbConnects.WithLabelValues("invalid_uri"))
	DBConnect("invalid_uri")
	assert.Equal(t, before+1, testutil.ToFloat64(dbConnects.WithLabelValues("invalid_uri")))

	before = testutil.ToFloat64(digestSends.WithLabelValues("failed"))
	DigestSend(false)
	assert.Equal(t, before+1, testutil.ToFloat64(digestSends.WithLabelValues("failed")))
}

func TestRegisterDefault_Twice(t *testing.T) {
	RegisterDefault(nil)
	assert.NotPanics(t, func() { RegisterDefault(nil) })
}

func TestHTTPMetrics_RouteLabel(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMetrics)
	r.Get("/api/watchlist/{symbol}", func(w http.ResponseWriter, _ *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/watchlist/AAPL", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/"+strings.Repeat("x", 10), nil))

	// one series for the pattern, one shared by every unmatched path
	assert.GreaterOrEqual(t, testutil.CollectAndCount(reqDuration), 2)
	assert.Equal(t, "unmatched", routeLabel(withEmptyRouteContext()))
}

func withEmptyRouteContext() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/scan/me", nil)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chi.NewRouteContext()))
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"héllo", 2, "h"},
		{"x", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateUTF8(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateUTF8(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
