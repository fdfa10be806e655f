// health/health_test.go
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestHandler_NoChecks(t *testing.T) {
	code, resp := get(t, Handler(nil, 0, nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestHandler_AllPass(t *testing.T) {
	checks := map[string]Check{
		"mongo": func(context.Context) error { return nil },
		"cache": func(context.Context) error { return nil },
	}
	code, resp := get(t, Handler(checks, time.Second, nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]string{"mongo": "ok", "cache": "ok"}, resp.Checks)
}

func TestHandler_FailureHidesDetail(t *testing.T) {
	checks := map[string]Check{
		"mongo": func(context.Context) error { return errors.New("dial tcp db.internal:27017: refused") },
		"cache": func(context.Context) error { return nil },
	}
	code, resp := get(t, Handler(checks, time.Second, nil))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "error", resp.Checks["mongo"])
	assert.Equal(t, "ok", resp.Checks["cache"])
}

func TestHandler_Timeout(t *testing.T) {
	checks := map[string]Check{
		"slow": func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	code, _ := get(t, Handler(checks, 10*time.Millisecond, nil))
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestMount(t *testing.T) {
	r := chi.NewRouter()
	Mount(r, nil, 0, nil)
	code, _ := get(t, r)
	assert.Equal(t, http.StatusOK, code)
}
