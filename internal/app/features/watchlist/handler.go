// internal/app/features/watchlist/handler.go
package watchlist

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/stockwatch/httputil"
	"github.com/dalemusser/stockwatch/internal/app/features/auth"
	"github.com/dalemusser/stockwatch/internal/app/store"
	"github.com/dalemusser/stockwatch/internal/domain/models"
	"github.com/dalemusser/stockwatch/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Store is the part of store.Watchlist the handlers call.
type Store interface {
	Dashboard(ctx context.Context, userID string) ([]models.DashboardItem, error)
	Contains(ctx context.Context, userID, symbol string) (bool, error)
	Add(ctx context.Context, userID, symbol, company string) error
	Remove(ctx context.Context, userID, symbol string) error
}

type Handler struct {
	store  Store
	logger *zap.Logger
}

func NewHandler(s Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: s, logger: logger}
}

// Routes returns the router to mount at /api/watchlist, behind
// auth.Middleware.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireJSON)
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Get("/{symbol}", h.status)
	r.Delete("/{symbol}", h.remove)
	return r
}

type listResponse struct {
	Items []models.DashboardItem `json:"items"`
}

type addRequest struct {
	Symbol  string `json:"symbol"`
	Company string `json:"company"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type statusResponse struct {
	Symbol      string `json:"symbol"`
	InWatchlist bool   `json:"inWatchlist"`
}

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	c, ok := auth.ClaimsFrom(r.Context())
	if !ok || c.UserID() == "" {
		httputil.JSONError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
		return "", false
	}
	return c.UserID(), true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	items, err := h.store.Dashboard(r.Context(), uid)
	if err != nil {
		h.fail(w, "watchlist list failed", uid, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Items: items})
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req addRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := h.store.Add(r.Context(), uid, req.Symbol, req.Company); err != nil {
		if errors.Is(err, store.ErrMissingParams) {
			httputil.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		h.fail(w, "watchlist add failed", uid, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	in, err := h.store.Contains(r.Context(), uid, symbol)
	if err != nil {
		h.fail(w, "watchlist lookup failed", uid, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Symbol: symbol, InWatchlist: in})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if err := h.store.Remove(r.Context(), uid, chi.URLParam(r, "symbol")); err != nil {
		if errors.Is(err, store.ErrMissingParams) {
			httputil.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		h.fail(w, "watchlist remove failed", uid, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) fail(w http.ResponseWriter, msg, uid string, err error) {
	h.logger.Error(msg, zap.String("user_id", uid), zap.Error(err))
	httputil.JSONError(w, http.StatusInternalServerError, "internal", "watchlist operation failed")
}
