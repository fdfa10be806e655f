// internal/app/features/auth/handler.go
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/stockwatch/httputil"
	"github.com/dalemusser/stockwatch/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Error codes the sign-in form switches on.
const (
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeInvalidPassword = "INVALID_PASSWORD"
)

const userNotFoundMessage = "This account does not exist. Please sign up first."

// Accounts is the part of Service the handlers call.
type Accounts interface {
	SignUp(ctx context.Context, in SignUpInput) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, raw string) error
}

type Handler struct {
	accounts Accounts
	limiter  *RateLimiter
	logger   *zap.Logger
}

// NewHandler wires the auth endpoints. A nil limiter disables sign-in
// rate limiting.
func NewHandler(accounts Accounts, limiter *RateLimiter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{accounts: accounts, limiter: limiter, logger: logger}
}

// Routes returns the router to mount at /api/auth.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireJSON)
	r.Post("/sign-up", h.signUp)
	r.With(h.limiter.Middleware).Post("/sign-in", h.signIn)
	r.Post("/sign-out", h.signOut)
	return r
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var in SignUpInput
	if err := httputil.BindJSON(r, &in); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	sess, err := h.accounts.SignUp(r.Context(), in)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			httputil.JSONError(w, http.StatusBadRequest, "invalid_"+ve.Field, ve.Message)
		case errors.Is(err, ErrEmailTaken):
			httputil.JSONError(w, http.StatusConflict, "email_taken", "an account with this email already exists")
		default:
			h.logger.Error("sign up failed", zap.Error(err))
			httputil.JSONError(w, http.StatusInternalServerError, "internal", "failed to create account, please try again")
		}
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sess)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var in signInRequest
	if err := httputil.BindJSON(r, &in); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	sess, err := h.accounts.SignIn(r.Context(), in.Email, in.Password)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			httputil.JSONError(w, http.StatusBadRequest, "bad_request", ve.Message)
		case errors.Is(err, ErrUserNotFound):
			httputil.JSONError(w, http.StatusNotFound, CodeUserNotFound, userNotFoundMessage)
		case errors.Is(err, ErrInvalidPassword):
			httputil.JSONError(w, http.StatusUnauthorized, CodeInvalidPassword, "Invalid email or password")
		default:
			h.logger.Error("sign in failed", zap.Error(err))
			httputil.JSONError(w, http.StatusInternalServerError, "internal", "sign in failed, please try again")
		}
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	raw, ok := bearerToken(r)
	if !ok {
		unauthorized(w)
		return
	}
	if err := h.accounts.SignOut(r.Context(), raw); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			unauthorized(w)
			return
		}
		h.logger.Error("sign out failed", zap.Error(err))
		httputil.JSONError(w, http.StatusInternalServerError, "internal", "sign out failed")
		return
	}
	httputil.NoContent(w)
}
