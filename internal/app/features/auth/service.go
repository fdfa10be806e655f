// internal/app/features/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/stockwatch/cache"
	"github.com/dalemusser/stockwatch/internal/app/store"
	"github.com/dalemusser/stockwatch/internal/domain/models"
	"github.com/dalemusser/stockwatch/metrics"
	"go.uber.org/zap"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

var (
	// ErrUserNotFound means no account exists for the email.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrInvalidPassword means the account exists but the password is wrong.
	ErrInvalidPassword = errors.New("auth: invalid password")

	ErrEmailTaken = store.ErrEmailTaken
)

// ValidationError reports unusable sign-up or sign-in input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UserStore is the part of store.Users the service needs.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// SignUpInput is the sign-up form.
type SignUpInput struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	FullName          string `json:"fullName"`
	Country           string `json:"country,omitempty"`
	InvestmentGoals   string `json:"investmentGoals,omitempty"`
	RiskTolerance     string `json:"riskTolerance,omitempty"`
	PreferredIndustry string `json:"preferredIndustry,omitempty"`
}

// PublicUser is the account as returned to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is a signed-in user and their bearer token.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      PublicUser `json:"user"`
}

// UserCreated is published after a successful sign-up.
type UserCreated struct {
	User models.User
}

// Listener reacts to a new account. Listeners run in their own goroutine
// after SignUp returns; errors are theirs to log.
type Listener func(ctx context.Context, ev UserCreated)

// Service implements email and password accounts with JWT sessions.
// Signed-out token IDs are kept in a cache until the token would expire.
type Service struct {
	users   UserStore
	tokens  *Tokens
	revoked cache.Cache
	logger  *zap.Logger
	hash    HashParams

	mu        sync.RWMutex
	listeners []Listener
	wg        sync.WaitGroup
}

func NewService(users UserStore, tokens *Tokens, revoked cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
		logger:  logger,
		hash:    DefaultHashParams(),
	}
}

// OnUserCreated registers l for every future sign-up.
func (s *Service) OnUserCreated(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Wait blocks until running listeners finish.
func (s *Service) Wait() { s.wg.Wait() }

// SignUp creates the account and signs it in.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validateSignUp(in); err != nil {
		metrics.AuthAttempt("sign_up", "invalid")
		return nil, err
	}

	hash, err := hashPassword(in.Password, s.hash)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Email:             in.Email,
		Name:              in.FullName,
		PasswordHash:      hash,
		Country:           in.Country,
		InvestmentGoals:   in.InvestmentGoals,
		RiskTolerance:     in.RiskTolerance,
		PreferredIndustry: in.PreferredIndustry,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			metrics.AuthAttempt("sign_up", "email_taken")
			return nil, ErrEmailTaken
		}
		metrics.AuthAttempt("sign_up", "error")
		return nil, err
	}

	metrics.AuthAttempt("sign_up", "ok")
	s.logger.Info("user signed up", zap.String("user_id", u.ID))
	s.publish(ctx, *u)

	return s.session(u)
}

func validateSignUp(in SignUpInput) error {
	if !validEmail(in.Email) {
		return &ValidationError{Field: "email", Message: "a valid email address is required"}
	}
	if in.FullName == "" {
		return &ValidationError{Field: "fullName", Message: "full name is required"}
	}
	n := utf8.RuneCountInString(in.Password)
	if n < MinPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	if n > MaxPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("password must be at most %d characters", MaxPasswordLength)}
	}
	return nil
}

// validEmail catches empty input, a missing '@', and a domain without a
// dot. It is not an RFC validator.
func validEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	return strings.Contains(s[at+1:], ".")
}

func (s *Service) publish(ctx context.Context, u models.User) {
	u.PasswordHash = ""
	ev := UserCreated{User: u}

	s.mu.RLock()
	ls := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()

	// The request context ends with the response; listeners outlive it.
	ctx = context.WithoutCancel(ctx)
	for _, l := range ls {
		s.wg.Add(1)
		go func(l Listener) {
			defer s.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("user created listener panicked", zap.Any("panic", r))
				}
			}()
			l(ctx, ev)
		}(l)
	}
}

// SignIn checks the email first, so a missing account and a wrong
// password are distinct errors.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.AuthAttempt("sign_in", "invalid")
		return nil, &ValidationError{Field: "email", Message: "email and password are required"}
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.AuthAttempt("sign_in", "user_not_found")
			return nil, ErrUserNotFound
		}
		metrics.AuthAttempt("sign_in", "error")
		return nil, err
	}

	if err := verifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, errHashMismatch) {
			metrics.AuthAttempt("sign_in", "invalid_password")
			return nil, ErrInvalidPassword
		}
		metrics.AuthAttempt("sign_in", "error")
		s.logger.Error("stored password hash unusable", zap.String("user_id", u.ID), zap.Error(err))
		return nil, fmt.Errorf("verify password: %w", err)
	}

	metrics.AuthAttempt("sign_in", "ok")
	return s.session(u)
}

func (s *Service) session(u *models.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      PublicUser{ID: u.ID, Email: u.Email, Name: u.Name},
	}, nil
}

func revokedKey(jti string) string { return "auth:revoked:" + jti }

// SignOut revokes the token until it expires.
func (s *Service) SignOut(ctx context.Context, raw string) error {
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		metrics.AuthAttempt("sign_out", "invalid")
		return err
	}

	ttl := claims.ExpiresAt.Sub(s.tokens.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := s.revoked.Set(ctx, revokedKey(claims.ID), []byte(claims.Subject), ttl); err != nil {
		metrics.AuthAttempt("sign_out", "error")
		return fmt.Errorf("revoke session: %w", err)
	}
	metrics.AuthAttempt("sign_out", "ok")
	return nil
}

// Authenticate verifies raw and rejects revoked sessions. A revocation
// lookup that fails for any reason other than a miss is returned as is,
// so the caller can fail closed.
func (s *Service) Authenticate(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	_, err = s.revoked.Get(ctx, revokedKey(claims.ID))
	switch {
	case err == nil:
		return nil, ErrInvalidToken
	case errors.Is(err, cache.ErrNotFound):
		return claims, nil
	default:
		return nil, fmt.Errorf("check revocation: %w", err)
	}
}
