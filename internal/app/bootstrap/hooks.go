// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/stockwatch/app"
	"github.com/dalemusser/stockwatch/auth/apikey"
	"github.com/dalemusser/stockwatch/cache"
	"github.com/dalemusser/stockwatch/config"
	"github.com/dalemusser/stockwatch/db/mongodb"
	"github.com/dalemusser/stockwatch/email"
	"github.com/dalemusser/stockwatch/health"
	"github.com/dalemusser/stockwatch/httputil"
	"github.com/dalemusser/stockwatch/internal/app/features/auth"
	"github.com/dalemusser/stockwatch/internal/app/features/digest"
	"github.com/dalemusser/stockwatch/internal/app/features/watchlist"
	"github.com/dalemusser/stockwatch/internal/app/store"
	"github.com/dalemusser/stockwatch/metrics"
	"github.com/dalemusser/stockwatch/router"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const healthTimeout = 5 * time.Second

// ConnectDB creates the Mongo manager, connects it once so a bad URI or
// unreachable cluster fails startup, and opens the cache.
func ConnectDB(ctx context.Context, core *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	pool := mongodb.DefaultPoolConfig()
	pool.ConnectTimeout = core.DBConnectTimeout
	pool.ServerSelectionTimeout = core.DBConnectTimeout

	mgr := mongodb.NewManager(mongodb.Config{
		URI:      appCfg.MongoURI,
		Database: appCfg.MongoDatabase,
		Pool:     pool,
	}, logger)
	if _, err := mgr.Database(ctx); err != nil {
		return DBDeps{}, err
	}

	c, err := cache.Open(ctx, cache.Config{
		RedisAddr:     appCfg.RedisAddr,
		RedisPassword: appCfg.RedisPassword,
		KeyPrefix:     "stockwatch:",
	})
	if err != nil {
		_ = mgr.Close(context.WithoutCancel(ctx))
		return DBDeps{}, fmt.Errorf("open cache: %w", err)
	}
	if appCfg.RedisAddr == "" {
		logger.Info("using in-memory cache; sign-outs are not shared across instances")
	}
	return DBDeps{Mongo: mgr, Cache: c}, nil
}

// EnsureSchema creates the collections' indexes.
func EnsureSchema(ctx context.Context, _ *config.CoreConfig, _ AppConfig, deps DBDeps, logger *zap.Logger) error {
	db, err := deps.Mongo.Database(ctx)
	if err != nil {
		return err
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	logger.Info("indexes ensured", zap.String("database", db.Name()))
	return nil
}

// BuildHandler mounts /health, /metrics, and the /api routes.
func BuildHandler(core *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	httputil.SetLogger(logger)

	secret := appCfg.AuthSecret
	if secret == "" {
		s, err := ephemeralSecret()
		if err != nil {
			return nil, err
		}
		secret = s
		logger.Warn("auth_secret not set; using a random key, sessions end on restart")
	}
	tokens, err := auth.NewTokens(secret, appCfg.AuthTokenTTL)
	if err != nil {
		return nil, err
	}

	users := store.NewUsers(deps.Mongo)
	list := store.NewWatchlist(deps.Mongo, users, deps.Cache, logger)
	accounts := auth.NewService(users, tokens, deps.Cache, logger)

	mailer := email.NewSender(appCfg.SMTP)
	if appCfg.SMTP.Enabled() {
		accounts.OnUserCreated(welcomeListener(mailer, appCfg.AppURL, logger))
	} else {
		logger.Info("smtp_host not set; welcome and digest emails are disabled")
	}
	runner := digest.New(users, list, mailer, appCfg.AppURL, logger)

	r := router.New(core, logger)
	health.Mount(r, map[string]health.Check{"mongodb": deps.Mongo.Ping}, healthTimeout, logger)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", auth.NewHandler(accounts, auth.NewRateLimiter(appCfg.SignInRatePerMinute), logger).Routes())
		api.With(auth.Middleware(accounts, logger)).
			Mount("/watchlist", watchlist.NewHandler(list, logger).Routes())
		api.With(apikey.Require(appCfg.AdminAPIKey, apikey.Options{}, logger)).
			Post("/admin/digest", digest.Handler(runner, logger))
	})

	return r, nil
}

// Shutdown disconnects Mongo and closes the cache.
func Shutdown(ctx context.Context, deps DBDeps, logger *zap.Logger) error {
	var errs []error
	if deps.Mongo != nil {
		errs = append(errs, deps.Mongo.Close(ctx))
	}
	if deps.Cache != nil {
		errs = append(errs, deps.Cache.Close())
	}
	err := errors.Join(errs...)
	if err == nil {
		logger.Info("backends closed")
	}
	return err
}

func ephemeralSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate auth secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hooks wires the service into app.Run.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:         "stockwatch",
	LoadConfig:   LoadConfig,
	ConnectDB:    ConnectDB,
	EnsureSchema: EnsureSchema,
	BuildHandler: BuildHandler,
	Shutdown:     Shutdown,
}
