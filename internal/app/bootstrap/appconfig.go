// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/stockwatch/config"
	"github.com/dalemusser/stockwatch/email"
	"github.com/dalemusser/stockwatch/mongouri"
	"go.uber.org/zap"
)

// AppConfig holds the service-specific configuration.
type AppConfig struct {
	MongoURI      string
	MongoDatabase string

	AuthSecret   string
	AuthTokenTTL time.Duration

	// AppURL is linked from emails.
	AppURL string

	SMTP email.Config

	RedisAddr     string
	RedisPassword string

	AdminAPIKey         string
	SignInRatePerMinute int
}

// minProdSecretLen is the shortest auth_secret accepted in prod (32 bytes
// of HS256 key material).
const minProdSecretLen = 32

// appKeys are read from config files, STOCKWATCH_<NAME> env vars, and
// --<name> flags. Aliases keep the env names the Node app used.
var appKeys = []config.AppKey{
	{Name: "mongodb_uri", Default: "", Desc: "MongoDB connection string", EnvAliases: []string{"MONGODB_URI"}},
	{Name: "mongodb_database", Default: "", Desc: "Database name (overrides the URI path)"},
	{Name: "auth_secret", Default: "", Desc: "HS256 key for session tokens", EnvAliases: []string{"BETTER_AUTH_SECRET"}},
	{Name: "auth_token_ttl", Default: 24 * time.Hour, Desc: "Session token lifetime"},
	{Name: "app_url", Default: "http://localhost:8080/", Desc: "Dashboard URL linked from emails", EnvAliases: []string{"NEXT_PUBLIC_APP_URL"}},
	{Name: "smtp_host", Default: "", Desc: "SMTP host; empty disables email"},
	{Name: "smtp_port", Default: 587, Desc: "SMTP port (465 = implicit TLS)"},
	{Name: "smtp_username", Default: "", Desc: "SMTP username", EnvAliases: []string{"NODEMAILER_EMAIL"}},
	{Name: "smtp_password", Default: "", Desc: "SMTP password", EnvAliases: []string{"NODEMAILER_PASSWORD"}},
	{Name: "smtp_from", Default: "", Desc: "From address (defaults to smtp_username)"},
	{Name: "smtp_from_name", Default: "Stockwatch", Desc: "From display name"},
	{Name: "redis_addr", Default: "", Desc: "Redis address for the shared cache; empty uses memory"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "admin_api_key", Default: "", Desc: "Key for /api/admin endpoints; empty disables them"},
	{Name: "signin_rate_per_minute", Default: 10, Desc: "Sign-in attempts per IP per minute; 0 disables"},
}

// LoadConfig loads core config and AppConfig, then validates AppConfig.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, vals, err := config.Load(logger, appKeys...)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := fromValues(vals)
	if err := validateAppConfig(coreCfg, appCfg); err != nil {
		return nil, AppConfig{}, err
	}
	return coreCfg, appCfg, nil
}

func fromValues(vals config.AppConfigValues) AppConfig {
	from := vals.String("smtp_from")
	if from == "" {
		from = vals.String("smtp_username")
	}
	return AppConfig{
		MongoURI:      vals.String("mongodb_uri"),
		MongoDatabase: vals.String("mongodb_database"),
		AuthSecret:    vals.String("auth_secret"),
		AuthTokenTTL:  vals.Duration("auth_token_ttl", 24*time.Hour),
		AppURL:        vals.String("app_url"),
		SMTP: email.Config{
			Host:        vals.String("smtp_host"),
			Port:        vals.Int("smtp_port"),
			Username:    vals.String("smtp_username"),
			Password:    vals.String("smtp_password"),
			FromAddress: from,
			FromName:    vals.String("smtp_from_name"),
		},
		RedisAddr:           vals.String("redis_addr"),
		RedisPassword:       vals.String("redis_password"),
		AdminAPIKey:         vals.String("admin_api_key"),
		SignInRatePerMinute: vals.Int("signin_rate_per_minute"),
	}
}

// validateAppConfig collects every problem instead of stopping at the
// first. URI issues are listed individually and never echo the URI.
func validateAppConfig(core *config.CoreConfig, c AppConfig) error {
	var missing, invalid []string

	if strings.TrimSpace(c.MongoURI) == "" {
		missing = append(missing, "mongodb_uri (or MONGODB_URI)")
	} else if report := mongouri.Validate(c.MongoURI); !report.Valid {
		for _, msg := range report.Messages() {
			invalid = append(invalid, "mongodb_uri: "+msg)
		}
	}

	if core.IsProd() {
		switch {
		case c.AuthSecret == "":
			missing = append(missing, "auth_secret (required in prod)")
		case len(c.AuthSecret) < minProdSecretLen:
			invalid = append(invalid, fmt.Sprintf("auth_secret must be at least %d bytes in prod", minProdSecretLen))
		}
	}

	if c.SMTP.Enabled() {
		if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
			invalid = append(invalid, "smtp_port must be in 1..65535")
		}
		if c.SMTP.FromAddress == "" {
			missing = append(missing, "smtp_from (or smtp_username) when smtp_host is set")
		}
	}

	if c.SignInRatePerMinute < 0 {
		invalid = append(invalid, "signin_rate_per_minute must be >= 0")
	}

	return config.Problems("app configuration errors", missing, invalid)
}
