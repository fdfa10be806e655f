// config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment variable read by Load,
// e.g. http_port is STOCKWATCH_HTTP_PORT.
const EnvPrefix = "STOCKWATCH"

// HTTPConfig groups the listener port and server timeouts.
type HTTPConfig struct {
	HTTPPort          int           `mapstructure:"http_port"`
	ReadTimeout       time.Duration `mapstructure:"-"`
	ReadHeaderTimeout time.Duration `mapstructure:"-"`
	WriteTimeout      time.Duration `mapstructure:"-"`
	IdleTimeout       time.Duration `mapstructure:"-"`
	ShutdownTimeout   time.Duration `mapstructure:"-"`
}

// CORSConfig groups all CORS behavior and lists.
type CORSConfig struct {
	EnableCORS           bool     `mapstructure:"enable_cors"`
	CORSAllowedOrigins   []string `mapstructure:"cors_allowed_origins"`
	CORSAllowedMethods   []string `mapstructure:"cors_allowed_methods"`
	CORSAllowedHeaders   []string `mapstructure:"cors_allowed_headers"`
	CORSExposedHeaders   []string `mapstructure:"cors_exposed_headers"`
	CORSAllowCredentials bool     `mapstructure:"cors_allow_credentials"`
	CORSMaxAge           int      `mapstructure:"cors_max_age"`
}

// CoreConfig holds the process-level settings every stockwatch binary shares.
type CoreConfig struct {
	Env      string `mapstructure:"env"`       // "dev" | "prod"
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error …

	HTTP HTTPConfig `mapstructure:",squash"`
	CORS CORSConfig `mapstructure:",squash"`

	// DB timeouts; the URI itself is an app key.
	DBConnectTimeout time.Duration `mapstructure:"-"`
	IndexBootTimeout time.Duration `mapstructure:"-"`

	MaxRequestBodyBytes int64 `mapstructure:"max_request_body_bytes"`
}

// IsProd reports whether the service runs with env=prod.
func (c CoreConfig) IsProd() bool { return strings.EqualFold(c.Env, "prod") }

// Dump returns indented JSON of the config for debug logging.
// CoreConfig carries no secrets; app values go through AppConfigValues.Fields.
func (c CoreConfig) Dump() string {
	b, _ := json.MarshalIndent(c, "", "  ")
	return string(b)
}

// durationKeys are parsed with parseDurationFlexible after Unmarshal.
var durationKeys = []struct {
	name string
	def  time.Duration
	set  func(*CoreConfig, time.Duration)
}{
	{"db_connect_timeout", 10 * time.Second, func(c *CoreConfig, d time.Duration) { c.DBConnectTimeout = d }},
	{"index_boot_timeout", 120 * time.Second, func(c *CoreConfig, d time.Duration) { c.IndexBootTimeout = d }},
	{"read_timeout", 15 * time.Second, func(c *CoreConfig, d time.Duration) { c.HTTP.ReadTimeout = d }},
	{"read_header_timeout", 10 * time.Second, func(c *CoreConfig, d time.Duration) { c.HTTP.ReadHeaderTimeout = d }},
	{"write_timeout", 30 * time.Second, func(c *CoreConfig, d time.Duration) { c.HTTP.WriteTimeout = d }},
	{"idle_timeout", 60 * time.Second, func(c *CoreConfig, d time.Duration) { c.HTTP.IdleTimeout = d }},
	{"shutdown_timeout", 15 * time.Second, func(c *CoreConfig, d time.Duration) { c.HTTP.ShutdownTimeout = d }},
}

var listKeys = []string{
	"cors_allowed_origins",
	"cors_allowed_methods",
	"cors_allowed_headers",
	"cors_exposed_headers",
}

// Load reads .env, config.* files in the working directory, STOCKWATCH_*
// env vars, and the process command line. App keys are registered as
// flags alongside the core ones.
// Precedence (highest wins): flags(explicit) > env > config > defaults.
func Load(logger *zap.Logger, keys ...AppKey) (*CoreConfig, AppConfigValues, error) {
	return load(logger, pflag.CommandLine, os.Args[1:], ".", keys)
}

func load(logger *zap.Logger, fs *pflag.FlagSet, args []string, dir string, keys []AppKey) (*CoreConfig, AppConfigValues, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// .env never overrides variables already present in the environment.
	if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
		logger.Info("loaded .env file")
	}

	registerCoreFlags(fs)
	if err := registerAppFlags(fs, keys); err != nil {
		return nil, nil, err
	}
	if !fs.Parsed() {
		if err := fs.Parse(args); err != nil {
			return nil, nil, fmt.Errorf("parse flags: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range coreKeys() {
		_ = v.BindEnv(k)
	}
	bindAppEnv(v, keys)

	mergeConfigFiles(logger, v, dir)

	setDefaults(v)
	setAppDefaults(v, keys)

	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = v.BindPFlag(f.Name, f)
		}
	})

	if err := normalizeListKeys(logger, v, append(listKeys, appListKeys(keys)...)...); err != nil {
		return nil, nil, err
	}

	var cfg CoreConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unable to decode core config: %w", err)
	}
	for _, dk := range durationKeys {
		d, err := parseDurationFlexible(v.Get(dk.name), dk.def)
		if err != nil {
			logger.Warn("invalid duration; using default",
				zap.String("key", dk.name), zap.Duration("default", dk.def), zap.Error(err))
		}
		dk.set(&cfg, d)
	}

	if err := validateCoreConfig(cfg); err != nil {
		return nil, nil, err
	}

	vals := collectAppValues(v, keys)
	if len(keys) > 0 {
		logger.Info("app config loaded", vals.Fields(keys)...)
	}
	return &cfg, vals, nil
}

func registerCoreFlags(fs *pflag.FlagSet) {
	if fs.Lookup("env") != nil {
		return
	}
	fs.String("env", "dev", `Runtime environment "dev"|"prod"`)
	fs.String("log_level", "debug", "Log level")
	fs.Int("http_port", 8080, "HTTP port")

	fs.String("db_connect_timeout", "10s", `Timeout for the MongoDB connection (e.g., "10s", "30s")`)
	fs.String("index_boot_timeout", "120s", `Startup timeout for building indexes (e.g., "90s", "2m")`)
	fs.String("read_timeout", "15s", "HTTP server read timeout")
	fs.String("read_header_timeout", "10s", "HTTP server read-header timeout")
	fs.String("write_timeout", "30s", "HTTP server write timeout")
	fs.String("idle_timeout", "60s", "HTTP server keep-alive idle timeout")
	fs.String("shutdown_timeout", "15s", "Grace period for in-flight requests on shutdown")

	fs.Bool("enable_cors", false, "Enable CORS")
	fs.String("cors_allowed_origins", "", `JSON array of origins, e.g. '["https://a.example","https://b.example"]'`)
	fs.String("cors_allowed_methods", "", `JSON array of methods, e.g. '["GET","POST"]'`)
	fs.String("cors_allowed_headers", "", `JSON array of headers, e.g. '["Accept","Authorization"]'`)
	fs.String("cors_exposed_headers", "", `JSON array of headers, e.g. '["Link"]'`)
	fs.Bool("cors_allow_credentials", false, "CORS: allow credentials")
	fs.Int("cors_max_age", 0, "CORS: max age seconds (0 disables cache)")

	fs.Int64("max_request_body_bytes", 1<<20, "Max HTTP request body size in bytes (0 = unlimited)")
}

func coreKeys() []string {
	keys := []string{
		"env", "log_level", "http_port",
		"enable_cors",
		"cors_allowed_origins", "cors_allowed_methods", "cors_allowed_headers",
		"cors_exposed_headers", "cors_allow_credentials", "cors_max_age",
		"max_request_body_bytes",
	}
	for _, dk := range durationKeys {
		keys = append(keys, dk.name)
	}
	return keys
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "debug")
	v.SetDefault("http_port", 8080)

	for _, dk := range durationKeys {
		v.SetDefault(dk.name, dk.def.String())
	}

	v.SetDefault("enable_cors", false)
	v.SetDefault("cors_allowed_origins", []string{})
	v.SetDefault("cors_allowed_methods", []string{})
	v.SetDefault("cors_allowed_headers", []string{})
	v.SetDefault("cors_exposed_headers", []string{})
	v.SetDefault("cors_allow_credentials", false)
	v.SetDefault("cors_max_age", 0)

	v.SetDefault("max_request_body_bytes", int64(1<<20))
}

// mergeConfigFiles merges config.{yaml,yml,json,toml} from dir, in that order.
func mergeConfigFiles(logger *zap.Logger, v *viper.Viper, dir string) {
	for _, ext := range [...]string{"yaml", "yml", "json", "toml"} {
		file := filepath.Join(dir, "config."+ext)
		b, err := os.ReadFile(file)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("cannot read config file", zap.String("file", file), zap.Error(err))
			}
			continue
		}
		v.SetConfigType(ext)
		if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
			logger.Warn("cannot decode config file", zap.String("file", file), zap.Error(err))
			continue
		}
		logger.Info("loaded config file", zap.String("file", file))
	}
}

// normalizeListKeys coerces JSON-string values into []string for the given keys.
func normalizeListKeys(logger *zap.Logger, v *viper.Viper, keys ...string) error {
	for _, key := range keys {
		switch t := v.Get(key).(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				v.Set(key, []string{})
				continue
			}
			var arr []string
			if err := json.Unmarshal([]byte(s), &arr); err != nil {
				return fmt.Errorf("config key %q expects a JSON array string: %w", key, err)
			}
			v.Set(key, arr)
		case []any:
			arr := make([]string, 0, len(t))
			for _, e := range t {
				arr = append(arr, fmt.Sprint(e))
			}
			v.Set(key, arr)
		case []string, nil:
		default:
			logger.Warn("unexpected type for list key; expected JSON array/string",
				zap.String("key", key), zap.Any("value", t))
		}
	}
	return nil
}

func validateCoreConfig(cfg CoreConfig) error {
	var missing []string
	var invalid []string

	switch strings.ToLower(cfg.Env) {
	case "dev", "prod", "test":
	default:
		invalid = append(invalid, `env must be "dev", "test" or "prod"`)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		invalid = append(invalid, fmt.Sprintf("log_level %q is not a zap level", cfg.LogLevel))
	}

	if cfg.HTTP.HTTPPort <= 0 || cfg.HTTP.HTTPPort > 65535 {
		invalid = append(invalid, "http_port must be in 1..65535")
	}

	if cfg.CORS.EnableCORS {
		if len(cfg.CORS.CORSAllowedOrigins) == 0 {
			missing = append(missing, "CORS: cors_allowed_origins (JSON array) required when enable_cors=true")
		}
		if len(cfg.CORS.CORSAllowedMethods) == 0 {
			missing = append(missing, "CORS: cors_allowed_methods (JSON array) required when enable_cors=true")
		}
		for _, o := range cfg.CORS.CORSAllowedOrigins {
			if o == "*" && cfg.CORS.CORSAllowCredentials {
				invalid = append(invalid, `CORS: cannot use "*" in cors_allowed_origins when cors_allow_credentials=true`)
				break
			}
		}
		if cfg.CORS.CORSMaxAge < 0 {
			invalid = append(invalid, "CORS: cors_max_age must be >= 0")
		}
	}

	if cfg.MaxRequestBodyBytes < 0 {
		invalid = append(invalid, "max_request_body_bytes must be >= 0")
	}

	return Problems("core configuration errors", missing, invalid)
}

// Problems folds missing/invalid lists into one *Error, or returns nil when
// both are empty. Apps use it to report their own validation the same way.
func Problems(prefix string, missing, invalid []string) error {
	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(invalid, ", "))
	}
	return &Error{Prefix: prefix, Missing: missing, Invalid: invalid, msg: prefix + ": " + strings.Join(parts, " | ")}
}

// Error is returned when configuration fails validation. It lists every
// problem found rather than stopping at the first one.
type Error struct {
	Prefix  string
	Missing []string
	Invalid []string
	msg     string
}

func (e *Error) Error() string { return e.msg }
