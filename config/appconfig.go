// config/appconfig.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// AppKey defines an application configuration key. Load reads it from
// config files, STOCKWATCH_<NAME> env vars, and a --<name> flag.
type AppKey struct {
	// Name is used as-is for config files and CLI flags.
	Name string

	// Default is the value used when nothing else sets the key.
	// Supported types: string, int, int64, bool, []string, time.Duration.
	Default any

	// Desc is a short description for --help output.
	Desc string

	// EnvAliases are extra env var names read verbatim (no prefix), in
	// order after STOCKWATCH_<NAME>. MONGODB_URI is one.
	EnvAliases []string

	// Secret keys are redacted when logged.
	Secret bool
}

// redacted reports whether the key's value must not appear in logs.
func (k AppKey) redacted() bool {
	if k.Secret {
		return true
	}
	n := strings.ToLower(k.Name)
	return strings.Contains(n, "key") ||
		strings.Contains(n, "secret") ||
		strings.Contains(n, "password") ||
		strings.Contains(n, "token") ||
		strings.HasSuffix(n, "_uri")
}

// AppConfigValues holds loaded app configuration keyed by AppKey.Name.
// Values have the Go type of the key's Default.
type AppConfigValues map[string]any

// String returns a string value or empty string if not found/wrong type.
func (a AppConfigValues) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Int returns an int value or 0 if not found/wrong type.
func (a AppConfigValues) Int(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

// Int64 returns an int64 value or 0 if not found/wrong type.
func (a AppConfigValues) Int64(key string) int64 {
	switch v := a[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Bool returns a bool value or false if not found/wrong type.
func (a AppConfigValues) Bool(key string) bool {
	if v, ok := a[key].(bool); ok {
		return v
	}
	return false
}

// StringSlice returns a []string value or nil if not found/wrong type.
func (a AppConfigValues) StringSlice(key string) []string {
	if v, ok := a[key].([]string); ok {
		return v
	}
	return nil
}

// Duration returns the key as a duration. Go duration strings ("90s",
// "1h30m") and plain seconds (600, "600") are accepted; anything else
// yields def.
func (a AppConfigValues) Duration(key string, def time.Duration) time.Duration {
	raw := a[key]
	if raw == nil {
		return def
	}
	dur, err := parseDurationFlexible(raw, def)
	if err != nil {
		return def
	}
	return dur
}

// Fields returns zap fields for every key, with secrets replaced by
// "[REDACTED]" (or "" when unset, so a missing secret is still visible).
func (a AppConfigValues) Fields(keys []AppKey) []zap.Field {
	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		if k.redacted() {
			val := "[REDACTED]"
			if s, ok := a[k.Name].(string); ok && s == "" {
				val = ""
			}
			fields = append(fields, zap.String(k.Name, val))
			continue
		}
		fields = append(fields, zap.Any(k.Name, a[k.Name]))
	}
	return fields
}

// registerAppFlags registers a flag per key. Must run before fs.Parse.
func registerAppFlags(fs *pflag.FlagSet, keys []AppKey) error {
	for _, key := range keys {
		if fs.Lookup(key.Name) != nil {
			return fmt.Errorf("config key %q conflicts with existing flag", key.Name)
		}

		switch d := key.Default.(type) {
		case string:
			fs.String(key.Name, d, key.Desc)
		case int:
			fs.Int(key.Name, d, key.Desc)
		case int64:
			fs.Int64(key.Name, d, key.Desc)
		case bool:
			fs.Bool(key.Name, d, key.Desc)
		case time.Duration:
			fs.String(key.Name, d.String(), key.Desc)
		case []string:
			fs.String(key.Name, "", key.Desc+" (JSON array)")
		default:
			return fmt.Errorf("config key %q has unsupported default type %T", key.Name, key.Default)
		}
	}
	return nil
}

func bindAppEnv(v *viper.Viper, keys []AppKey) {
	for _, key := range keys {
		if len(key.EnvAliases) == 0 {
			_ = v.BindEnv(key.Name)
			continue
		}
		// With explicit names viper skips the prefix, so add it back first.
		names := append([]string{key.Name, EnvPrefix + "_" + strings.ToUpper(key.Name)}, key.EnvAliases...)
		_ = v.BindEnv(names...)
	}
}

func setAppDefaults(v *viper.Viper, keys []AppKey) {
	for _, key := range keys {
		switch d := key.Default.(type) {
		case time.Duration:
			v.SetDefault(key.Name, d.String())
		default:
			v.SetDefault(key.Name, d)
		}
	}
}

func appListKeys(keys []AppKey) []string {
	var out []string
	for _, key := range keys {
		if _, ok := key.Default.([]string); ok {
			out = append(out, key.Name)
		}
	}
	return out
}

// collectAppValues reads each key back with the Go type of its Default;
// env vars arrive as strings and would otherwise fail the accessors.
func collectAppValues(v *viper.Viper, keys []AppKey) AppConfigValues {
	out := make(AppConfigValues, len(keys))
	for _, key := range keys {
		switch key.Default.(type) {
		case string:
			out[key.Name] = strings.TrimSpace(v.GetString(key.Name))
		case int:
			out[key.Name] = v.GetInt(key.Name)
		case int64:
			out[key.Name] = v.GetInt64(key.Name)
		case bool:
			out[key.Name] = v.GetBool(key.Name)
		case []string:
			out[key.Name] = v.GetStringSlice(key.Name)
		default:
			out[key.Name] = v.Get(key.Name)
		}
	}
	return out
}
