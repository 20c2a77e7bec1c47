// Package config loads console settings from defaults, an optional config
// file and ADMIN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. ADMIN_HTTP_ADDR.
const EnvPrefix = "ADMIN"

// EnvKeyReplacer maps config keys onto environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Auth modes.
const (
	AuthStatic   = "static"
	AuthFirebase = "firebase"
	AuthAPI      = "api"
)

// EnvDevelopment relaxes key-length checks.
const EnvDevelopment = "development"

const minHashKeyLength = 32

// Default lists every key with its factory value.
var Default = map[string]any{
	"http.addr":                ":3051",
	"http.base_path":           "/admin",
	"http.login_path":          "",
	"http.shutdown_timeout":    "10s",
	"app.title":                "Admin Console",
	"app.environment":          EnvDevelopment,
	"log.level":                "info",
	"routes.file":              "",
	"session.hash_key":         "",
	"session.block_key":        "",
	"session.cookie_name":      "admin_session",
	"session.secure":           false,
	"session.idle_timeout":     "30m",
	"auth.mode":                AuthStatic,
	"auth.firebase_project_id": "",
	"auth.require_otp":         false,
	"api.base_url":             "",
	"api.timeout":              "10s",
	"notifications.cache_ttl":  "2m",
	"theme.default_preset":     "emerald",
}

// Config is the validated runtime configuration.
type Config struct {
	HTTP          HTTPConfig
	App           AppConfig
	Log           LogConfig
	Routes        RoutesConfig
	Session       SessionConfig
	Auth          AuthConfig
	API           APIConfig
	Notifications NotificationsConfig
	Theme         ThemeConfig
}

// HTTPConfig configures the listener and URL layout.
type HTTPConfig struct {
	Addr            string
	BasePath        string
	LoginPath       string
	ShutdownTimeout time.Duration
}

// AppConfig names the deployment.
type AppConfig struct {
	Title       string
	Environment string
}

// Development reports whether the console runs in development mode.
func (a AppConfig) Development() bool {
	return a.Environment == EnvDevelopment
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string
}

// RoutesConfig points at an optional route tree file.
type RoutesConfig struct {
	File string
}

// SessionConfig configures the session and preference cookies.
type SessionConfig struct {
	HashKey     string
	BlockKey    string
	CookieName  string
	Secure      bool
	IdleTimeout time.Duration
}

// AuthConfig selects the sign-in backend.
type AuthConfig struct {
	Mode              string
	FirebaseProjectID string
	RequireOTP        bool
}

// APIConfig points at the backend REST API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NotificationsConfig tunes the notification cache.
type NotificationsConfig struct {
	CacheTTL time.Duration
}

// ThemeConfig sets theme defaults.
type ThemeConfig struct {
	DefaultPreset string
}

// Load reads configuration from the OS filesystem. An empty path searches
// for admin.yaml in the working directory and /etc/admin-console.
func Load(path string) (Config, error) {
	return LoadFS(afero.NewOsFs(), path)
}

// LoadFS is Load over an arbitrary filesystem.
func LoadFS(fs afero.Fs, path string) (Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.AutomaticEnv()
	for key, value := range Default {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("admin")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/admin-console")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			BasePath:        v.GetString("http.base_path"),
			LoginPath:       v.GetString("http.login_path"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		App: AppConfig{
			Title:       v.GetString("app.title"),
			Environment: strings.ToLower(v.GetString("app.environment")),
		},
		Log:    LogConfig{Level: v.GetString("log.level")},
		Routes: RoutesConfig{File: v.GetString("routes.file")},
		Session: SessionConfig{
			HashKey:     v.GetString("session.hash_key"),
			BlockKey:    v.GetString("session.block_key"),
			CookieName:  v.GetString("session.cookie_name"),
			Secure:      v.GetBool("session.secure"),
			IdleTimeout: v.GetDuration("session.idle_timeout"),
		},
		Auth: AuthConfig{
			Mode:              strings.ToLower(v.GetString("auth.mode")),
			FirebaseProjectID: v.GetString("auth.firebase_project_id"),
			RequireOTP:        v.GetBool("auth.require_otp"),
		},
		API: APIConfig{
			BaseURL: v.GetString("api.base_url"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Notifications: NotificationsConfig{CacheTTL: v.GetDuration("notifications.cache_ttl")},
		Theme:         ThemeConfig{DefaultPreset: v.GetString("theme.default_preset")},
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalise() {
	base := "/" + strings.Trim(strings.TrimSpace(c.HTTP.BasePath), "/")
	c.HTTP.BasePath = base
	if strings.TrimSpace(c.HTTP.LoginPath) == "" {
		c.HTTP.LoginPath = strings.TrimRight(base, "/") + "/login"
	}
	if c.App.Environment == "" {
		c.App.Environment = EnvDevelopment
	}
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	switch c.Auth.Mode {
	case AuthStatic:
	case AuthFirebase:
		if c.Auth.FirebaseProjectID == "" {
			errs = append(errs, fmt.Errorf("%w: auth.firebase_project_id is required for firebase mode", ErrInvalid))
		}
	case AuthAPI:
		if c.API.BaseURL == "" {
			errs = append(errs, fmt.Errorf("%w: api.base_url is required for api mode", ErrInvalid))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown auth.mode %q", ErrInvalid, c.Auth.Mode))
	}
	if !c.App.Development() && len(c.Session.HashKey) < minHashKeyLength {
		errs = append(errs, fmt.Errorf("%w: session.hash_key must be at least %d bytes", ErrInvalid, minHashKeyLength))
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: http.shutdown_timeout must be positive", ErrInvalid))
	}
	return errors.Join(errs...)
}
