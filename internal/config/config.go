// Package config loads the service configuration from TOML files and
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/JaimeStill/soundslike/internal/auth"
	"github.com/JaimeStill/soundslike/internal/recordings"
	"github.com/JaimeStill/soundslike/internal/sequence"
	"github.com/JaimeStill/soundslike/pkg/database"
	"github.com/JaimeStill/soundslike/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvSoundslikeEnv             = "SOUNDSLIKE_ENV"
	EnvSoundslikeShutdownTimeout = "SOUNDSLIKE_SHUTDOWN_TIMEOUT"
	EnvSoundslikeVersion         = "SOUNDSLIKE_VERSION"
	EnvSoundslikeLogLevel        = "SOUNDSLIKE_LOG_LEVEL"
	EnvSoundslikeLogFormat       = "SOUNDSLIKE_LOG_FORMAT"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

var databaseEnv = &database.Env{
	Host:            "SOUNDSLIKE_DB_HOST",
	Port:            "SOUNDSLIKE_DB_PORT",
	Name:            "SOUNDSLIKE_DB_NAME",
	User:            "SOUNDSLIKE_DB_USER",
	Password:        "SOUNDSLIKE_DB_PASSWORD",
	SSLMode:         "SOUNDSLIKE_DB_SSL_MODE",
	MaxOpenConns:    "SOUNDSLIKE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SOUNDSLIKE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SOUNDSLIKE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SOUNDSLIKE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "SOUNDSLIKE_STORAGE_PROVIDER",
	ContainerName:    "SOUNDSLIKE_STORAGE_CONTAINER_NAME",
	ConnectionString: "SOUNDSLIKE_STORAGE_CONNECTION_STRING",
	ServiceURL:       "SOUNDSLIKE_STORAGE_SERVICE_URL",
	MinIOEndpoint:    "SOUNDSLIKE_STORAGE_MINIO_ENDPOINT",
	MinIOAccessKey:   "SOUNDSLIKE_STORAGE_MINIO_ACCESS_KEY",
	MinIOSecretKey:   "SOUNDSLIKE_STORAGE_MINIO_SECRET_KEY",
	MinIORegion:      "SOUNDSLIKE_STORAGE_MINIO_REGION",
	MinIOUseSSL:      "SOUNDSLIKE_STORAGE_MINIO_USE_SSL",
}

var authEnv = &auth.Env{
	AdminPassword: "SOUNDSLIKE_AUTH_ADMIN_PASSWORD",
	SessionSecret: "SOUNDSLIKE_AUTH_SESSION_SECRET",
	SessionTTL:    "SOUNDSLIKE_AUTH_SESSION_TTL",
	CookieName:    "SOUNDSLIKE_AUTH_COOKIE_NAME",
	CookieSecure:  "SOUNDSLIKE_AUTH_COOKIE_SECURE",
}

var sequenceEnv = &sequence.Env{
	MaxAttempts:    "SOUNDSLIKE_SEQUENCE_MAX_ATTEMPTS",
	FallbackPrompt: "SOUNDSLIKE_SEQUENCE_FALLBACK_PROMPT",
	Store:          "SOUNDSLIKE_SEQUENCE_STORE",
}

var recordingsEnv = &recordings.Env{
	RequireApproval: "SOUNDSLIKE_RECORDINGS_REQUIRE_APPROVAL",
}

// Config is the root configuration for the soundslike service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	API             APIConfig         `toml:"api"`
	Auth            auth.Config       `toml:"auth"`
	Sequence        sequence.Config   `toml:"sequence"`
	Recordings      recordings.Config `toml:"recordings"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
	LogLevel        string            `toml:"log_level"`
	LogFormat       string            `toml:"log_format"`
}

// Env returns the SOUNDSLIKE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvSoundslikeEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
// SlogLevel parses LogLevel ("debug", "info", "warn", "error", optionally
// with an offset such as "info+2"). Unset or invalid values mean info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.ShutdownTimeout)
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		if err := cfg.applyOverlay(path); err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.LogFormat != "" {
		c.LogFormat = overlay.LogFormat
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Sequence.Merge(&overlay.Sequence)
	c.Recordings.Merge(&overlay.Recordings)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Sequence.Finalize(sequenceEnv); err != nil {
		return fmt.Errorf("sequence: %w", err)
	}
	if err := c.Recordings.Finalize(recordingsEnv); err != nil {
		return fmt.Errorf("recordings: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvSoundslikeShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvSoundslikeVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvSoundslikeLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvSoundslikeLogFormat); v != "" {
		c.LogFormat = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}

// applyOverlay merges the file at path into c. A zero bool cannot tell
// "false" from "absent", so boolean settings are resolved by key: those the
// overlay names take its value, the rest keep the base value.
func (c *Config) applyOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var overlay Config
	if err := toml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	var keys map[string]any
	if err := toml.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	base := map[string]bool{}
	for key, v := range c.boolSettings() {
		base[key] = *v
	}

	c.Merge(&overlay)

	named := overlay.boolSettings()
	for key, v := range c.boolSettings() {
		if hasKey(keys, key) {
			*v = *named[key]
		} else {
			*v = base[key]
		}
	}
	return nil
}

// boolSettings maps the dotted TOML key of every boolean setting to its field.
func (c *Config) boolSettings() map[string]*bool {
	return map[string]*bool{
		"api.cors.enabled":                    &c.API.CORS.Enabled,
		"api.cors.allow_credentials":          &c.API.CORS.AllowCredentials,
		"api.rate_limit.enabled":              &c.API.RateLimit.Enabled,
		"api.rate_limit.trust_forward_header": &c.API.RateLimit.TrustForwardHeader,
		"auth.cookie_secure":                  &c.Auth.CookieSecure,
		"recordings.require_approval":         &c.Recordings.RequireApproval,
		"storage.minio.use_ssl":               &c.Storage.MinIO.UseSSL,
	}
}

func hasKey(tree map[string]any, dotted string) bool {
	node := any(tree)
	for part := range strings.SplitSeq(dotted, ".") {
		table, ok := node.(map[string]any)
		if !ok {
			return false
		}
		if node, ok = table[part]; !ok {
			return false
		}
	}
	return true
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvSoundslikeEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
