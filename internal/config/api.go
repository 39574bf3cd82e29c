package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/soundslike/pkg/formatting"
	"github.com/JaimeStill/soundslike/pkg/middleware"
	"github.com/JaimeStill/soundslike/pkg/pagination"
)

const (
	EnvAPIBasePath      = "SOUNDSLIKE_API_BASE_PATH"
	EnvAPIMaxUploadSize = "SOUNDSLIKE_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "SOUNDSLIKE_CORS_ENABLED",
	Origins:          "SOUNDSLIKE_CORS_ORIGINS",
	AllowedMethods:   "SOUNDSLIKE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "SOUNDSLIKE_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "SOUNDSLIKE_CORS_EXPOSED_HEADERS",
	AllowCredentials: "SOUNDSLIKE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "SOUNDSLIKE_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "SOUNDSLIKE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "SOUNDSLIKE_PAGINATION_MAX_PAGE_SIZE",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Enabled:            "SOUNDSLIKE_RATE_LIMIT_ENABLED",
	Rate:               "SOUNDSLIKE_RATE_LIMIT_RATE",
	TrustForwardHeader: "SOUNDSLIKE_RATE_LIMIT_TRUST_FORWARD_HEADER",
	Store:              "SOUNDSLIKE_RATE_LIMIT_STORE",
	RedisURL:           "SOUNDSLIKE_RATE_LIMIT_REDIS_URL",
}

// APIConfig holds API routing, CORS, pagination, and submission rate settings.
type APIConfig struct {
	BasePath      string                     `toml:"base_path"`
	MaxUploadSize string                     `toml:"max_upload_size"`
	CORS          middleware.CORSConfig      `toml:"cors"`
	Pagination    pagination.Config          `toml:"pagination"`
	RateLimit     middleware.RateLimitConfig `toml:"rate_limit"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes. Encoded audio arrives
// inside a JSON body, so this bounds the whole request.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 10 * 1024 * 1024 // 10MB fallback
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.RateLimit.Merge(&overlay.RateLimit)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
}
