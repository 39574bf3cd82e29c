package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	limitermw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/JaimeStill/soundslike/pkg/lifecycle"
)

// Rate limit counter stores.
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

const rateLimitPrefix = "soundslike:ratelimit"

// RateLimitConfig holds per-client request rate settings.
// Rate uses the limiter format "<limit>-<period>", e.g. "20-M" or "500-H".
// The redis store shares counters across replicas and requires RedisURL.
type RateLimitConfig struct {
	Enabled            bool   `toml:"enabled"`
	Rate               string `toml:"rate"`
	TrustForwardHeader bool   `toml:"trust_forward_header"`
	Store              string `toml:"store"`
	RedisURL           string `toml:"redis_url"`
}

// RateLimitEnv maps rate limit config fields to environment variable names.
type RateLimitEnv struct {
	Enabled            string
	Rate               string
	TrustForwardHeader string
	Store              string
	RedisURL           string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RateLimitConfig) Finalize(env *RateLimitEnv) error {
	if c.Rate == "" {
		c.Rate = "20-M"
	}
	if c.Store == "" {
		c.Store = RateLimitStoreMemory
	}
	if env != nil {
		c.loadEnv(env)
	}
	if _, err := limiter.NewRateFromFormatted(c.Rate); err != nil {
		return fmt.Errorf("invalid rate %q: %w", c.Rate, err)
	}

	switch c.Store {
	case RateLimitStoreMemory:
	case RateLimitStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis_url required for redis store")
		}
		if _, err := redis.ParseURL(c.RedisURL); err != nil {
			return fmt.Errorf("invalid redis_url: %w", err)
		}
	default:
		return fmt.Errorf("unknown rate limit store %q", c.Store)
	}
	return nil
}

// Merge overwrites fields from overlay. Boolean fields always apply.
func (c *RateLimitConfig) Merge(overlay *RateLimitConfig) {
	c.Enabled = overlay.Enabled
	c.TrustForwardHeader = overlay.TrustForwardHeader
	if overlay.Rate != "" {
		c.Rate = overlay.Rate
	}
	if overlay.Store != "" {
		c.Store = overlay.Store
	}
	if overlay.RedisURL != "" {
		c.RedisURL = overlay.RedisURL
	}
}

func (c *RateLimitConfig) loadEnv(env *RateLimitEnv) {
	envBool(env.Enabled, &c.Enabled)
	envString(env.Rate, &c.Rate)
	envBool(env.TrustForwardHeader, &c.TrustForwardHeader)
	envString(env.Store, &c.Store)
	envString(env.RedisURL, &c.RedisURL)
}

// newRateLimitStore returns the counter store and, for redis, the client
// backing it so the caller can close it.
func newRateLimitStore(cfg *RateLimitConfig) (limiter.Store, io.Closer, error) {
	if cfg.Store != RateLimitStoreRedis {
		return memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		}), nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: limiter.DefaultMaxRetry,
	})
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("create redis store: %w", err)
	}
	return store, client, nil
}

// RateLimit returns middleware limiting requests per client IP.
// Passes through when disabled. Rejected requests receive 429 with a JSON error body.
// A redis store's client is closed when lc shuts down.
func RateLimit(cfg *RateLimitConfig, lc *lifecycle.Coordinator, logger *slog.Logger) (Func, error) {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	rate, err := limiter.NewRateFromFormatted(cfg.Rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate: %w", err)
	}

	store, closer, err := newRateLimitStore(cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			if err := closer.Close(); err != nil {
				logger.Error("close rate limit store", "error", err)
			}
		})
	}

	instance := limiter.New(
		store,
		rate,
		limiter.WithTrustForwardHeader(cfg.TrustForwardHeader),
	)

	mw := limitermw.NewMiddleware(
		instance,
		limitermw.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("rate limit reached", "uri", r.URL.RequestURI(), "addr", r.RemoteAddr)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
		}),
		limitermw.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("rate limiter failed", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "rate limiter failed"})
		}),
	)

	return mw.Handler, nil
}
