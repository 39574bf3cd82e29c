package sequence

import (
	"fmt"
	"os"
	"strconv"
)

// Cursor store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds rotation settings.
type Config struct {
	MaxAttempts    int    `toml:"max_attempts"`
	FallbackPrompt string `toml:"fallback_prompt"`
	Store          string `toml:"store"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	MaxAttempts    string
	FallbackPrompt string
	Store          string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.FallbackPrompt != "" {
		c.FallbackPrompt = overlay.FallbackPrompt
	}
	if overlay.Store != "" {
		c.Store = overlay.Store
	}
}

func (c *Config) loadDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 8
	}
	if c.FallbackPrompt == "" {
		c.FallbackPrompt = "Say something you've been meaning to say."
	}
	if c.Store == "" {
		c.Store = StorePostgres
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.MaxAttempts != "" {
		if v := os.Getenv(env.MaxAttempts); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxAttempts = n
			}
		}
	}
	if env.FallbackPrompt != "" {
		if v := os.Getenv(env.FallbackPrompt); v != "" {
			c.FallbackPrompt = v
		}
	}
	if env.Store != "" {
		if v := os.Getenv(env.Store); v != "" {
			c.Store = v
		}
	}
}

func (c *Config) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive")
	}
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unsupported store %q", c.Store)
	}
	return nil
}
