package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds admin authentication settings.
type Config struct {
	AdminPassword string `toml:"admin_password"`
	SessionSecret string `toml:"session_secret"`
	SessionTTL    string `toml:"session_ttl"`
	CookieName    string `toml:"cookie_name"`
	CookieSecure  bool   `toml:"cookie_secure"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	AdminPassword string
	SessionSecret string
	SessionTTL    string
	CookieName    string
	CookieSecure  string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Boolean fields always apply; strings
// only apply when non-empty.
func (c *Config) Merge(overlay *Config) {
	if overlay.AdminPassword != "" {
		c.AdminPassword = overlay.AdminPassword
	}
	if overlay.SessionSecret != "" {
		c.SessionSecret = overlay.SessionSecret
	}
	if overlay.SessionTTL != "" {
		c.SessionTTL = overlay.SessionTTL
	}
	if overlay.CookieName != "" {
		c.CookieName = overlay.CookieName
	}
	c.CookieSecure = overlay.CookieSecure
}

// SessionTTLDuration returns SessionTTL as a time.Duration.
func (c *Config) SessionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.SessionTTL)
	return d
}

func (c *Config) loadDefaults() {
	if c.SessionTTL == "" {
		c.SessionTTL = "24h"
	}
	if c.CookieName == "" {
		c.CookieName = "soundslike_session"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.AdminPassword != "" {
		if v := os.Getenv(env.AdminPassword); v != "" {
			c.AdminPassword = v
		}
	}
	if env.SessionSecret != "" {
		if v := os.Getenv(env.SessionSecret); v != "" {
			c.SessionSecret = v
		}
	}
	if env.SessionTTL != "" {
		if v := os.Getenv(env.SessionTTL); v != "" {
			c.SessionTTL = v
		}
	}
	if env.CookieName != "" {
		if v := os.Getenv(env.CookieName); v != "" {
			c.CookieName = v
		}
	}
	if env.CookieSecure != "" {
		if v := os.Getenv(env.CookieSecure); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.CookieSecure = b
			}
		}
	}
}

func (c *Config) validate() error {
	if c.AdminPassword == "" {
		return fmt.Errorf("admin_password required")
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("session_secret must be at least 32 bytes")
	}
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return fmt.Errorf("invalid session_ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	return nil
}
