package recordings

import (
	"os"
	"strconv"
)

// Config holds recording submission settings.
type Config struct {
	RequireApproval bool `toml:"require_approval"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	RequireApproval string
}

// Finalize applies environment variable overrides.
// New submissions are approved immediately unless RequireApproval is set.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	return nil
}

// Merge overwrites fields from overlay. Boolean fields always apply.
func (c *Config) Merge(overlay *Config) {
	c.RequireApproval = overlay.RequireApproval
}

func (c *Config) loadEnv(env *Env) {
	if env.RequireApproval != "" {
		if v := os.Getenv(env.RequireApproval); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.RequireApproval = b
			}
		}
	}
}
