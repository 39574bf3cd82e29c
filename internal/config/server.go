package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost            = "SOUNDSLIKE_SERVER_HOST"
	EnvServerPort            = "SOUNDSLIKE_SERVER_PORT"
	EnvServerReadTimeout     = "SOUNDSLIKE_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "SOUNDSLIKE_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout = "SOUNDSLIKE_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig configures the HTTP listener. Timeouts are Go duration
// strings; ShutdownTimeout bounds how long in-flight requests may drain.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return mustDuration(c.ReadTimeout)
}

// WriteTimeoutDuration covers the whole response, including audio streamed
// back from blob storage.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return mustDuration(c.WriteTimeout)
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.ShutdownTimeout)
}

func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, d := range c.durations(overlay) {
		if *d.src != "" {
			*d.dst = *d.src
		}
	}
}

type durationField struct {
	name string
	env  string
	dst  *string
	src  *string
	def  string
}

// durations lists the timeout fields of c. src points into other when it is
// non-nil.
func (c *ServerConfig) durations(other *ServerConfig) []durationField {
	fields := []durationField{
		{"read_timeout", EnvServerReadTimeout, &c.ReadTimeout, nil, "1m"},
		{"write_timeout", EnvServerWriteTimeout, &c.WriteTimeout, nil, "15m"},
		{"shutdown_timeout", EnvServerShutdownTimeout, &c.ShutdownTimeout, nil, "30s"},
	}
	if other != nil {
		fields[0].src = &other.ReadTimeout
		fields[1].src = &other.WriteTimeout
		fields[2].src = &other.ShutdownTimeout
	}
	return fields
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	for _, d := range c.durations(nil) {
		if *d.dst == "" {
			*d.dst = d.def
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if port, err := strconv.Atoi(os.Getenv(EnvServerPort)); err == nil {
		c.Port = port
	}
	for _, d := range c.durations(nil) {
		if v := os.Getenv(d.env); v != "" {
			*d.dst = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, d := range c.durations(nil) {
		if v, err := time.ParseDuration(*d.dst); err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		} else if v <= 0 {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}
	return nil
}

// mustDuration parses a value validate has already accepted.
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
