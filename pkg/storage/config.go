package storage

import (
	"fmt"
	"os"
	"strconv"
)

// Supported blob storage providers.
const (
	ProviderAzure = "azure"
	ProviderMinIO = "minio"
)

// Config holds blob storage connection parameters for the selected provider.
// Azure authenticates with ConnectionString when set, otherwise ServiceURL
// with the default Azure credential chain.
type Config struct {
	Provider         string      `toml:"provider"`
	ContainerName    string      `toml:"container_name"`
	ConnectionString string      `toml:"connection_string"`
	ServiceURL       string      `toml:"service_url"`
	MinIO            MinIOConfig `toml:"minio"`
}

// MinIOConfig holds S3-compatible endpoint credentials.
type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	ContainerName    string
	ConnectionString string
	ServiceURL       string
	MinIOEndpoint    string
	MinIOAccessKey   string
	MinIOSecretKey   string
	MinIORegion      string
	MinIOUseSSL      string
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.ServiceURL != "" {
		c.ServiceURL = overlay.ServiceURL
	}
	if overlay.MinIO.Endpoint != "" {
		c.MinIO.Endpoint = overlay.MinIO.Endpoint
	}
	if overlay.MinIO.AccessKey != "" {
		c.MinIO.AccessKey = overlay.MinIO.AccessKey
	}
	if overlay.MinIO.SecretKey != "" {
		c.MinIO.SecretKey = overlay.MinIO.SecretKey
	}
	if overlay.MinIO.Region != "" {
		c.MinIO.Region = overlay.MinIO.Region
	}
	if overlay.MinIO.UseSSL {
		c.MinIO.UseSSL = true
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.ContainerName == "" {
		c.ContainerName = "recordings"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.ContainerName, &c.ContainerName)
	set(env.ConnectionString, &c.ConnectionString)
	set(env.ServiceURL, &c.ServiceURL)
	set(env.MinIOEndpoint, &c.MinIO.Endpoint)
	set(env.MinIOAccessKey, &c.MinIO.AccessKey)
	set(env.MinIOSecretKey, &c.MinIO.SecretKey)
	set(env.MinIORegion, &c.MinIO.Region)

	if env.MinIOUseSSL != "" {
		if v := os.Getenv(env.MinIOUseSSL); v != "" {
			if useSSL, err := strconv.ParseBool(v); err == nil {
				c.MinIO.UseSSL = useSSL
			}
		}
	}
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}

	switch c.Provider {
	case ProviderAzure:
		if c.ConnectionString == "" && c.ServiceURL == "" {
			return fmt.Errorf("connection_string or service_url required")
		}
	case ProviderMinIO:
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("minio endpoint required")
		}
		if c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "" {
			return fmt.Errorf("minio access_key and secret_key required")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	return nil
}
