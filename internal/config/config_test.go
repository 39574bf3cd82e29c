package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/soundslike/internal/config"
	"github.com/JaimeStill/soundslike/internal/sequence"
	"github.com/JaimeStill/soundslike/pkg/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef"

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "soundslike"
user = "soundslike"
password = "soundslike"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[storage]
container_name = "recordings"
connection_string = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

[api]
base_path = "/api"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50

[api.rate_limit]
enabled = true
rate = "10-M"

[auth]
admin_password = "hunter2"
session_secret = "0123456789abcdef0123456789abcdef"
session_ttl = "12h"

[sequence]
max_attempts = 4
fallback_prompt = "Tell us anything."

[recordings]
require_approval = true
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[sequence]
store = "memory"
`

// minimalConfig provides the minimum fields required for validation to pass.
const minimalConfig = `
[database]
name = "soundslike"
user = "soundslike"

[storage]
connection_string = "conn"

[auth]
admin_password = "hunter2"
session_secret = "0123456789abcdef0123456789abcdef"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func loadFrom(t *testing.T, content string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, content)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := loadFrom(t, baseConfig)

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Storage.ContainerName != "recordings" {
		t.Errorf("storage container: got %s, want recordings", cfg.Storage.ContainerName)
	}
	if cfg.Storage.Provider != storage.ProviderAzure {
		t.Errorf("storage provider: got %s, want %s", cfg.Storage.Provider, storage.ProviderAzure)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base_path: got %s, want /api", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination max_page_size: got %d, want 50", cfg.API.Pagination.MaxPageSize)
	}
	if !cfg.API.RateLimit.Enabled || cfg.API.RateLimit.Rate != "10-M" {
		t.Errorf("rate_limit: got %+v", cfg.API.RateLimit)
	}
	if cfg.Auth.AdminPassword != "hunter2" {
		t.Errorf("auth admin_password: got %s, want hunter2", cfg.Auth.AdminPassword)
	}
	if d := cfg.Auth.SessionTTLDuration(); d != 12*time.Hour {
		t.Errorf("auth session_ttl: got %v, want 12h", d)
	}
	if cfg.Sequence.MaxAttempts != 4 {
		t.Errorf("sequence max_attempts: got %d, want 4", cfg.Sequence.MaxAttempts)
	}
	if cfg.Sequence.FallbackPrompt != "Tell us anything." {
		t.Errorf("sequence fallback_prompt: got %q", cfg.Sequence.FallbackPrompt)
	}
	if cfg.Sequence.Store != sequence.StorePostgres {
		t.Errorf("sequence store: got %s, want %s", cfg.Sequence.Store, sequence.StorePostgres)
	}
	if !cfg.Recordings.RequireApproval {
		t.Error("recordings require_approval: got false, want true")
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("SOUNDSLIKE_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.Sequence.Store != sequence.StoreMemory {
		t.Errorf("sequence store: got %s, want memory (from overlay)", cfg.Sequence.Store)
	}
	if !cfg.Recordings.RequireApproval {
		t.Error("recordings require_approval: overlay without the key reset it to false")
	}
	if cfg.Sequence.MaxAttempts != 4 {
		t.Errorf("sequence max_attempts: got %d, want 4 (from base)", cfg.Sequence.MaxAttempts)
	}
	if cfg.Auth.AdminPassword != "hunter2" {
		t.Errorf("auth admin_password: got %s, want hunter2 (from base)", cfg.Auth.AdminPassword)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("SOUNDSLIKE_VERSION", "2.0.0")
	t.Setenv("SOUNDSLIKE_SERVER_PORT", "3000")
	t.Setenv("SOUNDSLIKE_AUTH_ADMIN_PASSWORD", "from-env")
	t.Setenv("SOUNDSLIKE_SEQUENCE_MAX_ATTEMPTS", "12")
	t.Setenv("SOUNDSLIKE_RECORDINGS_REQUIRE_APPROVAL", "false")
	t.Setenv("SOUNDSLIKE_RATE_LIMIT_RATE", "5-S")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Auth.AdminPassword != "from-env" {
		t.Errorf("auth admin_password: got %s, want from-env", cfg.Auth.AdminPassword)
	}
	if cfg.Sequence.MaxAttempts != 12 {
		t.Errorf("sequence max_attempts: got %d, want 12", cfg.Sequence.MaxAttempts)
	}
	if cfg.Recordings.RequireApproval {
		t.Error("recordings require_approval: got true, want false")
	}
	if cfg.API.RateLimit.Rate != "5-S" {
		t.Errorf("rate_limit rate: got %s, want 5-S", cfg.API.RateLimit.Rate)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("SOUNDSLIKE_DB_NAME", "testdb")
	t.Setenv("SOUNDSLIKE_DB_USER", "testuser")
	t.Setenv("SOUNDSLIKE_STORAGE_CONNECTION_STRING", "conn")
	t.Setenv("SOUNDSLIKE_AUTH_ADMIN_PASSWORD", "secret")
	t.Setenv("SOUNDSLIKE_AUTH_SESSION_SECRET", testSecret)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Storage.ConnectionString != "conn" {
		t.Errorf("storage conn from env: got %s, want conn", cfg.Storage.ConnectionString)
	}
	if cfg.Sequence.MaxAttempts != 8 {
		t.Errorf("sequence max_attempts default: got %d, want 8", cfg.Sequence.MaxAttempts)
	}
	if cfg.Auth.CookieName != "soundslike_session" {
		t.Errorf("auth cookie_name default: got %s, want soundslike_session", cfg.Auth.CookieName)
	}
}

func TestLoadMinIOFromEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("SOUNDSLIKE_DB_NAME", "testdb")
	t.Setenv("SOUNDSLIKE_DB_USER", "testuser")
	t.Setenv("SOUNDSLIKE_STORAGE_PROVIDER", "minio")
	t.Setenv("SOUNDSLIKE_STORAGE_MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("SOUNDSLIKE_STORAGE_MINIO_ACCESS_KEY", "minio")
	t.Setenv("SOUNDSLIKE_STORAGE_MINIO_SECRET_KEY", "minio123")
	t.Setenv("SOUNDSLIKE_STORAGE_MINIO_USE_SSL", "true")
	t.Setenv("SOUNDSLIKE_AUTH_ADMIN_PASSWORD", "secret")
	t.Setenv("SOUNDSLIKE_AUTH_SESSION_SECRET", testSecret)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Storage.Provider != storage.ProviderMinIO {
		t.Errorf("storage provider: got %s, want minio", cfg.Storage.Provider)
	}
	if cfg.Storage.MinIO.Endpoint != "localhost:9000" {
		t.Errorf("minio endpoint: got %s, want localhost:9000", cfg.Storage.MinIO.Endpoint)
	}
	if !cfg.Storage.MinIO.UseSSL {
		t.Error("minio use_ssl: got false, want true")
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `invalid = `)
	chdir(t, dir)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestEnvDefault(t *testing.T) {
	cfg := loadFrom(t, baseConfig)

	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestEnvFromEnvVar(t *testing.T) {
	t.Setenv("SOUNDSLIKE_ENV", "production")
	cfg := loadFrom(t, baseConfig)

	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	cfg := loadFrom(t, baseConfig)

	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
}

func TestServerAddr(t *testing.T) {
	cfg := loadFrom(t, baseConfig)

	if addr := cfg.Server.Addr(); addr != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", addr)
	}
}

func TestDefaults(t *testing.T) {
	cfg := loadFrom(t, minimalConfig)

	if cfg.API.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default_page_size: got %d, want 20", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max_page_size: got %d, want 100", cfg.API.Pagination.MaxPageSize)
	}
	if cfg.API.RateLimit.Enabled {
		t.Error("rate_limit enabled: got true, want false")
	}
	if cfg.API.RateLimit.Rate != "20-M" {
		t.Errorf("rate_limit rate: got %s, want 20-M", cfg.API.RateLimit.Rate)
	}
	if cfg.API.RateLimit.Store != "memory" {
		t.Errorf("rate_limit store: got %s, want memory", cfg.API.RateLimit.Store)
	}
	if cfg.Sequence.Store != sequence.StorePostgres {
		t.Errorf("sequence store: got %s, want postgres", cfg.Sequence.Store)
	}
	if cfg.Recordings.RequireApproval {
		t.Error("recordings require_approval: got true, want false")
	}
	if d := cfg.Auth.SessionTTLDuration(); d != 24*time.Hour {
		t.Errorf("auth session_ttl: got %v, want 24h", d)
	}
}

func TestPaginationEnvOverrides(t *testing.T) {
	t.Setenv("SOUNDSLIKE_PAGINATION_DEFAULT_PAGE_SIZE", "10")
	t.Setenv("SOUNDSLIKE_PAGINATION_MAX_PAGE_SIZE", "200")
	cfg := loadFrom(t, baseConfig)

	if cfg.API.Pagination.DefaultPageSize != 10 {
		t.Errorf("pagination default_page_size: got %d, want 10", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 200 {
		t.Errorf("pagination max_page_size: got %d, want 200", cfg.API.Pagination.MaxPageSize)
	}
}

func TestMaxUploadSizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"valid 10MB", "10MB", 10 * 1024 * 1024},
		{"valid 512KB", "512KB", 512 * 1024},
		{"valid 1GB", "1GB", 1024 * 1024 * 1024},
		{"invalid falls back to 10MB", "bad", 10 * 1024 * 1024},
		{"empty falls back to 10MB", "", 10 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.APIConfig{MaxUploadSize: tt.size}
			got := cfg.MaxUploadSizeBytes()
			if got != tt.want {
				t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMaxUploadSizeEnvOverride(t *testing.T) {
	t.Setenv("SOUNDSLIKE_API_MAX_UPLOAD_SIZE", "25MB")
	cfg := loadFrom(t, baseConfig)

	want := int64(25 * 1024 * 1024)
	if got := cfg.API.MaxUploadSizeBytes(); got != want {
		t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, want)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{
			name:    "invalid port",
			extra:   "[server]\nport = 99999\n",
			wantErr: "invalid port",
		},
		{
			name:    "invalid read_timeout",
			extra:   "[server]\nread_timeout = \"bad\"\n",
			wantErr: "invalid read_timeout",
		},
		{
			name:    "invalid max_upload_size",
			extra:   "[api]\nmax_upload_size = \"lots\"\n",
			wantErr: "invalid max_upload_size",
		},
		{
			name:    "invalid rate",
			extra:   "[api.rate_limit]\nrate = \"fast\"\n",
			wantErr: "rate_limit",
		},
		{
			name:    "redis rate limit store without url",
			extra:   "[api.rate_limit]\nstore = \"redis\"\n",
			wantErr: "redis_url required",
		},
		{
			name:    "unknown sequence store",
			extra:   "[sequence]\nstore = \"redis\"\n",
			wantErr: "sequence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", minimalConfig+"\n"+tt.extra)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestAuthRequired(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `
[database]
name = "soundslike"
user = "soundslike"

[storage]
connection_string = "conn"
`)
	chdir(t, dir)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error without admin password")
	}
	if !strings.Contains(err.Error(), "auth") {
		t.Errorf("error %q does not mention auth", err.Error())
	}
}

func TestLogSettings(t *testing.T) {
	cfg := loadFrom(t, baseConfig)
	if cfg.LogFormat != config.LogFormatText || cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("defaults: format %s level %s", cfg.LogFormat, cfg.SlogLevel())
	}

	t.Setenv("SOUNDSLIKE_LOG_LEVEL", "debug")
	t.Setenv("SOUNDSLIKE_LOG_FORMAT", "json")
	cfg = loadFrom(t, baseConfig)
	if cfg.LogFormat != config.LogFormatJSON || cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("env: format %s level %s", cfg.LogFormat, cfg.SlogLevel())
	}

	for env, wantErr := range map[string]string{
		"SOUNDSLIKE_LOG_LEVEL":  "invalid log_level",
		"SOUNDSLIKE_LOG_FORMAT": "unknown log_format",
	} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("SOUNDSLIKE_LOG_LEVEL", "info")
			t.Setenv("SOUNDSLIKE_LOG_FORMAT", "text")
			t.Setenv(env, "loud")

			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", minimalConfig)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil || !strings.Contains(err.Error(), wantErr) {
				t.Errorf("Load() error = %v, want %q", err, wantErr)
			}
		})
	}
}

func TestOverlayBooleans(t *testing.T) {
	base := minimalConfig + `
[api.rate_limit]
enabled = true

[recordings]
require_approval = true
`

	tests := []struct {
		name            string
		overlay         string
		wantRateLimit   bool
		wantApproval    bool
		wantCookie      bool
		wantMinIOUseSSL bool
	}{
		{
			name:          "absent keys keep base values",
			overlay:       "[server]\nport = 9090\n",
			wantRateLimit: true,
			wantApproval:  true,
		},
		{
			name:         "explicit false turns a setting off",
			overlay:      "[api.rate_limit]\nenabled = false\n",
			wantApproval: true,
		},
		{
			name:            "explicit true turns settings on",
			overlay:         "[auth]\ncookie_secure = true\n\n[storage.minio]\nuse_ssl = true\n",
			wantRateLimit:   true,
			wantApproval:    true,
			wantCookie:      true,
			wantMinIOUseSSL: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, base)
			writeConfig(t, dir, "config.staging.toml", tt.overlay)
			chdir(t, dir)
			t.Setenv("SOUNDSLIKE_ENV", "staging")

			cfg, err := config.Load()
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}

			if cfg.API.RateLimit.Enabled != tt.wantRateLimit {
				t.Errorf("rate_limit enabled = %v, want %v", cfg.API.RateLimit.Enabled, tt.wantRateLimit)
			}
			if cfg.Recordings.RequireApproval != tt.wantApproval {
				t.Errorf("require_approval = %v, want %v", cfg.Recordings.RequireApproval, tt.wantApproval)
			}
			if cfg.Auth.CookieSecure != tt.wantCookie {
				t.Errorf("cookie_secure = %v, want %v", cfg.Auth.CookieSecure, tt.wantCookie)
			}
			if cfg.Storage.MinIO.UseSSL != tt.wantMinIOUseSSL {
				t.Errorf("minio use_ssl = %v, want %v", cfg.Storage.MinIO.UseSSL, tt.wantMinIOUseSSL)
			}
		})
	}
}
