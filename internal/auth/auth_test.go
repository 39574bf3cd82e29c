package auth_test

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JaimeStill/soundslike/internal/auth"
)

const secret = "0123456789abcdef0123456789abcdef"

func testConfig() auth.Config {
	return auth.Config{
		AdminPassword: "hunter2",
		SessionSecret: secret,
		SessionTTL:    "1h",
		CookieName:    "soundslike_session",
	}
}

func newSystem() auth.System {
	return auth.New(testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestLogin(t *testing.T) {
	sys := newSystem()

	t.Run("correct password issues verifiable session", func(t *testing.T) {
		before := time.Now()
		session, err := sys.Login("hunter2")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if session.Token == "" {
			t.Fatal("empty token")
		}
		if d := session.ExpiresAt.Sub(before); d < 59*time.Minute || d > 61*time.Minute {
			t.Errorf("expires in %v, want about 1h", d)
		}
		if err := sys.Verify(session.Token); err != nil {
			t.Errorf("verify: %v", err)
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		for _, pw := range []string{"", "hunter", "hunter22", "HUNTER2"} {
			if _, err := sys.Login(pw); !errors.Is(err, auth.ErrInvalidPassword) {
				t.Errorf("Login(%q) err = %v, want ErrInvalidPassword", pw, err)
			}
		}
	})
}

func TestVerify(t *testing.T) {
	sys := newSystem()
	now := time.Now()

	valid := jwt.RegisteredClaims{
		Issuer:    "soundslike",
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))

	noExpiry := valid
	noExpiry.ExpiresAt = nil

	wrongSubject := valid
	wrongSubject.Subject = "visitor"

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid token", sign(t, jwt.SigningMethodHS256, []byte(secret), valid), nil},
		{"empty token", "", auth.ErrUnauthenticated},
		{"garbage", "not.a.jwt", auth.ErrInvalidToken},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(secret), expired), auth.ErrInvalidToken},
		{"missing expiry", sign(t, jwt.SigningMethodHS256, []byte(secret), noExpiry), auth.ErrInvalidToken},
		{"wrong subject", sign(t, jwt.SigningMethodHS256, []byte(secret), wrongSubject), auth.ErrInvalidToken},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte(strings.Repeat("x", 32)), valid), auth.ErrInvalidToken},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, []byte(secret), valid), auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sys.Verify(tt.token)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Verify() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	env := &auth.Env{
		AdminPassword: "TEST_AUTH_PASSWORD",
		SessionSecret: "TEST_AUTH_SECRET",
		SessionTTL:    "TEST_AUTH_TTL",
		CookieName:    "TEST_AUTH_COOKIE",
		CookieSecure:  "TEST_AUTH_SECURE",
	}

	t.Run("env supplies secrets", func(t *testing.T) {
		t.Setenv("TEST_AUTH_PASSWORD", "pw")
		t.Setenv("TEST_AUTH_SECRET", secret)
		t.Setenv("TEST_AUTH_SECURE", "true")

		var c auth.Config
		if err := c.Finalize(env); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if c.AdminPassword != "pw" || !c.CookieSecure {
			t.Errorf("config = %+v", c)
		}
		if c.SessionTTLDuration() != 24*time.Hour {
			t.Errorf("ttl = %v, want 24h", c.SessionTTLDuration())
		}
		if c.CookieName != "soundslike_session" {
			t.Errorf("cookie = %q", c.CookieName)
		}
	})

	tests := []struct {
		name string
		vars map[string]string
	}{
		{"missing password", map[string]string{"TEST_AUTH_SECRET": secret}},
		{"short secret", map[string]string{"TEST_AUTH_PASSWORD": "pw", "TEST_AUTH_SECRET": "short"}},
		{"bad ttl", map[string]string{"TEST_AUTH_PASSWORD": "pw", "TEST_AUTH_SECRET": secret, "TEST_AUTH_TTL": "soon"}},
		{"negative ttl", map[string]string{"TEST_AUTH_PASSWORD": "pw", "TEST_AUTH_SECRET": secret, "TEST_AUTH_TTL": "-1h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.vars {
				t.Setenv(k, v)
			}
			var c auth.Config
			if err := c.Finalize(env); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
