// Package auth guards the admin surface with a shared password and
// HS256-signed session tokens.
package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer  = "soundslike"
	subject = "admin"
)

// Session is an issued admin session token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// System defines the public contract for admin authentication.
type System interface {
	Handler() *Handler

	// Login checks password and issues a session on success.
	Login(password string) (*Session, error)

	// Verify validates a session token's signature, algorithm, subject and expiry.
	Verify(token string) error
}

type authenticator struct {
	cfg    Config
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
}

// New creates an authenticator from a finalized Config.
func New(cfg Config, logger *slog.Logger) System {
	return &authenticator{
		cfg:    cfg,
		secret: []byte(cfg.SessionSecret),
		ttl:    cfg.SessionTTLDuration(),
		logger: logger.With("system", "auth"),
	}
}

func (a *authenticator) Handler() *Handler {
	return NewHandler(a, a.cfg, a.logger)
}

func (a *authenticator) Login(password string) (*Session, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.cfg.AdminPassword)) != 1 {
		a.logger.Warn("admin login rejected")
		return nil, ErrInvalidPassword
	}

	now := time.Now()
	expires := now.Add(a.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	a.logger.Info("admin session issued", "expires_at", expires)
	return &Session{Token: token, ExpiresAt: expires}, nil
}

func (a *authenticator) Verify(token string) error {
	if token == "" {
		return ErrUnauthenticated
	}

	_, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return nil
}
