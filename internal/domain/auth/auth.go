// Package auth issues and verifies the bearer tokens protecting the API.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"voicelab-server-go/internal/platform/config"
	platformerrors "voicelab-server-go/internal/platform/errors"
)

// Claims is the token payload. ClientID keys per-client job quotas.
type Claims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// Service mints and verifies HMAC-signed tokens.
type Service struct {
	secret  []byte
	expiry  time.Duration
	enabled bool
}

func NewService(cfg config.AuthConfig) (*Service, error) {
	if cfg.Enabled && cfg.Secret == "" {
		return nil, platformerrors.New(platformerrors.KindBootstrap, "auth",
			"auth enabled but secret is empty")
	}
	expiry := time.Duration(cfg.TokenExpiry) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Service{secret: []byte(cfg.Secret), expiry: expiry, enabled: cfg.Enabled}, nil
}

// Enabled reports whether requests must carry a token.
func (s *Service) Enabled() bool { return s.enabled }

// IssueToken mints a token for a client. An empty clientID gets a random one
// so anonymous clients still receive independent quotas.
func (s *Service) IssueToken(clientID string) (string, *Claims, error) {
	if clientID == "" {
		clientID = uuid.NewString()
	}

	now := time.Now()
	claims := &Claims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, platformerrors.Wrap(platformerrors.KindPlatform, "auth.issue", err)
	}
	return token, claims, nil
}

// VerifyToken parses and validates a bearer token.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	const op = "auth.verify"

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, platformerrors.Newf(platformerrors.KindValidation, op,
				"unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindValidation, op, err)
	}
	if !parsed.Valid {
		return nil, platformerrors.New(platformerrors.KindValidation, op, "invalid token")
	}
	return claims, nil
}
