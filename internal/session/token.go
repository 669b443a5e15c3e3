package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mtlprog/panchayat/internal/domain"
)

const tokenIssuer = "panchayat"

type viewerClaims struct {
	jwt.RegisteredClaims
	Role     domain.Role     `json:"role"`
	Category domain.Category `json:"category,omitempty"`
	Name     string          `json:"name,omitempty"`
}

// TokenIssuer signs and verifies HS256 bearer tokens carrying a viewer.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. The secret must not be empty.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of the issuer that uses now as its time source.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	c := *t
	c.now = now
	return &c
}

// Issue signs a token for the viewer and returns it with its expiry.
func (t *TokenIssuer) Issue(viewer domain.Viewer) (string, time.Time, error) {
	issuedAt := t.now()
	expiresAt := issuedAt.Add(t.ttl)

	claims := viewerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   viewer.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role:     viewer.Role,
		Category: viewer.Category,
		Name:     viewer.Name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies a token and returns the viewer it carries.
// Every failure wraps domain.ErrUnauthenticated.
func (t *TokenIssuer) Parse(token string) (domain.Viewer, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)

	claims := &viewerClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		return domain.Viewer{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if !parsed.Valid || claims.Subject == "" || !claims.Role.IsValid() {
		return domain.Viewer{}, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthenticated)
	}

	return domain.Viewer{
		ID:       claims.Subject,
		Role:     claims.Role,
		Category: claims.Category,
		Name:     claims.Name,
	}, nil
}
