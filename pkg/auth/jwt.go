// Package auth authenticates operators of the admin API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotConfigured is returned when no signing secret was configured
var ErrNotConfigured = errors.New("admin token secret not configured")

// TokenValidator issues and validates HS256 bearer tokens
type TokenValidator struct {
	secret []byte
	issuer string
}

// NewTokenValidator creates a validator for tokens signed with secret and issued by issuer
func NewTokenValidator(secret, issuer string) (*TokenValidator, error) {
	if secret == "" {
		return nil, ErrNotConfigured
	}
	return &TokenValidator{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// ValidateToken validates a token and returns its claims. Tokens must carry an
// expiry and, when an issuer is configured, the matching issuer.
func (v *TokenValidator) ValidateToken(tokenString string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("missing subject")
	}
	return claims, nil
}

// IssueToken signs a token for subject valid for ttl
func (v *TokenValidator) IssueToken(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("missing subject")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
