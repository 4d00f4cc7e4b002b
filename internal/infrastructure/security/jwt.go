package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or
// subject checks.
var ErrInvalidToken = errors.New("invalid visitor token")

const visitorIssuer = "folio"

// VisitorTokens issues and validates the signed visitor cookie value. The
// subject carries the visitor id that owns a storage area.
type VisitorTokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewVisitorTokens derives the token key from secret.
func NewVisitorTokens(secret string, ttl time.Duration) (*VisitorTokens, error) {
	key, err := DeriveSigningKey(secret, visitorTokenInfo)
	if err != nil {
		return nil, err
	}
	return &VisitorTokens{key: key, ttl: ttl, now: time.Now}, nil
}

// TTL is how long issued tokens stay valid.
func (v *VisitorTokens) TTL() time.Duration { return v.ttl }

// Issue creates a token for visitorID.
func (v *VisitorTokens) Issue(visitorID string) (string, error) {
	now := v.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   visitorID,
		Issuer:    visitorIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign visitor token: %w", err)
	}
	return signed, nil
}

// Validate returns the visitor id carried by tokenString.
func (v *VisitorTokens) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Issuer != visitorIssuer || !IsVisitorID(claims.Subject) {
		return "", ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(v.now(), true) {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
