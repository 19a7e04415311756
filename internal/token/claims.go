// Package token inspects bearer tokens issued by the backend.
//
// Tokens are decoded without signature verification: the client never holds
// the signing key, and the backend remains the only authority on validity.
// The decoded claims are for display only.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned when the token is not a decodable JWT.
var ErrNotJWT = errors.New("token is not a JWT")

// Claims is the subset of registered claims the CLI displays.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Type      string
}

// HasExpiry reports whether the token carries an exp claim.
func (c *Claims) HasExpiry() bool {
	return !c.ExpiresAt.IsZero()
}

// Expired reports whether the exp claim lies before now.
// Tokens without exp never expire.
func (c *Claims) Expired(now time.Time) bool {
	return c.HasExpiry() && now.After(c.ExpiresAt)
}

// Inspect decodes raw without verifying its signature.
func Inspect(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrNotJWT
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	c := &Claims{}
	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if typ, ok := mc["type"].(string); ok {
		c.Type = typ
	}
	return c, nil
}
