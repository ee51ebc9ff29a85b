package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the verified token claims this service cares about. The
// identity provider mints both access and id tokens; access tokens carry
// "username", id tokens carry "email". We keep the struct additive so either
// token kind decodes cleanly.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user (id tokens).
	Email string `json:"email,omitempty"`

	// Username assigned by the identity provider (access tokens).
	Username string `json:"username,omitempty"`

	// TokenUse distinguishes "access" from "id" tokens.
	TokenUse string `json:"token_use,omitempty"`
}

// Identity returns the best available identifier for the user: the
// provider-assigned username when present, the subject otherwise.
func (c *Claims) Identity() string {
	if c.Username != "" {
		return c.Username
	}
	return c.Subject
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	// Check a valid token isn't used before it is valid (nbf)
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
