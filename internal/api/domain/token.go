package domain

import "time"

// TokenSet is what the identity provider hands back on a completed login.
// All three are opaque signed strings owned by the client after issuance;
// this service never persists them.
type TokenSet struct {
	AccessToken  string `json:"accessToken"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// RevokedToken is the authoritative negative record that a token, though
// cryptographically valid, must be treated as unauthenticated. Entries are
// keyed by the token's fingerprint and may be garbage-collected once
// ExpiresAt has passed; correctness does not depend on prompt deletion.
type RevokedToken struct {
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
