// Package store defines the persistence surface for the token blacklist.
// Drivers live under drivers/ and are selected at wiring time; everything
// above this package speaks only these interfaces.
package store

import (
	"context"
	"time"
)

// RevokedTokens is the durable blacklist of invalidated bearer tokens.
// Entries are keyed by token fingerprint, never by the raw token value.
type RevokedTokens interface {
	// Revoke records a fingerprint until expiresAt. Revoking a fingerprint
	// that is already present is not an error.
	Revoke(ctx context.Context, fingerprint string, expiresAt time.Time) error

	// IsRevoked reports whether the fingerprint is currently blacklisted.
	IsRevoked(ctx context.Context, fingerprint string) (bool, error)

	// DeleteExpired removes entries whose expiry has passed. Drivers with
	// native TTL support may implement this as a no-op.
	DeleteExpired(ctx context.Context) error
}

// Store aggregates the repositories behind one backing driver.
type Store interface {
	RevokedTokens() RevokedTokens

	// ApplyMigrations brings the schema up to date. Called once at startup.
	ApplyMigrations() error

	// Ping verifies the backing driver is reachable, for readiness checks.
	Ping(ctx context.Context) error

	Close() error
}
