package sqlite

import (
	"context"
	"database/sql"
	"time"
)

type revokedTokensRepo struct {
	db *sql.DB
}

// Revoke inserts the fingerprint. Re-revoking an existing fingerprint is a
// no-op, so repeated logouts with the same token stay idempotent.
func (r *revokedTokensRepo) Revoke(ctx context.Context, fingerprint string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO revoked_tokens (fingerprint, expires_at, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (fingerprint) DO NOTHING;
	`, fingerprint, expiresAt.UTC(), time.Now().UTC())
	return err
}

func (r *revokedTokensRepo) IsRevoked(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM revoked_tokens
			WHERE fingerprint = ? AND expires_at > ?
		);
	`, fingerprint, time.Now().UTC()).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *revokedTokensRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM revoked_tokens WHERE expires_at <= ?;
	`, time.Now().UTC())
	return err
}
