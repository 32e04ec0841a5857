package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoSessionID is returned when a session without a JTI is revoked.
var ErrNoSessionID = errors.New("session has no id")

// RevokeSession ends the web session jti until its own expiry. A session
// that has already expired is not recorded. Revocations past their expiry
// are pruned on the way.
func RevokeSession(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	if jti == "" {
		return ErrNoSessionID
	}

	now := time.Now()
	if expiresAt.After(now) {
		_, err := db.ExecContext(ctx,
			`INSERT INTO revoked_sessions (jti, expires_at) VALUES (?, ?)
			 ON CONFLICT(jti) DO UPDATE SET expires_at = MAX(expires_at, excluded.expires_at)`,
			jti, expiresAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("revoking session: %w", err)
		}
	}

	if _, err := PruneRevokedSessions(ctx, db, now); err != nil {
		return err
	}
	return nil
}

// IsSessionRevoked reports whether the web session jti was ended by logout
// and has not expired yet.
func IsSessionRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var revoked bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_sessions WHERE jti = ? AND expires_at > ?)`,
		jti, time.Now().Unix(),
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("checking session revocation: %w", err)
	}
	return revoked, nil
}

// PruneRevokedSessions drops revocations of sessions that expired before
// now and returns how many were removed.
func PruneRevokedSessions(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM revoked_sessions WHERE expires_at <= ?`, now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning revoked sessions: %w", err)
	}
	return res.RowsAffected()
}
