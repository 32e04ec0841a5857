package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/healthpilot/internal/auth"
	"github.com/erazemk/healthpilot/internal/model"
)

// SaveSession stores the CLI session. The access token is sealed with a key
// that never leaves the store.
func SaveSession(ctx context.Context, db *sql.DB, s model.Session) error {
	key, err := getOrCreateSecret(ctx, db, keyStoreKey)
	if err != nil {
		return err
	}

	sealed, err := auth.Seal(auth.KeyFromSecret(key), s.AccessToken)
	if err != nil {
		return fmt.Errorf("sealing access token: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for k, v := range map[string]string{keyUsername: s.Username, keyAccessToken: sealed} {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, v,
		)
		if err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
	}

	return tx.Commit()
}

// LoadSession returns the stored CLI session, or nil if nobody is logged in.
func LoadSession(ctx context.Context, db *sql.DB) (*model.Session, error) {
	username, err := GetSetting(ctx, db, keyUsername)
	if err != nil {
		return nil, err
	}
	sealed, err := GetSetting(ctx, db, keyAccessToken)
	if err != nil {
		return nil, err
	}
	if username == "" || sealed == "" {
		return nil, nil
	}

	key, err := GetSetting(ctx, db, keyStoreKey)
	if err != nil {
		return nil, err
	}
	token, err := auth.Unseal(auth.KeyFromSecret(key), sealed)
	if err != nil {
		return nil, fmt.Errorf("reading access token: %w", err)
	}

	return &model.Session{Username: username, AccessToken: token}, nil
}

// ClearSession forgets the CLI session, like clearing browser storage on logout.
func ClearSession(ctx context.Context, db *sql.DB) error {
	if err := DeleteSetting(ctx, db, keyUsername); err != nil {
		return err
	}
	return DeleteSetting(ctx, db, keyAccessToken)
}
