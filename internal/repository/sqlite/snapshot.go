package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/repository"
)

var _ repository.SnapshotRepository = (*DB)(nil)

// SaveSnapshot stores data under key, replacing whatever was there.
//
// UPSERT:
// INSERT ... ON CONFLICT(key) DO UPDATE keeps exactly one row per key, so a
// reload always sees the latest complete snapshot and never a partial one.
func (db *DB) SaveSnapshot(ctx context.Context, key string, data []byte) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO snapshots (key, data, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key,
		data,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving snapshot %s: %w", key, err)
	}
	return nil
}

// LoadSnapshot returns the bytes saved under key.
// Returns apperror.ErrNotFound if nothing has been saved yet.
func (db *DB) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := db.conn.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE key = ?`,
		key,
	).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snapshot", key)
		}
		return nil, fmt.Errorf("sqlite: loading snapshot %s: %w", key, err)
	}
	return data, nil
}
