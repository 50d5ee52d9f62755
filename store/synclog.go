// ABOUTME: Append-only sync log operations
// ABOUTME: Records each sync attempt; answers "when did we last sync"
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/fiveyard/models"
)

// AppendSyncLog records one sync attempt. Entries are never updated or
// deleted. IDs are ULIDs so the log stays time-ordered.
func (s *Store) AppendSyncLog(ctx context.Context, entry *models.SyncLogEntry) error {
	if entry.ID == "" {
		entry.ID = ulid.Make().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO sync_log (id, sync_type, status, records_synced, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		entry.ID, entry.SyncType, entry.Status, entry.RecordsSynced, entry.ErrorMessage, entry.CreatedAt)
	return persistErr("append sync log", err)
}

// LatestSyncLog returns the most recent entry, nil when no sync has run.
func (s *Store) LatestSyncLog(ctx context.Context) (*models.SyncLogEntry, error) {
	var (
		entry  models.SyncLogEntry
		errMsg sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, sync_type, status, records_synced, error_message, created_at
		FROM sync_log
		ORDER BY created_at DESC, id DESC
		LIMIT 1`).Scan(
		&entry.ID, &entry.SyncType, &entry.Status, &entry.RecordsSynced, &errMsg, &entry.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("latest sync log", err)
	}

	if errMsg.Valid {
		entry.ErrorMessage = &errMsg.String
	}
	return &entry, nil
}
