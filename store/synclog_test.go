// ABOUTME: Tests for the append-only sync log
// ABOUTME: Covers ID assignment and latest-entry retrieval
package store

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/fiveyard/models"
)

func TestAppendAndLatestSyncLog(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	latest, err := s.LatestSyncLog(ctx)
	if err != nil {
		t.Fatalf("LatestSyncLog failed: %v", err)
	}
	if latest != nil {
		t.Error("expected nil before any sync has run")
	}

	first := &models.SyncLogEntry{
		SyncType:      "opportunities",
		Status:        models.SyncStatusSuccess,
		RecordsSynced: 42,
		CreatedAt:     time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := s.AppendSyncLog(ctx, first); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if first.ID == "" {
		t.Error("entry ID was not assigned")
	}

	msg := "fetch failed: expired session"
	second := &models.SyncLogEntry{
		SyncType:     "opportunities",
		Status:       models.SyncStatusError,
		ErrorMessage: &msg,
		CreatedAt:    time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := s.AppendSyncLog(ctx, second); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	latest, err = s.LatestSyncLog(ctx)
	if err != nil {
		t.Fatalf("LatestSyncLog failed: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a latest entry")
	}
	if latest.ID != second.ID {
		t.Errorf("latest entry = %s, want %s", latest.ID, second.ID)
	}
	if latest.Status != models.SyncStatusError {
		t.Errorf("status = %s, want error", latest.Status)
	}
	if latest.ErrorMessage == nil || *latest.ErrorMessage != msg {
		t.Errorf("error message not preserved: %v", latest.ErrorMessage)
	}
	if latest.RecordsSynced != 0 {
		t.Errorf("records synced = %d, want 0 for failed sync", latest.RecordsSynced)
	}
}
