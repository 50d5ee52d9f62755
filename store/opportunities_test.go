// ABOUTME: Tests for opportunity upsert and list operations
// ABOUTME: Covers idempotence, annotation isolation, and window filtering
package store

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/fiveyard/models"
)

func testOpportunity(sfID string) *models.Opportunity {
	created := time.Date(2024, 1, 30, 10, 0, 0, 0, time.UTC)
	modified := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	close := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	return &models.Opportunity{
		SFID:             sfID,
		Name:             "Smith, Austin TX, evenings only",
		Stage:            models.StageProposal,
		Amount:           25000,
		CreatedDate:      created,
		LastModifiedDate: modified,
		CloseDate:        &close,
		OwnerName:        "Pat Dealer",
		AccountName:      "Smith Household",
		AccountPhone:     "555-0101",
		NextStep:         "Call back Tuesday",
		Description:      "Referred by the Joneses",
	}
}

func TestUpsertOpportunityIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	opp := testOpportunity("006AAA")
	if err := s.UpsertOpportunity(ctx, opp); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	firstUpdatedAt := opp.UpdatedAt

	time.Sleep(5 * time.Millisecond)

	// Same record, same day: must not duplicate and must not change any
	// synchronized field, only updated_at advances.
	again := testOpportunity("006AAA")
	if err := s.UpsertOpportunity(ctx, again); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	var count int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM opportunities`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after re-sync, got %d", count)
	}

	stored, err := s.GetOpportunity(ctx, "006AAA")
	if err != nil {
		t.Fatalf("GetOpportunity failed: %v", err)
	}
	if stored == nil {
		t.Fatal("opportunity not found after upsert")
	}
	if stored.Name != opp.Name || stored.Stage != opp.Stage || stored.Amount != opp.Amount {
		t.Errorf("synchronized fields changed on re-sync: %+v", stored)
	}
	if !stored.UpdatedAt.After(firstUpdatedAt) {
		t.Errorf("updated_at did not advance: %v -> %v", firstUpdatedAt, stored.UpdatedAt)
	}
}

func TestUpsertDoesNotTouchAnnotations(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.UpsertOpportunity(ctx, testOpportunity("006BBB")); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	pref := &models.UserPreference{
		OpportunityID: "006BBB",
		Priority:      models.PriorityRed,
		IntentLevel:   8,
		Notes:         "hot lead",
	}
	if err := s.SavePreference(ctx, pref); err != nil {
		t.Fatalf("SavePreference failed: %v", err)
	}

	// Re-sync the opportunity; the annotation row must be untouched.
	if err := s.UpsertOpportunity(ctx, testOpportunity("006BBB")); err != nil {
		t.Fatalf("re-upsert failed: %v", err)
	}

	stored, err := s.GetPreference(ctx, models.DefaultUserID, "006BBB")
	if err != nil {
		t.Fatalf("GetPreference failed: %v", err)
	}
	if stored == nil {
		t.Fatal("preference vanished after opportunity re-sync")
	}
	if stored.Priority != models.PriorityRed || stored.IntentLevel != 8 || stored.Notes != "hot lead" {
		t.Errorf("annotation changed by opportunity upsert: %+v", stored)
	}
}

func TestListOpportunitiesWindowAndLimit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 29, 12, 0, 0, 0, time.UTC) // Monday of 2024-W05
	for i := 0; i < 5; i++ {
		opp := testOpportunity("006LIST" + string(rune('A'+i)))
		opp.CreatedDate = base.AddDate(0, 0, i*3) // every third day
		opp.LastModifiedDate = base.AddDate(0, 0, i)
		if err := s.UpsertOpportunity(ctx, opp); err != nil {
			t.Fatalf("upsert %d failed: %v", i, err)
		}
	}

	// Creation window covering the first week only
	from := base.AddDate(0, 0, -1)
	to := base.AddDate(0, 0, 6)
	opps, err := s.ListOpportunities(ctx, ListFilter{CreatedFrom: &from, CreatedTo: &to})
	if err != nil {
		t.Fatalf("ListOpportunities failed: %v", err)
	}
	if len(opps) != 2 {
		t.Errorf("expected 2 opportunities in window, got %d", len(opps))
	}

	// Limit mode, ordered by last_modified_date descending
	opps, err = s.ListOpportunities(ctx, ListFilter{Limit: 3})
	if err != nil {
		t.Fatalf("ListOpportunities with limit failed: %v", err)
	}
	if len(opps) != 3 {
		t.Fatalf("expected 3 opportunities with limit, got %d", len(opps))
	}
	for i := 1; i < len(opps); i++ {
		if opps[i].LastModifiedDate.After(opps[i-1].LastModifiedDate) {
			t.Errorf("list not ordered by last_modified_date desc at %d", i)
		}
	}
}

func TestHasOpportunities(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	has, err := s.HasOpportunities(ctx)
	if err != nil {
		t.Fatalf("HasOpportunities failed: %v", err)
	}
	if has {
		t.Error("empty store reported data")
	}

	if err := s.UpsertOpportunity(ctx, testOpportunity("006CCC")); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	has, err = s.HasOpportunities(ctx)
	if err != nil {
		t.Fatalf("HasOpportunities failed: %v", err)
	}
	if !has {
		t.Error("store with one row reported no data")
	}
}
