// ABOUTME: User preference annotation store keyed by (user, opportunity)
// ABOUTME: Full-replacement upserts and transactional bulk writes
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/fiveyard/models"
)

const preferenceColumns = `id, user_id, opportunity_id, priority, intent_level,
	five_yard_line, follow_up_date, notes, position_x, position_y, created_at, updated_at`

const upsertPreferenceQuery = `
	INSERT INTO user_preferences (` + preferenceColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id, opportunity_id) DO UPDATE SET
		priority = excluded.priority,
		intent_level = excluded.intent_level,
		five_yard_line = excluded.five_yard_line,
		follow_up_date = excluded.follow_up_date,
		notes = excluded.notes,
		position_x = excluded.position_x,
		position_y = excluded.position_y,
		updated_at = excluded.updated_at`

// SavePreference writes one annotation. Writes are full replacements: a
// zero-valued field lands as its default, not as the previously stored
// value. Callers intending a merge read the row first.
func (s *Store) SavePreference(ctx context.Context, p *models.UserPreference) error {
	if err := validatePreference(p); err != nil {
		return err
	}
	preparePreference(p)

	_, err := s.db.ExecContext(ctx, s.rebind(upsertPreferenceQuery), preferenceArgs(p)...)
	return persistErr(fmt.Sprintf("save preference %s/%s", p.UserID, p.OpportunityID), err)
}

// SaveBulkPreferences writes a batch of annotations atomically. Either
// every record commits or none do; a malformed record anywhere in the
// batch rolls the whole batch back.
func (s *Store) SaveBulkPreferences(ctx context.Context, prefs []models.UserPreference) error {
	if len(prefs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("begin bulk preference save", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	query := s.rebind(upsertPreferenceQuery)
	for i := range prefs {
		p := &prefs[i]
		if err := validatePreference(p); err != nil {
			return fmt.Errorf("bulk preference %d: %w", i, err)
		}
		preparePreference(p)
		if _, err := tx.ExecContext(ctx, query, preferenceArgs(p)...); err != nil {
			return persistErr(fmt.Sprintf("bulk preference %d (%s)", i, p.OpportunityID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return persistErr("commit bulk preference save", err)
	}
	committed = true
	return nil
}

// GetPreference fetches one annotation, nil when the pair has never been
// annotated.
func (s *Store) GetPreference(ctx context.Context, userID, opportunityID string) (*models.UserPreference, error) {
	if userID == "" {
		userID = models.DefaultUserID
	}
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+preferenceColumns+` FROM user_preferences WHERE user_id = ? AND opportunity_id = ?`),
		userID, opportunityID)

	p, err := scanPreference(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get preference "+opportunityID, err)
	}
	return p, nil
}

// GetPreferences returns all annotations for one user.
func (s *Store) GetPreferences(ctx context.Context, userID string) ([]models.UserPreference, error) {
	if userID == "" {
		userID = models.DefaultUserID
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT `+preferenceColumns+` FROM user_preferences WHERE user_id = ? ORDER BY updated_at DESC`),
		userID)
	if err != nil {
		return nil, persistErr("list preferences", err)
	}
	defer func() { _ = rows.Close() }()

	var prefs []models.UserPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, persistErr("scan preference", err)
		}
		prefs = append(prefs, *p)
	}
	return prefs, persistErr("list preferences", rows.Err())
}

func validatePreference(p *models.UserPreference) error {
	if p.OpportunityID == "" {
		return errors.New("preference missing opportunity id")
	}
	if p.Priority != "" && !models.ValidPriority(p.Priority) {
		return fmt.Errorf("invalid priority color %q", p.Priority)
	}
	if p.IntentLevel != 0 && (p.IntentLevel < 1 || p.IntentLevel > 10) {
		return fmt.Errorf("intent level %d out of range 1-10", p.IntentLevel)
	}
	return nil
}

func preparePreference(p *models.UserPreference) {
	p.ApplyDefaults()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

func preferenceArgs(p *models.UserPreference) []interface{} {
	return []interface{}{
		p.ID, p.UserID, p.OpportunityID, p.Priority, p.IntentLevel,
		p.FiveYardLine, p.FollowUpDate, p.Notes, p.PositionX, p.PositionY,
		p.CreatedAt, p.UpdatedAt,
	}
}

func scanPreference(row rowScanner) (*models.UserPreference, error) {
	var (
		p            models.UserPreference
		followUpDate sql.NullTime
		notes        sql.NullString
		posX, posY   sql.NullFloat64
	)

	err := row.Scan(
		&p.ID, &p.UserID, &p.OpportunityID, &p.Priority, &p.IntentLevel,
		&p.FiveYardLine, &followUpDate, &notes, &posX, &posY,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if followUpDate.Valid {
		t := followUpDate.Time
		p.FollowUpDate = &t
	}
	p.Notes = notes.String
	if posX.Valid {
		v := posX.Float64
		p.PositionX = &v
	}
	if posY.Valid {
		v := posY.Float64
		p.PositionY = &v
	}
	return &p, nil
}
