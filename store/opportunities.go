// ABOUTME: Opportunity row read/write operations
// ABOUTME: Idempotent upsert keyed by sf_id plus filtered list queries
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/harperreed/fiveyard/models"
)

// opportunityColumns is the synchronized column set, in insert order.
const opportunityColumns = `sf_id, name, stage, amount, created_date, last_modified_date,
	close_date, last_contact_date, owner_name, account_name, account_phone,
	next_step, description, updated_at`

// UpsertOpportunity inserts or refreshes one mirrored opportunity.
// Re-syncing an unchanged record only advances updated_at. The conflict
// clause names exactly the synchronized columns; annotation data lives in
// user_preferences and is never touched here.
func (s *Store) UpsertOpportunity(ctx context.Context, o *models.Opportunity) error {
	o.UpdatedAt = time.Now().UTC()

	query := s.rebind(`
		INSERT INTO opportunities (` + opportunityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(sf_id) DO UPDATE SET
			name = excluded.name,
			stage = excluded.stage,
			amount = excluded.amount,
			created_date = excluded.created_date,
			last_modified_date = excluded.last_modified_date,
			close_date = excluded.close_date,
			last_contact_date = excluded.last_contact_date,
			owner_name = excluded.owner_name,
			account_name = excluded.account_name,
			account_phone = excluded.account_phone,
			next_step = excluded.next_step,
			description = excluded.description,
			updated_at = excluded.updated_at`)

	_, err := s.db.ExecContext(ctx, query,
		o.SFID, o.Name, o.Stage, o.Amount, o.CreatedDate, o.LastModifiedDate,
		o.CloseDate, o.LastContactDate, o.OwnerName, o.AccountName, o.AccountPhone,
		o.NextStep, o.Description, o.UpdatedAt,
	)
	return persistErr("upsert opportunity "+o.SFID, err)
}

// ListFilter bounds an opportunity list query. Zero values mean no
// constraint; CreatedTo is exclusive.
type ListFilter struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
}

// ListOpportunities returns mirrored rows ordered by most recent remote
// modification. Policy filtering (owners, name substrings) happens in the
// view layer; the store only bounds by creation window and limit.
func (s *Store) ListOpportunities(ctx context.Context, f ListFilter) ([]models.Opportunity, error) {
	query := `SELECT ` + opportunityColumns + ` FROM opportunities`
	var args []interface{}

	if f.CreatedFrom != nil {
		query += ` WHERE created_date >= ? AND created_date < ?`
		args = append(args, *f.CreatedFrom, *f.CreatedTo)
	}
	query += ` ORDER BY last_modified_date DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, persistErr("list opportunities", err)
	}
	defer func() { _ = rows.Close() }()

	var opps []models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, persistErr("scan opportunity", err)
		}
		opps = append(opps, *o)
	}
	return opps, persistErr("list opportunities", rows.Err())
}

// GetOpportunity fetches one row by remote identifier, nil when absent.
func (s *Store) GetOpportunity(ctx context.Context, sfID string) (*models.Opportunity, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+opportunityColumns+` FROM opportunities WHERE sf_id = ?`), sfID)

	o, err := scanOpportunity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get opportunity "+sfID, err)
	}
	return o, nil
}

// HasOpportunities reports whether any rows have ever been synced.
func (s *Store) HasOpportunities(ctx context.Context) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM opportunities`).Scan(&count)
	if err != nil {
		return false, persistErr("count opportunities", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOpportunity(row rowScanner) (*models.Opportunity, error) {
	var (
		o                          models.Opportunity
		amount                     sql.NullFloat64
		createdDate, lastModified  sql.NullTime
		closeDate, lastContact     sql.NullTime
		owner, acctName, acctPhone sql.NullString
		nextStep, description      sql.NullString
	)

	err := row.Scan(
		&o.SFID, &o.Name, &o.Stage, &amount, &createdDate, &lastModified,
		&closeDate, &lastContact, &owner, &acctName, &acctPhone,
		&nextStep, &description, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Amount = amount.Float64
	if createdDate.Valid {
		o.CreatedDate = createdDate.Time
	}
	if lastModified.Valid {
		o.LastModifiedDate = lastModified.Time
	}
	if closeDate.Valid {
		t := closeDate.Time
		o.CloseDate = &t
	}
	if lastContact.Valid {
		t := lastContact.Time
		o.LastContactDate = &t
	}
	o.OwnerName = owner.String
	o.AccountName = acctName.String
	o.AccountPhone = acctPhone.String
	o.NextStep = nextStep.String
	o.Description = description.String
	return &o, nil
}
