// ABOUTME: Idempotent schema bootstrap for both backends
// ABOUTME: CREATE IF NOT EXISTS tables plus swallow-safe additive migrations
package store

import "fmt"

// schemaStatements returns the bootstrap DDL for a dialect. The SQLite
// schema declares the annotation foreign key; Postgres does not, so
// annotations may outlive their opportunity on either backend and the
// read path must tolerate orphans.
func schemaStatements(d Dialect) []string {
	ts := d.timestampType()

	opportunities := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS opportunities (
			sf_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			stage TEXT NOT NULL,
			amount REAL,
			created_date %[1]s,
			last_modified_date %[1]s,
			close_date %[1]s,
			last_contact_date %[1]s,
			owner_name TEXT,
			account_name TEXT,
			account_phone TEXT,
			next_step TEXT,
			description TEXT,
			updated_at %[1]s NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, ts)

	prefFK := ""
	if d == SQLite {
		prefFK = ",\n\t\t\tFOREIGN KEY (opportunity_id) REFERENCES opportunities(sf_id)"
	}
	preferences := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS user_preferences (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT 'default',
			opportunity_id TEXT NOT NULL,
			priority TEXT NOT NULL DEFAULT 'gray',
			intent_level INTEGER NOT NULL DEFAULT 5,
			five_yard_line BOOLEAN NOT NULL DEFAULT FALSE,
			follow_up_date %[1]s,
			created_at %[1]s NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at %[1]s NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, opportunity_id)%[2]s
		)`, ts, prefFK)

	syncLog := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS sync_log (
			id TEXT PRIMARY KEY,
			sync_type TEXT NOT NULL,
			status TEXT NOT NULL,
			records_synced INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			created_at %[1]s NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, ts)

	return []string{
		opportunities,
		preferences,
		syncLog,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_last_modified ON opportunities(last_modified_date)`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_created ON opportunities(created_date)`,
		`CREATE INDEX IF NOT EXISTS idx_user_preferences_user ON user_preferences(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_log_created ON sync_log(created_at)`,
	}
}

// additiveMigrations are columns added after the initial schema shipped.
// They run on every startup; duplicate-column errors are expected.
var additiveMigrations = []string{
	`ALTER TABLE user_preferences ADD COLUMN notes TEXT`,
	`ALTER TABLE user_preferences ADD COLUMN position_x REAL`,
	`ALTER TABLE user_preferences ADD COLUMN position_y REAL`,
}

// InitSchema bootstraps the schema. Safe to run on every startup:
// duplicate-column conditions are swallowed, and any other DDL error is
// logged but does not fail startup.
func (s *Store) InitSchema() {
	for _, stmt := range schemaStatements(s.dialect) {
		if _, err := s.db.Exec(stmt); err != nil {
			s.log.WithError(err).Warn("schema bootstrap statement failed")
		}
	}

	for _, stmt := range additiveMigrations {
		if _, err := s.db.Exec(stmt); err != nil {
			if s.dialect.IsDuplicateColumn(err) {
				continue
			}
			s.log.WithError(err).Warn("additive migration failed")
		}
	}
}
