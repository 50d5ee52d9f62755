// ABOUTME: Local store adapter over SQLite or Postgres
// ABOUTME: Backend is selected once at startup from the connection string
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Store is the dialect-agnostic persistence layer. One Store backs the
// whole process; the single connection serializes SQLite writes.
type Store struct {
	db      *sql.DB
	dialect Dialect
	log     *logrus.Entry
}

// Open selects and opens the backing store. A non-empty databaseURL
// selects Postgres; otherwise the embedded SQLite database at sqlitePath
// is used. The selection is permanent for the process lifetime.
func Open(databaseURL, sqlitePath string, log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	entry := log.WithField("component", "store")

	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)

	if databaseURL != "" {
		dialect = Postgres
		db, err = sql.Open(dialect.DriverName(), databaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
	} else {
		dialect = SQLite
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		db, err = sql.Open(dialect.DriverName(), sqlitePath+"?_journal_mode=WAL")
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// Single connection avoids database locked errors
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, dialect: dialect, log: entry}
	s.InitSchema()

	entry.WithField("dialect", dialect.String()).Info("local store ready")
	return s, nil
}

// Dialect returns the backend the store was opened against.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}
