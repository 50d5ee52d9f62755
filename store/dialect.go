// ABOUTME: SQL dialect abstraction between SQLite and Postgres backends
// ABOUTME: Handles placeholder rebinding, type names, and DDL error classes
package store

import (
	"strconv"
	"strings"
)

// Dialect identifies which physical backend a Store is running on. The
// dialect is chosen once at startup and never changes for the process
// lifetime.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// DriverName returns the database/sql driver name for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite3"
}

// Rebind translates ?-style placeholders into the dialect's positional
// syntax. Queries in this package are written with ? and rebound at the
// adapter boundary, never string-patched at call sites.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timestampType returns the column type used for timestamps.
func (d Dialect) timestampType() string {
	if d == Postgres {
		return "TIMESTAMPTZ"
	}
	return "DATETIME"
}

// IsDuplicateColumn reports whether err is the expected error from adding
// a column that already exists. Additive migrations run on every startup,
// so this condition is normal, not a failure.
func (d Dialect) IsDuplicateColumn(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}
