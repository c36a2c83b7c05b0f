package database

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Dialect isolates the SQL differences between the supported backends.
// gorm already renders placeholders per driver, so only the leftovers live here.
type Dialect interface {
	// Name is "sqlite" or "postgres".
	Name() string
	// ContainsFold returns a WHERE fragment matching column against a single
	// %pattern% argument, case-insensitively.
	ContainsFold(column string) string
	// QuoteIdent quotes a table or column name.
	QuoteIdent(name string) string
	// QuoteLiteral quotes a string value for inclusion in a SQL script.
	QuoteLiteral(value string) string
	// PrimaryKey is the column definition of an auto-incrementing integer key.
	PrimaryKey() string
}

// Supported dialect names.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// DialectFor returns the Dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SQLite, "sqlite3":
		return sqliteDialect{}, nil
	case Postgres, "postgresql", "pg":
		return postgresDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported dialect: %q", name)
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return SQLite }

// LIKE is case-insensitive for ASCII in SQLite.
func (sqliteDialect) ContainsFold(column string) string {
	return column + " LIKE ?"
}

func (sqliteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqliteDialect) QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func (sqliteDialect) PrimaryKey() string {
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return Postgres }

func (postgresDialect) ContainsFold(column string) string {
	return column + " ILIKE ?"
}

func (postgresDialect) QuoteIdent(name string) string {
	return pq.QuoteIdentifier(name)
}

func (postgresDialect) QuoteLiteral(value string) string {
	return pq.QuoteLiteral(value)
}

func (postgresDialect) PrimaryKey() string {
	return "BIGSERIAL PRIMARY KEY"
}
