package testsupport

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// NewSQLiteMemoryDB opens a shared-cache in-memory SQLite database. A name
// isolates the database from others opened in the same process.
func NewSQLiteMemoryDB(name ...string) (*sql.DB, error) {
	dsn := "file::memory:?cache=shared"
	if len(name) > 0 && strings.TrimSpace(name[0]) != "" {
		dsn = "file:" + sanitize(name[0]) + "?mode=memory&cache=shared"
	}
	return sql.Open("sqlite3", dsn)
}

// NewBunDB wraps a named in-memory SQLite database in bun. The pool is pinned
// to one connection so the in-memory database outlives individual queries.
func NewBunDB(name string) (*bun.DB, error) {
	sqlDB, err := NewSQLiteMemoryDB(name)
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
