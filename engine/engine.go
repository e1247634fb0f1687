package engine

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// Open opens a SQLite database using the modernc.org/sqlite driver. Pass a
// file path like "./faqbase.db", or ":memory:" for an in-memory database.
//
// File-backed databases get WAL journaling and a busy timeout, applied per
// connection through DSN pragmas, so background ingestion writes and
// concurrent search reads do not starve each other.
func Open(dsn string) (*sql.DB, error) {
	if dsn != ":memory:" && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	return sql.Open("sqlite", dsn)
}
