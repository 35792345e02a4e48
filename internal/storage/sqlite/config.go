// Package sqlite implements the SQLite table-sink backend on modernc.org/sqlite.
package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a file path or SQLite URI, e.g. "results/result.db" or
	// "file:result.db?_pragma=busy_timeout(5000)".
	DSN string
	// Table is the destination table.
	Table string
	// Columns is the ordered list of destination columns.
	Columns []string
	// ReplaceFile removes the database file before opening it, so every run
	// starts from an empty database.
	ReplaceFile bool
}
