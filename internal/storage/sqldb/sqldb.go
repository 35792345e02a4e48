// Package sqldb is the database/sql repository shared by the SQLite, MySQL
// and DuckDB backends. Rows are inserted with one prepared INSERT per batch
// inside a transaction; placeholders are rebound per driver by sqlx.
package sqldb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"fwetl/internal/ddl"
)

// Config holds repository configuration.
type Config struct {
	// Driver is the database/sql driver name, e.g. "sqlite" or "mysql".
	Driver string
	DSN    string
	// Table is the destination table; dotted names are quoted per segment.
	Table   string
	Dialect ddl.Dialect
}

// Repository implements storage.Repository (minus Close) on database/sql.
type Repository struct {
	db  *sqlx.DB
	cfg Config
}

// Open connects with cfg.Driver and pings the database. The returned function
// closes the pool.
func Open(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("%s: DSN must not be empty", cfg.Driver)
	}
	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: open: %w", cfg.Driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%s: ping: %w", cfg.Driver, err)
	}
	return New(db, cfg), func() { _ = db.Close() }, nil
}

// New wraps an existing connection pool.
func New(db *sqlx.DB, cfg Config) *Repository {
	return &Repository{db: db, cfg: cfg}
}

// DB exposes the pool for backend-specific setup.
func (r *Repository) DB() *sqlx.DB { return r.db }

// InsertSQL renders the INSERT statement for columns, rebound for the
// driver's placeholder style.
func (r *Repository) InsertSQL(columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = r.cfg.Dialect.QuoteIdent(c)
		marks[i] = "?"
	}
	return r.db.Rebind(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		r.cfg.Dialect.QuoteFQN(r.cfg.Table),
		strings.Join(quoted, ", "),
		strings.Join(marks, ", "),
	))
}

// CopyFrom inserts rows in a single transaction with one prepared statement.
// len(row) must equal len(columns) for every row.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("%s: CopyFrom: columns must not be empty", r.cfg.Driver)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin tx: %w", r.cfg.Driver, err)
	}
	stmt, err := tx.PreparexContext(ctx, r.InsertSQL(columns))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("%s: prepare insert: %w", r.cfg.Driver, err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("%s: CopyFrom: row length %d != columns length %d", r.cfg.Driver, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("%s: insert: %w", r.cfg.Driver, err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", r.cfg.Driver, err)
	}
	return inserted, nil
}

// Exec runs a single statement, typically DDL. Blank statements are ignored.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("%s: exec: %w", r.cfg.Driver, err)
	}
	return nil
}
