package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"fwetl/internal/ddl"
	"fwetl/internal/storage/sqldb"
)

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

func init() {
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// Repository is the SQLite-backed repository.
type Repository = sqldb.Repository

// NewRepository opens (and optionally replaces) the SQLite database and
// returns a Repository plus a Close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if cfg.ReplaceFile {
		if err := removeDBFile(cfg.DSN); err != nil {
			return nil, nil, err
		}
	}

	r, closeFn, err := sqldb.Open(ctx, sqldb.Config{
		Driver:  driverName,
		DSN:     cfg.DSN,
		Table:   cfg.Table,
		Dialect: ddl.SQLite,
	})
	if err != nil {
		return nil, nil, err
	}
	// Enable foreign keys; ignore error if the build does not support it.
	_ = r.Exec(ctx, "PRAGMA foreign_keys = ON;")
	zap.L().Named("storage").Info("connection made", zap.String("kind", "sqlite"), zap.String("dsn", cfg.DSN))
	return r, closeFn, nil
}

// FilePath returns the file behind a SQLite DSN, or "" for in-memory
// databases.
func FilePath(dsn string) string {
	p := strings.TrimPrefix(strings.TrimSpace(dsn), "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		if strings.Contains(p[i:], "mode=memory") {
			return ""
		}
		p = p[:i]
	}
	if p == "" || p == ":memory:" {
		return ""
	}
	return p
}

func removeDBFile(dsn string) error {
	path := FilePath(dsn)
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("sqlite: remove %s: %w", path, err)
	}
	return nil
}
