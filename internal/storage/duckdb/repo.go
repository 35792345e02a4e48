// Package duckdb implements the DuckDB table-sink backend on
// github.com/marcboeker/go-duckdb.
package duckdb

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/marcboeker/go-duckdb"

	"fwetl/internal/ddl"
	"fwetl/internal/storage/sqldb"
)

const driverName = "duckdb"

func init() {
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// Config holds DuckDB repository configuration. An empty DSN opens an
// in-memory database.
type Config struct {
	DSN     string
	Table   string
	Columns []string
}

// Repository is the DuckDB-backed repository.
type Repository = sqldb.Repository

// NewRepository opens the DuckDB database and returns a Repository plus a
// Close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = ":memory:"
	}
	return sqldb.Open(ctx, sqldb.Config{
		Driver:  driverName,
		DSN:     dsn,
		Table:   cfg.Table,
		Dialect: ddl.DuckDB,
	})
}
