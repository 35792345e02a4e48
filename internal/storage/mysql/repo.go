// Package mysql implements the MySQL table-sink backend on
// github.com/go-sql-driver/mysql.
package mysql

import (
	"context"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"fwetl/internal/ddl"
	"fwetl/internal/storage/sqldb"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN     string
	Table   string
	Columns []string
}

// Repository is the MySQL-backed repository.
type Repository = sqldb.Repository

// NormalizeDSN validates dsn and enables ParseTime.
func NormalizeDSN(dsn string) (string, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	c.ParseTime = true
	return c.FormatDSN(), nil
}

// NewRepository validates the DSN, connects and returns a Repository plus a
// Close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn, err := NormalizeDSN(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	return sqldb.Open(ctx, sqldb.Config{
		Driver:  "mysql",
		DSN:     dsn,
		Table:   cfg.Table,
		Dialect: ddl.MySQL,
	})
}
