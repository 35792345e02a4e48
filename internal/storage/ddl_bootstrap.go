package storage

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"fwetl/internal/ddl"
)

// DDLBootstrapper prepares the destination table described by td, typically
// by issuing DDL through repo.Exec.
type DDLBootstrapper func(ctx context.Context, repo Repository, td ddl.TableDef) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for a storage kind.
// It is typically called from backend init functions.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable runs the DDLBootstrapper registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, td ddl.TableDef) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, td)
}

// RecreateTable returns a DDLBootstrapper that drops td.FQN if it exists and
// creates it fresh, rendering both statements in dialect d. Column types in
// td are logical types and are mapped with d.MapType.
func RecreateTable(d ddl.Dialect) DDLBootstrapper {
	return func(ctx context.Context, repo Repository, td ddl.TableDef) error {
		mapped := ddl.TableDef{FQN: td.FQN, Columns: make([]ddl.ColumnDef, len(td.Columns))}
		for i, c := range td.Columns {
			c.SQLType = d.MapType(c.SQLType)
			mapped.Columns[i] = c
		}

		drop, err := d.BuildDropTableSQL(td.FQN)
		if err != nil {
			return err
		}
		create, err := d.BuildCreateTableSQL(mapped)
		if err != nil {
			return err
		}
		if err := repo.Exec(ctx, drop); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
		if err := repo.Exec(ctx, create); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
		zap.L().Named("storage").Info("created table",
			zap.String("dialect", d.Name),
			zap.String("table", td.FQN),
			zap.Int("columns", len(td.Columns)))
		return nil
	}
}
