package mssql

import (
	"context"
	"errors"
	"os"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"fwetl/internal/ddl"
	"fwetl/internal/storage"
)

// TestCopyFromEmptyRows verifies that CopyFrom short-circuits when no rows
// are provided and does not require a live database connection.
func TestCopyFromEmptyRows(t *testing.T) {
	t.Parallel()

	r := &Repository{cfg: Config{Table: "dbo.t"}}
	got, err := r.CopyFrom(context.Background(), []string{"id", "name"}, nil)
	if err != nil || got != 0 {
		t.Fatalf("CopyFrom(nil...) = %d, %v; want 0, nil", got, err)
	}
}

func TestNewRepositoryRejectsBadDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "sqlserver://%zz"}); err == nil {
		t.Fatalf("NewRepository(bad dsn) error = nil")
	}
}

// TestRecreateTableBrackets checks the DDL the sink issues on SQL Server.
func TestRecreateTableBrackets(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS [dbo].[task2];")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE [dbo].[task2] (\n  [qty] FLOAT\n);")).WillReturnResult(sqlmock.NewResult(0, 0))

	w := &wrappedRepo{Repository: &Repository{db: sqlx.NewDb(db, "sqlserver")}, closeFn: func() {}}
	td := ddl.TableDef{FQN: "dbo.task2", Columns: []ddl.ColumnDef{{Name: "qty", SQLType: ddl.LogicalReal, Nullable: true}}}
	if err := storage.EnsureTable(context.Background(), "mssql", w, td); err != nil {
		t.Fatalf("EnsureTable error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExecWrapsError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectExec("SELECT 1").WillReturnError(boom)
	r := &Repository{db: sqlx.NewDb(db, "sqlserver")}
	if err := r.Exec(context.Background(), "SELECT 1"); !errors.Is(err, boom) {
		t.Fatalf("Exec error = %v, want %v", err, boom)
	}
}

// TestCopyFromLive runs only when TEST_MSSQL_DSN is set.
func TestCopyFromLive(t *testing.T) {
	t.Parallel()

	dsn := os.Getenv("TEST_MSSQL_DSN")
	if dsn == "" {
		t.Skip("skipping integration test: set TEST_MSSQL_DSN to run")
	}
	ctx := context.Background()
	r, closeFn, err := NewRepository(ctx, Config{DSN: dsn, Table: "dbo.fwetl_copy_test"})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()

	td := ddl.TableDef{FQN: "dbo.fwetl_copy_test", Columns: []ddl.ColumnDef{
		{Name: "a", SQLType: ddl.LogicalInteger, Nullable: true},
		{Name: "b", SQLType: ddl.LogicalText, Nullable: true},
	}}
	if err := storage.RecreateTable(ddl.MSSQL)(ctx, &wrappedRepo{Repository: r, closeFn: func() {}}, td); err != nil {
		t.Fatalf("RecreateTable: %v", err)
	}
	n, err := r.CopyFrom(ctx, []string{"a", "b"}, [][]any{{int64(1), "x"}, {int64(2), nil}})
	if err != nil || n != 2 {
		t.Fatalf("CopyFrom = %d, %v", n, err)
	}
}
