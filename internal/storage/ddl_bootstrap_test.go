package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fwetl/internal/ddl"
)

// recordingRepo captures executed statements.
type recordingRepo struct {
	fakeRepo
	stmts   []string
	failOn  string
	failErr error
}

func (r *recordingRepo) Exec(_ context.Context, sql string) error {
	if r.failOn != "" && strings.HasPrefix(sql, r.failOn) {
		return r.failErr
	}
	r.stmts = append(r.stmts, sql)
	return nil
}

func TestRecreateTable(t *testing.T) {
	t.Parallel()

	repo := &recordingRepo{}
	td := ddl.TableDef{FQN: "task2", Columns: []ddl.ColumnDef{
		{Name: "pccn", SQLType: "text", Nullable: true},
		{Name: "qty", SQLType: "real", Nullable: true},
	}}
	if err := RecreateTable(ddl.SQLite)(context.Background(), repo, td); err != nil {
		t.Fatalf("RecreateTable error: %v", err)
	}
	want := []string{
		`DROP TABLE IF EXISTS "task2";`,
		"CREATE TABLE \"task2\" (\n  \"pccn\" TEXT,\n  \"qty\" REAL\n);",
	}
	if len(repo.stmts) != 2 || repo.stmts[0] != want[0] || repo.stmts[1] != want[1] {
		t.Fatalf("statements = %q, want %q", repo.stmts, want)
	}
}

func TestRecreateTable_CreateFails(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	repo := &recordingRepo{failOn: "CREATE", failErr: boom}
	td := ddl.TableDef{FQN: "t", Columns: []ddl.ColumnDef{{Name: "a", SQLType: "text", Nullable: true}}}
	err := RecreateTable(ddl.Postgres)(context.Background(), repo, td)
	if !errors.Is(err, boom) {
		t.Fatalf("RecreateTable error = %v, want %v", err, boom)
	}
}

func TestEnsureTable_Unregistered(t *testing.T) {
	t.Parallel()

	err := EnsureTable(context.Background(), "nope", &fakeRepo{}, ddl.TableDef{})
	if err == nil {
		t.Fatalf("EnsureTable error = nil for unregistered kind")
	}
}

func TestEnsureTable_Dispatch(t *testing.T) {
	t.Parallel()

	called := false
	RegisterDDL("dispatch", func(context.Context, Repository, ddl.TableDef) error {
		called = true
		return nil
	})
	if err := EnsureTable(context.Background(), "dispatch", &fakeRepo{}, ddl.TableDef{}); err != nil {
		t.Fatalf("EnsureTable error: %v", err)
	}
	if !called {
		t.Fatalf("registered bootstrapper was not called")
	}
}
