package ddl

import (
	"strconv"
	"strings"
	"testing"
)

// TestBuildCreateTableSQL verifies the rendered CREATE TABLE statements per
// dialect and the errors for invalid definitions.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		dialect     Dialect
		def         TableDef
		wantSQL     string
		wantErr     bool
		errContains string
	}{
		{
			name:        "empty FQN returns error",
			dialect:     SQLite,
			def:         TableDef{FQN: "", Columns: []ColumnDef{{Name: "id", SQLType: "INTEGER"}}},
			wantErr:     true,
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns returns error",
			dialect:     SQLite,
			def:         TableDef{FQN: "t"},
			wantErr:     true,
			errContains: "at least one column is required",
		},
		{
			name:        "column with empty name returns error",
			dialect:     SQLite,
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: " ", SQLType: "INTEGER"}}},
			wantErr:     true,
			errContains: "column with empty name",
		},
		{
			name:        "column with empty type returns error",
			dialect:     SQLite,
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			wantErr:     true,
			errContains: "missing SQLType",
		},
		{
			name:    "sqlite nullable columns",
			dialect: SQLite,
			def: TableDef{FQN: "task2", Columns: []ColumnDef{
				{Name: "pccn", SQLType: "TEXT", Nullable: true},
				{Name: "qty", SQLType: "REAL", Nullable: true},
			}},
			wantSQL: "CREATE TABLE \"task2\" (\n  \"pccn\" TEXT,\n  \"qty\" REAL\n);",
		},
		{
			name:    "not null column",
			dialect: Postgres,
			def:     TableDef{FQN: "public.t", Columns: []ColumnDef{{Name: "id", SQLType: "BIGINT"}}},
			wantSQL: "CREATE TABLE \"public\".\"t\" (\n  \"id\" BIGINT NOT NULL\n);",
		},
		{
			name:    "mssql brackets",
			dialect: MSSQL,
			def:     TableDef{FQN: "dbo.t", Columns: []ColumnDef{{Name: "a]b", SQLType: "FLOAT", Nullable: true}}},
			wantSQL: "CREATE TABLE [dbo].[t] (\n  [a]]b] FLOAT\n);",
		},
		{
			name:    "mysql backticks",
			dialect: MySQL,
			def:     TableDef{FQN: "t", Columns: []ColumnDef{{Name: "part number", SQLType: "LONGTEXT", Nullable: true}}},
			wantSQL: "CREATE TABLE `t` (\n  `part number` LONGTEXT\n);",
		},
		{
			name:    "whitespace around names and types is trimmed",
			dialect: DuckDB,
			def: TableDef{FQN: "  main.my_table  ", Columns: []ColumnDef{
				{Name: "  col1  ", SQLType: "  DOUBLE  ", Nullable: true},
			}},
			wantSQL: "CREATE TABLE \"main\".\"my_table\" (\n  \"col1\" DOUBLE\n);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotSQL, err := tt.dialect.BuildCreateTableSQL(tt.def)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("BuildCreateTableSQL() error = nil, want non-nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("BuildCreateTableSQL() error = %q, want substring %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildCreateTableSQL() unexpected error = %v", err)
			}
			if gotSQL != tt.wantSQL {
				t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", gotSQL, tt.wantSQL)
			}
		})
	}
}

func TestBuildDropTableSQL(t *testing.T) {
	t.Parallel()

	got, err := SQLite.BuildDropTableSQL("task2")
	if err != nil {
		t.Fatalf("BuildDropTableSQL() error = %v", err)
	}
	if want := `DROP TABLE IF EXISTS "task2";`; got != want {
		t.Fatalf("BuildDropTableSQL() = %q, want %q", got, want)
	}
	if _, err := MSSQL.BuildDropTableSQL("  "); err == nil {
		t.Fatalf("BuildDropTableSQL(blank) error = nil")
	}
}

func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d       Dialect
		logical string
		want    string
	}{
		{SQLite, "real", "REAL"},
		{SQLite, "Integer", "INTEGER"},
		{SQLite, "text", "TEXT"},
		{Postgres, "real", "DOUBLE PRECISION"},
		{MSSQL, "text", "NVARCHAR(MAX)"},
		{MySQL, "integer", "BIGINT"},
		{DuckDB, "text", "VARCHAR"},
		{Postgres, "numeric(10,2)", "numeric(10,2)"},
	}
	for _, tt := range tests {
		if got := tt.d.MapType(tt.logical); got != tt.want {
			t.Fatalf("%s.MapType(%q) = %q, want %q", tt.d.Name, tt.logical, got, tt.want)
		}
	}
}

func TestDialectFor(t *testing.T) {
	t.Parallel()

	for kind := range Dialects {
		d, err := DialectFor(strings.ToUpper(kind))
		if err != nil || d.Name != kind {
			t.Fatalf("DialectFor(%q) = %v, %v", kind, d.Name, err)
		}
	}
	if _, err := DialectFor("oracle"); err == nil {
		t.Fatalf("DialectFor(oracle) error = nil")
	}
}

// benchmarkSink keeps benchmark results alive.
var benchmarkSink string

// BenchmarkBuildCreateTableSQL_LargeSchema measures rendering a wide table.
func BenchmarkBuildCreateTableSQL_LargeSchema(b *testing.B) {
	cols := make([]ColumnDef, 0, 64)
	for i := 0; i < 64; i++ {
		cols = append(cols, ColumnDef{
			Name:     "col_" + strconv.Itoa(i),
			SQLType:  "TEXT",
			Nullable: true,
		})
	}
	def := TableDef{FQN: "large_table", Columns: cols}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sql, err := SQLite.BuildCreateTableSQL(def)
		if err != nil {
			b.Fatalf("BuildCreateTableSQL() error = %v", err)
		}
		benchmarkSink = sql
	}
}
