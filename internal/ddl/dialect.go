package ddl

import (
	"fmt"
	"strings"
)

// Logical column types produced by the sink's type map.
const (
	LogicalInteger = "integer"
	LogicalReal    = "real"
	LogicalText    = "text"
)

// Dialect holds the per-database differences the DDL renderer cares about:
// identifier quoting and logical-to-SQL type names.
type Dialect struct {
	Name  string
	open  string
	close string
	types map[string]string
}

// Built-in dialects, keyed by storage kind in Dialects.
var (
	SQLite = Dialect{Name: "sqlite", open: `"`, close: `"`, types: map[string]string{
		LogicalInteger: "INTEGER",
		LogicalReal:    "REAL",
		LogicalText:    "TEXT",
	}}
	Postgres = Dialect{Name: "postgres", open: `"`, close: `"`, types: map[string]string{
		LogicalInteger: "BIGINT",
		LogicalReal:    "DOUBLE PRECISION",
		LogicalText:    "TEXT",
	}}
	MSSQL = Dialect{Name: "mssql", open: `[`, close: `]`, types: map[string]string{
		LogicalInteger: "BIGINT",
		LogicalReal:    "FLOAT",
		LogicalText:    "NVARCHAR(MAX)",
	}}
	MySQL = Dialect{Name: "mysql", open: "`", close: "`", types: map[string]string{
		LogicalInteger: "BIGINT",
		LogicalReal:    "DOUBLE",
		LogicalText:    "LONGTEXT",
	}}
	DuckDB = Dialect{Name: "duckdb", open: `"`, close: `"`, types: map[string]string{
		LogicalInteger: "BIGINT",
		LogicalReal:    "DOUBLE",
		LogicalText:    "VARCHAR",
	}}
)

// Dialects maps storage kinds to their dialect.
var Dialects = map[string]Dialect{
	SQLite.Name:   SQLite,
	Postgres.Name: Postgres,
	MSSQL.Name:    MSSQL,
	MySQL.Name:    MySQL,
	DuckDB.Name:   DuckDB,
}

// DialectFor returns the dialect registered for a storage kind.
func DialectFor(kind string) (Dialect, error) {
	d, ok := Dialects[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return Dialect{}, fmt.Errorf("ddl: no dialect for storage kind %q", kind)
	}
	return d, nil
}

// MapType maps a logical type ("integer", "real", "text") to the dialect's
// SQL type. Anything else is treated as an explicit SQL type and returned
// unchanged.
func (d Dialect) MapType(logical string) string {
	if t, ok := d.types[strings.ToLower(strings.TrimSpace(logical))]; ok {
		return t
	}
	return strings.TrimSpace(logical)
}

// QuoteIdent quotes a single identifier, doubling any embedded closing quote.
func (d Dialect) QuoteIdent(id string) string {
	return d.open + strings.ReplaceAll(id, d.close, d.close+d.close) + d.close
}

// QuoteFQN quotes each dot-separated segment of a table name.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.QuoteIdent(p))
	}
	return strings.Join(out, ".")
}
