package ddl

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type, already mapped for the dialect
//   - Nullable: whether NULL is allowed
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef holds the table name and an ordered list of columns. The FQN may
// be dotted (e.g., "main.task2"); each segment is quoted separately.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
