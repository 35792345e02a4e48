package records

import (
	"fmt"
	"slices"
)

// Record is one parsed row. Cells are aligned with the column list of the
// RecordSet (or schema) that produced it.
type Record []Value

// Column names a RecordSet column and carries its unified kind.
type Column struct {
	Name string
	Kind Kind
}

// RecordSet is an ordered sequence of rows sharing one column set.
type RecordSet struct {
	Columns []Column
	Rows    []Record
}

// New returns an empty RecordSet with the given column names. Column kinds
// start as KindNull and are settled by Unify.
func New(names ...string) RecordSet {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n}
	}
	return RecordSet{Columns: cols}
}

// Len returns the number of rows.
func (rs RecordSet) Len() int { return len(rs.Rows) }

// ColumnNames returns the ordered column names.
func (rs RecordSet) ColumnNames() []string {
	out := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the named column, or -1.
func (rs RecordSet) Index(name string) int {
	for i, c := range rs.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Append adds a row. It returns an error when the row width does not match
// the column count.
func (rs *RecordSet) Append(r Record) error {
	if len(r) != len(rs.Columns) {
		return fmt.Errorf("records: row has %d cells, want %d", len(r), len(rs.Columns))
	}
	rs.Rows = append(rs.Rows, r)
	return nil
}

// Unify settles one kind per column and returns a new RecordSet whose cells
// are coerced to their column kind. The receiver is not modified.
func (rs RecordSet) Unify() RecordSet {
	kinds := make([]Kind, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, v := range row {
			kinds[i] = Join(kinds[i], v.Kind)
		}
	}

	out := RecordSet{
		Columns: make([]Column, len(rs.Columns)),
		Rows:    make([]Record, len(rs.Rows)),
	}
	for i, c := range rs.Columns {
		out.Columns[i] = Column{Name: c.Name, Kind: kinds[i]}
	}
	for r, row := range rs.Rows {
		nr := make(Record, len(row))
		for i, v := range row {
			nr[i] = v.As(kinds[i])
		}
		out.Rows[r] = nr
	}
	return out
}

// Drop returns a copy of rs without the named columns. Names that are not
// present are ignored.
func (rs RecordSet) Drop(names ...string) RecordSet {
	keep := make([]int, 0, len(rs.Columns))
	for i, c := range rs.Columns {
		if !slices.Contains(names, c.Name) {
			keep = append(keep, i)
		}
	}
	return rs.Select(keep)
}

// Select returns a copy of rs restricted to the given column positions, in
// the given order.
func (rs RecordSet) Select(idx []int) RecordSet {
	out := RecordSet{
		Columns: make([]Column, len(idx)),
		Rows:    make([]Record, len(rs.Rows)),
	}
	for j, i := range idx {
		out.Columns[j] = rs.Columns[i]
	}
	for r, row := range rs.Rows {
		nr := make(Record, len(idx))
		for j, i := range idx {
			nr[j] = row[i]
		}
		out.Rows[r] = nr
	}
	return out
}

// Clone returns a deep copy of rs.
func (rs RecordSet) Clone() RecordSet {
	out := RecordSet{
		Columns: slices.Clone(rs.Columns),
		Rows:    make([]Record, len(rs.Rows)),
	}
	for i, row := range rs.Rows {
		out.Rows[i] = slices.Clone(row)
	}
	return out
}

// Values returns the rows as driver values ([][]any), aligned with Columns.
func (rs RecordSet) Values() [][]any {
	out := make([][]any, len(rs.Rows))
	for r, row := range rs.Rows {
		vals := make([]any, len(row))
		for i, v := range row {
			vals[i] = v.Any()
		}
		out[r] = vals
	}
	return out
}

// PartitionedRecordSet is a RecordSet derived from one physical layout of an
// interleaved file, together with the join keys it carries.
type PartitionedRecordSet struct {
	Partition string
	Set       RecordSet
	Keys      []string
}
