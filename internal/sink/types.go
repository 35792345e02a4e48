package sink

import (
	"fmt"

	"fwetl/internal/ddl"
	"fwetl/pkg/records"
)

// TypeMap maps a unified column kind to a storage type. Values are logical
// types ("integer", "real", "text") that each dialect maps to SQL, or
// explicit SQL types passed through unchanged.
type TypeMap map[records.Kind]string

// DefaultTypeMap stores columns holding fractional numbers as real and
// everything else as text, whole-number and all-null columns included.
var DefaultTypeMap = TypeMap{
	records.KindInteger: ddl.LogicalText,
	records.KindReal:    ddl.LogicalReal,
	records.KindText:    ddl.LogicalText,
	records.KindNull:    ddl.LogicalText,
}

// ColumnType is a column name with its storage type.
type ColumnType struct {
	Name        string
	StorageType string
}

// UnsupportedColumnTypeError reports a column whose kind has no entry in the
// type map.
type UnsupportedColumnTypeError struct {
	Column string
	Kind   records.Kind
}

func (e *UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf("sink: column %q has kind %s with no storage type", e.Column, e.Kind)
}

// IntegerTypeMap is DefaultTypeMap with whole-number columns stored as
// integers.
var IntegerTypeMap = TypeMap{
	records.KindInteger: ddl.LogicalInteger,
	records.KindReal:    ddl.LogicalReal,
	records.KindText:    ddl.LogicalText,
	records.KindNull:    ddl.LogicalText,
}

// ColumnTypes returns the storage type of every column of rs, in order.
func ColumnTypes(rs records.RecordSet, tm TypeMap) ([]ColumnType, error) {
	out := make([]ColumnType, len(rs.Columns))
	for i, c := range rs.Columns {
		t, ok := tm[c.Kind]
		if !ok || t == "" {
			return nil, &UnsupportedColumnTypeError{Column: c.Name, Kind: c.Kind}
		}
		out[i] = ColumnType{Name: c.Name, StorageType: t}
	}
	return out, nil
}

// rowValues returns the driver values of rs. Numeric cells of a column stored
// as text are sent in their artifact form so every backend receives a string.
func rowValues(rs records.RecordSet, types []ColumnType) [][]any {
	asText := make([]bool, len(types))
	for i, ct := range types {
		asText[i] = ct.StorageType == ddl.LogicalText && rs.Columns[i].Kind != records.KindText
	}
	out := make([][]any, len(rs.Rows))
	for r, row := range rs.Rows {
		vals := make([]any, len(row))
		for i, v := range row {
			if asText[i] && !v.IsNull() {
				vals[i] = v.String()
			} else {
				vals[i] = v.Any()
			}
		}
		out[r] = vals
	}
	return out
}
