// Package schema loads and reshapes the column-width descriptors that drive
// fixed-width parsing.
//
// A Schema is an ordered list of columns; the order defines each field's
// offset (the cumulative width of the columns before it). Schemas are values:
// every reshaping helper (Partition, WithTrailingPlaceholder) returns a new
// Schema and leaves its receiver untouched.
package schema

import (
	"fmt"
	"slices"
)

// Partition tags found in the CFI column of a dual-layout descriptor.
const (
	TagA    = "A"
	TagB    = "B"
	TagBoth = "A and B"
)

// DefaultPlaceholder is the name given to the trailing filler column of a
// dual-layout descriptor.
const DefaultPlaceholder = "blank"

// ColumnSpec describes one fixed-width field.
type ColumnSpec struct {
	// Name is the normalized (lowercase) column name.
	Name string `yaml:"name"`
	// Width is the field width in characters.
	Width int `yaml:"width"`
	// Tag is the partition tag ("A", "B", "A and B"), or empty.
	Tag string `yaml:"cfi"`
	// Placeholder marks a synthetic column that only consumes width.
	Placeholder bool `yaml:"placeholder"`
}

// Schema is an ordered, immutable list of column specs.
type Schema struct {
	Columns []ColumnSpec
}

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.Columns) }

// Names returns the column names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Widths returns the column widths in order.
func (s Schema) Widths() []int {
	out := make([]int, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Width
	}
	return out
}

// TotalWidth returns the sum of all widths: the minimum line length a record
// must have.
func (s Schema) TotalWidth() int {
	n := 0
	for _, c := range s.Columns {
		n += c.Width
	}
	return n
}

// Has reports whether a column with the given name exists.
func (s Schema) Has(name string) bool {
	return slices.ContainsFunc(s.Columns, func(c ColumnSpec) bool { return c.Name == name })
}

// Placeholders returns the names of placeholder columns.
func (s Schema) Placeholders() []string {
	var out []string
	for _, c := range s.Columns {
		if c.Placeholder {
			out = append(out, c.Name)
		}
	}
	return out
}

// Validate checks that the schema can drive a parser: at least one column,
// positive widths, and unique non-empty names.
func (s Schema) Validate() error {
	if len(s.Columns) == 0 {
		return &SchemaFormatError{Row: -1, Reason: "schema has no columns"}
	}
	seen := make(map[string]int, len(s.Columns))
	for i, c := range s.Columns {
		if c.Name == "" {
			return &SchemaFormatError{Row: i, Column: "name", Reason: "empty column name"}
		}
		if c.Width <= 0 {
			return &SchemaFormatError{Row: i, Column: "width", Reason: fmt.Sprintf("width %d for %q must be positive", c.Width, c.Name)}
		}
		if j, dup := seen[c.Name]; dup {
			return &SchemaFormatError{Row: i, Column: "name", Reason: fmt.Sprintf("duplicate column %q (also row %d)", c.Name, j)}
		}
		seen[c.Name] = i
	}
	return nil
}

// Partition returns a new schema holding the columns whose tag is one of
// tags, in their original order. Columns with no tag belong to no partition.
func (s Schema) Partition(tags ...string) Schema {
	out := Schema{}
	for _, c := range s.Columns {
		if c.Tag != "" && slices.Contains(tags, c.Tag) {
			out.Columns = append(out.Columns, c)
		}
	}
	return out
}

// WithTrailingPlaceholder returns a copy of s whose last column is renamed to
// name and flagged as a placeholder. An empty name uses DefaultPlaceholder.
// The receiver is not modified.
func (s Schema) WithTrailingPlaceholder(name string) Schema {
	if name == "" {
		name = DefaultPlaceholder
	}
	out := Schema{Columns: slices.Clone(s.Columns)}
	if n := len(out.Columns); n > 0 {
		out.Columns[n-1].Name = name
		out.Columns[n-1].Placeholder = true
	}
	return out
}
