package schema

import "fmt"

// SchemaFormatError reports a malformed or incomplete schema descriptor.
//
// Row is the 0-based data row of the descriptor (-1 when the problem is not
// tied to a row, e.g. a missing header). Column names the descriptor column
// involved, when known.
type SchemaFormatError struct {
	Row    int
	Column string
	Reason string
}

func (e *SchemaFormatError) Error() string {
	switch {
	case e.Row < 0 && e.Column == "":
		return "schema: " + e.Reason
	case e.Row < 0:
		return fmt.Sprintf("schema: column %q: %s", e.Column, e.Reason)
	default:
		return fmt.Sprintf("schema: row %d, column %q: %s", e.Row, e.Column, e.Reason)
	}
}
