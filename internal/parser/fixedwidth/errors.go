package fixedwidth

import "fmt"

// RowWidthError reports a line whose length does not fit the schema.
// Line is the 0-based physical line index.
type RowWidthError struct {
	Line int
	Want int
	Got  int
}

func (e *RowWidthError) Error() string {
	if e.Got < e.Want {
		return fmt.Sprintf("fixedwidth: line %d is %d characters, schema needs %d", e.Line, e.Got, e.Want)
	}
	return fmt.Sprintf("fixedwidth: line %d is %d characters, schema allows exactly %d", e.Line, e.Got, e.Want)
}
