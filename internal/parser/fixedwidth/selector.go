package fixedwidth

import (
	"fmt"
	"strings"
)

// RowSelector decides whether the 0-based physical line index is kept.
type RowSelector func(index int) bool

// AllRows keeps every line.
func AllRows(int) bool { return true }

// OddRows keeps lines whose index is odd (1, 3, 5, ...).
func OddRows(i int) bool { return i%2 != 0 }

// EvenRows keeps lines whose index is even (0, 2, 4, ...).
func EvenRows(i int) bool { return i%2 == 0 }

// SelectorByName resolves a configured selector name. The empty name means
// "all".
func SelectorByName(name string) (RowSelector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "all":
		return AllRows, nil
	case "odd":
		return OddRows, nil
	case "even":
		return EvenRows, nil
	default:
		return nil, fmt.Errorf("fixedwidth: unknown row selector %q (want all, odd or even)", name)
	}
}
