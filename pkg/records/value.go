// Package records defines the tabular data model shared by the parser, the
// transforms, validation, and the sinks.
//
// A cell is a Value: a small tagged variant (Null, Integer, Real, Text) rather
// than an untyped any, so every stage agrees on how a field was classified.
// Classification happens in two passes: Parse classifies each trimmed field on
// its own, and RecordSet.Unify then settles one kind per column and re-coerces
// the cells to it.
package records

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the inferred data kind of a cell or a column.
type Kind uint8

const (
	// KindNull marks an empty field (or a column with only empty fields).
	KindNull Kind = iota
	// KindInteger marks a base-10 integer.
	KindInteger
	// KindReal marks a number with a fractional part or an exponent.
	KindReal
	// KindText marks anything else.
	KindText
)

// String returns the lowercase kind name used in logs and config.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindText:
		return "text"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single typed cell.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	// Str holds the text for KindText cells. For numeric cells parsed from
	// input it keeps the trimmed source text so a later demotion to Text does
	// not reformat the field.
	Str string
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// Int returns an Integer value.
func Int(v int64) Value { return Value{Kind: KindInteger, Int: v, Str: strconv.FormatInt(v, 10)} }

// Real returns a Real value.
func Real(v float64) Value { return Value{Kind: KindReal, Float: v, Str: formatReal(v)} }

// Text returns a Text value.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsNumeric reports whether v is an Integer or a Real.
func (v Value) IsNumeric() bool { return v.Kind == KindInteger || v.Kind == KindReal }

// Number returns the numeric value of v as float64. It is zero for
// non-numeric values.
func (v Value) Number() float64 {
	switch v.Kind {
	case KindInteger:
		return float64(v.Int)
	case KindReal:
		return v.Float
	default:
		return 0
	}
}

// Equal reports whether v and o hold the same value. Nulls are equal to each
// other, and Integer/Real compare by numeric value.
func (v Value) Equal(o Value) bool {
	switch {
	case v.Kind == KindNull || o.Kind == KindNull:
		return v.Kind == o.Kind
	case v.IsNumeric() && o.IsNumeric():
		if v.Kind == KindInteger && o.Kind == KindInteger {
			return v.Int == o.Int
		}
		return v.Number() == o.Number()
	case v.Kind == KindText && o.Kind == KindText:
		return v.Str == o.Str
	default:
		return false
	}
}

// String renders the canonical text form used in artifacts. Real values always
// carry a decimal point (2 renders as "2.0") so the artifact re-reads with the
// same kind. Null renders as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindReal:
		return formatReal(v.Float)
	default:
		return v.Str
	}
}

// Any returns the value as a database/sql driver value: nil, int64, float64
// or string.
func (v Value) Any() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindInteger:
		return v.Int
	case KindReal:
		return v.Float
	default:
		return v.Str
	}
}

// As converts v to kind k. Conversions follow the column join order: Integer
// widens to Real, anything non-null becomes Text using its source text, and
// Null stays Null. Narrowing conversions return v unchanged.
func (v Value) As(k Kind) Value {
	if v.Kind == k || v.Kind == KindNull {
		return v
	}
	switch k {
	case KindReal:
		if v.Kind == KindInteger {
			r := Real(float64(v.Int))
			return r
		}
	case KindText:
		s := v.Str
		if s == "" {
			s = v.String()
		}
		return Text(s)
	}
	return v
}

// Classify reports the kind of a single raw field after trimming surrounding
// whitespace. A field is numeric when the whole trimmed text parses as a
// base-10 number, so zero-padded fields such as "0012" are numbers.
//
//   - empty                                  -> KindNull
//   - [+-]digits                             -> KindInteger (when it fits in int64)
//   - [+-]digits with a fraction or exponent -> KindReal
//   - anything else                          -> KindText ("NaN", "Inf", "0x10", "1,5")
func Classify(raw string) Kind {
	s := strings.TrimSpace(raw)
	if s == "" {
		return KindNull
	}
	if !isDecimal(s) {
		return KindText
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return KindInteger
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return KindReal
	}
	return KindText
}

// Parse classifies raw and returns it coerced to the matching Value.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	switch Classify(s) {
	case KindNull:
		return Null()
	case KindInteger:
		n, _ := strconv.ParseInt(s, 10, 64)
		return Value{Kind: KindInteger, Int: n, Str: s}
	case KindReal:
		f, _ := strconv.ParseFloat(s, 64)
		return Value{Kind: KindReal, Float: f, Str: s}
	default:
		return Text(s)
	}
}

// Join returns the narrowest kind able to hold values of both a and b.
func Join(a, b Kind) Kind {
	if a == KindNull {
		return b
	}
	if b == KindNull {
		return a
	}
	if a == KindText || b == KindText {
		return KindText
	}
	if a == KindReal || b == KindReal {
		return KindReal
	}
	return KindInteger
}

// isDecimal keeps ParseFloat to plain decimal notation: it rules out
// "Inf", "NaN", hex floats and digit separators before parsing.
func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9', c == '+', c == '-', c == '.', c == 'e', c == 'E':
		default:
			return false
		}
	}
	return true
}

func formatReal(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
