package transformer

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"fwetl/pkg/records"
)

// Suffixes appended to non-key columns present on both sides of a join.
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

// OuterJoin combines left and right on left.Keys (right must carry the same
// key columns). Every key seen on either side is kept: matched rows combine,
// unmatched rows carry nulls for the other side's columns, and several
// matches on both sides produce every pairing. Null keys match each other.
//
// Output columns are the left columns in order, then the right non-key
// columns. Rows are sorted by key, nulls last, keeping input order within a
// key. The result is unified.
func OuterJoin(left, right records.PartitionedRecordSet) (records.RecordSet, error) {
	right.Keys = left.Keys
	lk, err := keyIndexes(left)
	if err != nil {
		return records.RecordSet{}, err
	}
	rk, err := keyIndexes(right)
	if err != nil {
		return records.RecordSet{}, err
	}
	l, r := left.Set, right.Set

	var rextra []int
	for i := range r.Columns {
		if !isKey(rk, i) {
			rextra = append(rextra, i)
		}
	}
	out := records.RecordSet{}
	shared := make(map[string]bool)
	for i, c := range l.Columns {
		if isKey(lk, i) {
			continue
		}
		for _, j := range rextra {
			if r.Columns[j].Name == c.Name {
				shared[c.Name] = true
			}
		}
	}
	for _, c := range l.Columns {
		if shared[c.Name] {
			c.Name += LeftSuffix
		}
		out.Columns = append(out.Columns, c)
	}
	for _, j := range rextra {
		c := r.Columns[j]
		if shared[c.Name] {
			c.Name += RightSuffix
		}
		out.Columns = append(out.Columns, c)
	}

	lkeys, rkeys := alignKeys(l, lk, r, rk)
	byKey := make(map[string][]int, r.Len())
	for i := range r.Rows {
		k := joinKey(rkeys[i])
		byKey[k] = append(byKey[k], i)
	}

	width := len(out.Columns)
	matched := make([]bool, r.Len())
	for li, lrow := range l.Rows {
		hits := byKey[joinKey(lkeys[li])]
		if len(hits) == 0 {
			row := make(records.Record, width)
			copy(row, lrow)
			for c := len(lrow); c < width; c++ {
				row[c] = records.Null()
			}
			out.Rows = append(out.Rows, row)
			continue
		}
		for _, ri := range hits {
			matched[ri] = true
			row := make(records.Record, 0, width)
			row = append(row, lrow...)
			for _, j := range rextra {
				row = append(row, r.Rows[ri][j])
			}
			out.Rows = append(out.Rows, row)
		}
	}
	for ri, rrow := range r.Rows {
		if matched[ri] {
			continue
		}
		row := make(records.Record, width)
		for c := range l.Columns {
			row[c] = records.Null()
		}
		for n, c := range lk {
			row[c] = rrow[rk[n]]
		}
		for n, j := range rextra {
			row[len(l.Columns)+n] = rrow[j]
		}
		out.Rows = append(out.Rows, row)
	}

	out = out.Unify()
	slices.SortStableFunc(out.Rows, func(a, b records.Record) int {
		for _, c := range lk {
			if n := compareValues(a[c], b[c]); n != 0 {
				return n
			}
		}
		return 0
	})
	return out, nil
}

// alignKeys returns the key cells of both sides, each key column brought to
// one kind. Partitions are unified on their own, so the same key can be
// Integer on one side and Text on the other; both then compare as Text over
// their source characters.
func alignKeys(l records.RecordSet, lk []int, r records.RecordSet, rk []int) (lkeys, rkeys []records.Record) {
	kinds := make([]records.Kind, len(lk))
	for n := range lk {
		kinds[n] = records.Join(columnKind(l, lk[n]), columnKind(r, rk[n]))
	}
	pick := func(rs records.RecordSet, idx []int) []records.Record {
		out := make([]records.Record, len(rs.Rows))
		for i, row := range rs.Rows {
			key := make(records.Record, len(idx))
			for n, c := range idx {
				key[n] = row[c]
				if kinds[n] == records.KindText {
					key[n] = key[n].As(records.KindText)
				}
			}
			out[i] = key
		}
		return out
	}
	return pick(l, lk), pick(r, rk)
}

// columnKind joins the kinds of every cell in column c.
func columnKind(rs records.RecordSet, c int) records.Kind {
	k := rs.Columns[c].Kind
	for _, row := range rs.Rows {
		k = records.Join(k, row[c].Kind)
	}
	return k
}

// joinKey encodes key cells so equal values map to the same string. Integers
// and whole Reals within int64 range share the exact integer form; other
// Reals use their shortest float form.
func joinKey(key records.Record) string {
	var b strings.Builder
	for _, v := range key {
		switch v.Kind {
		case records.KindNull:
			b.WriteString("n")
		case records.KindInteger:
			b.WriteString("i")
			b.WriteString(strconv.FormatInt(v.Int, 10))
		case records.KindReal:
			if n, ok := wholeInt(v.Float); ok {
				b.WriteString("i")
				b.WriteString(strconv.FormatInt(n, 10))
			} else {
				b.WriteString("f")
				b.WriteString(strconv.FormatFloat(v.Float, 'g', -1, 64))
			}
		default:
			b.WriteString("s")
			b.WriteString(v.Str)
		}
		b.WriteByte(0)
	}
	return b.String()
}

func wholeInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// compareValues orders numbers before text and nulls last.
func compareValues(a, b records.Value) int {
	switch {
	case a.IsNull() || b.IsNull():
		return cmp.Compare(nullRank(a), nullRank(b))
	case a.Kind == records.KindInteger && b.Kind == records.KindInteger:
		return cmp.Compare(a.Int, b.Int)
	case a.IsNumeric() && b.IsNumeric():
		return cmp.Compare(a.Number(), b.Number())
	case a.IsNumeric():
		return -1
	case b.IsNumeric():
		return 1
	default:
		return strings.Compare(a.Str, b.Str)
	}
}

func nullRank(v records.Value) int {
	if v.IsNull() {
		return 1
	}
	return 0
}
