// Package validation compares a produced record set with a known-good
// reference. A mismatch is a result, never an error.
package validation

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"

	"fwetl/internal/datasource"
	csvheader "fwetl/internal/parser/csv"
	"fwetl/internal/schema"
	"fwetl/pkg/records"
)

// Outcome is the PASS/FAIL verdict of a comparison.
type Outcome struct {
	Pass bool
	// Reason names the first difference. It is empty on PASS.
	Reason string
}

// String returns "PASS" or "FAIL".
func (o Outcome) String() string {
	if o.Pass {
		return "PASS"
	}
	return "FAIL"
}

// Compare reports whether produced and reference hold the same columns in
// the same order and the same rows, cell by cell. Nulls compare equal, and
// Integer and Real cells compare by numeric value.
func Compare(produced, reference records.RecordSet) Outcome {
	pc, rc := produced.ColumnNames(), reference.ColumnNames()
	if !slices.Equal(pc, rc) {
		return Outcome{Reason: fmt.Sprintf("columns differ: %v vs %v", pc, rc)}
	}
	if produced.Len() != reference.Len() {
		return Outcome{Reason: fmt.Sprintf("row count differs: %d vs %d", produced.Len(), reference.Len())}
	}
	for i := range produced.Rows {
		for j := range produced.Columns {
			if !produced.Rows[i][j].Equal(reference.Rows[i][j]) {
				return Outcome{Reason: fmt.Sprintf("row %d column %q: %q vs %q",
					i, pc[j], produced.Rows[i][j].String(), reference.Rows[i][j].String())}
			}
		}
	}
	return Outcome{Pass: true}
}

// ReadReference reads a CSV reference: a header row of column names followed
// by data rows. Cells are classified and unified exactly as the fixed-width
// parser does, so both sides of Compare carry comparable kinds.
func ReadReference(r io.Reader) (records.RecordSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0

	header, err := csvheader.ReadHeader(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return records.RecordSet{}, errors.New("validation: reference is empty")
		}
		return records.RecordSet{}, fmt.Errorf("validation: read reference header: %w", err)
	}
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = schema.NormalizeName(h)
	}

	rs := records.New(names...)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records.RecordSet{}, fmt.Errorf("validation: read reference: %w", err)
		}
		row := make(records.Record, len(rec))
		for i, f := range rec {
			row[i] = records.Parse(f)
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs.Unify(), nil
}

// LoadReference opens src and reads it with ReadReference.
func LoadReference(ctx context.Context, src datasource.Source) (records.RecordSet, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return records.RecordSet{}, fmt.Errorf("validation: %w", err)
	}
	defer rc.Close()
	return ReadReference(rc)
}
