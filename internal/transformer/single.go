package transformer

import (
	"context"
	"fmt"
	"time"

	"fwetl/internal/datasource"
	"fwetl/internal/metrics"
	"fwetl/internal/parser/fixedwidth"
	"fwetl/internal/schema"
)

// SingleLayout parses every line of Source with one schema.
type SingleLayout struct {
	Name      string
	Schema    schema.Schema
	Source    datasource.Source
	Reference datasource.Source
	Encoding  string
	Strict    bool
	SkipBlank bool
}

// Run implements Transform.
func (s SingleLayout) Run(ctx context.Context) (Result, error) {
	p, err := fixedwidth.New(s.Schema, fixedwidth.Options{Encoding: s.Encoding, Strict: s.Strict, SkipBlank: s.SkipBlank})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", s.Name, err)
	}

	start := time.Now()
	rs, err := parseSource(ctx, p, s.Source)
	metrics.RecordStep(s.Name, "parse", err, time.Since(start))
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", s.Name, err)
	}
	metrics.RecordRow(s.Name, "parsed", int64(rs.Len()))

	out, err := check(ctx, s.Name, rs, s.Reference)
	if err != nil {
		return Result{}, err
	}
	return Result{Name: s.Name, Set: rs, Validation: out}, nil
}
