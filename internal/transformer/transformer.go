// Package transformer turns fixed-width input into record sets.
//
// SingleLayout parses one layout over every line. DualLayout reads a file
// whose lines alternate between two layouts that share key columns: it parses
// the file once per layout, each over its own stream, and outer-joins the two
// halves on the shared keys.
package transformer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fwetl/internal/datasource"
	"fwetl/internal/metrics"
	"fwetl/internal/parser"
	"fwetl/internal/validation"
	"fwetl/pkg/records"
)

// Transform produces one record set.
type Transform interface {
	Run(ctx context.Context) (Result, error)
}

// Result is the output of a transform. Validation is nil when no reference
// was configured. A failed validation does not prevent a Result.
type Result struct {
	Name       string
	Set        records.RecordSet
	Validation *validation.Outcome
}

func parseSource(ctx context.Context, p parser.Parser, src datasource.Source) (records.RecordSet, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return records.RecordSet{}, fmt.Errorf("open input: %w", err)
	}
	defer rc.Close()
	return p.Parse(ctx, rc)
}

// check compares rs with the reference, if any, and logs the verdict.
func check(ctx context.Context, name string, rs records.RecordSet, ref datasource.Source) (*validation.Outcome, error) {
	if ref == nil {
		return nil, nil
	}
	start := time.Now()
	want, err := validation.LoadReference(ctx, ref)
	metrics.RecordStep(name, "validate", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	out := validation.Compare(rs, want)
	metrics.RecordValidation(name, out.Pass)
	log := zap.L().Named("transformer")
	if out.Pass {
		log.Info("validation test", zap.String("transform", name), zap.Stringer("result", out))
	} else {
		log.Warn("validation test", zap.String("transform", name), zap.Stringer("result", out), zap.String("reason", out.Reason))
	}
	return &out, nil
}
