package transformer

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fwetl/internal/datasource"
	"fwetl/internal/metrics"
	"fwetl/internal/parser/fixedwidth"
	"fwetl/internal/schema"
	"fwetl/pkg/records"
)

// Defaults for DualLayout.
const (
	DefaultTagColumn = "cfi"
)

// DefaultKeys is the composite join key of the two layouts.
var DefaultKeys = []string{"pccn", "plisn"}

// DualLayout reconstructs records from a file that interleaves layout A and
// layout B line by line. Columns tagged "A and B" appear in both layouts.
type DualLayout struct {
	Name      string
	Schema    schema.Schema
	Source    datasource.Source
	Reference datasource.Source
	Encoding  string
	Strict    bool
	// SkipBlank drops empty lines before they are assigned to a layout.
	SkipBlank bool

	// TagColumn is dropped from both halves after parsing. Default "cfi".
	TagColumn string
	// Placeholder names the trailing filler column. It is dropped from the
	// B half only. Default schema.DefaultPlaceholder.
	Placeholder string
	// Keys are the join columns. Default DefaultKeys.
	Keys []string
	// ASelector and BSelector pick the lines of each layout. Defaults
	// fixedwidth.OddRows and fixedwidth.EvenRows.
	ASelector fixedwidth.RowSelector
	BSelector fixedwidth.RowSelector
}

func (d DualLayout) withDefaults() DualLayout {
	if d.TagColumn == "" {
		d.TagColumn = DefaultTagColumn
	}
	if d.Placeholder == "" {
		d.Placeholder = schema.DefaultPlaceholder
	}
	if len(d.Keys) == 0 {
		d.Keys = DefaultKeys
	}
	if d.ASelector == nil {
		d.ASelector = fixedwidth.OddRows
	}
	if d.BSelector == nil {
		d.BSelector = fixedwidth.EvenRows
	}
	return d
}

// Run implements Transform.
func (d DualLayout) Run(ctx context.Context) (Result, error) {
	d = d.withDefaults()
	log := zap.L().Named("transformer")

	full := d.Schema.WithTrailingPlaceholder(d.Placeholder)
	opts := fixedwidth.Options{Encoding: d.Encoding, Strict: d.Strict, SkipBlank: d.SkipBlank}
	opts.Selector = d.ASelector
	pa, err := fixedwidth.New(full.Partition(schema.TagA, schema.TagBoth), opts)
	if err != nil {
		return Result{}, fmt.Errorf("%s: partition A: %w", d.Name, err)
	}
	opts.Selector = d.BSelector
	pb, err := fixedwidth.New(full.Partition(schema.TagB, schema.TagBoth), opts)
	if err != nil {
		return Result{}, fmt.Errorf("%s: partition B: %w", d.Name, err)
	}

	var a, b records.RecordSet
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rs, err := parseSource(gctx, pa, d.Source)
		if err != nil {
			return fmt.Errorf("partition A: %w", err)
		}
		a = rs
		return nil
	})
	g.Go(func() error {
		rs, err := parseSource(gctx, pb, d.Source)
		if err != nil {
			return fmt.Errorf("partition B: %w", err)
		}
		b = rs
		return nil
	})
	err = g.Wait()
	metrics.RecordStep(d.Name, "parse", err, time.Since(start))
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", d.Name, err)
	}
	log.Debug("partitions parsed",
		zap.String("transform", d.Name),
		zap.Int("rows_a", a.Len()),
		zap.Int("rows_b", b.Len()))
	metrics.RecordRow(d.Name, "parsed", int64(a.Len()+b.Len()))

	left := records.PartitionedRecordSet{Partition: schema.TagA, Set: a.Drop(d.TagColumn), Keys: d.Keys}
	right := records.PartitionedRecordSet{Partition: schema.TagB, Set: b.Drop(d.TagColumn, d.Placeholder), Keys: d.Keys}

	start = time.Now()
	merged, err := OuterJoin(left, right)
	metrics.RecordStep(d.Name, "merge", err, time.Since(start))
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", d.Name, err)
	}
	metrics.RecordRow(d.Name, "merged", int64(merged.Len()))

	out, err := check(ctx, d.Name, merged, d.Reference)
	if err != nil {
		return Result{}, err
	}
	return Result{Name: d.Name, Set: merged, Validation: out}, nil
}

func keyIndexes(p records.PartitionedRecordSet) ([]int, error) {
	idx := make([]int, len(p.Keys))
	for i, k := range p.Keys {
		j := p.Set.Index(k)
		if j < 0 {
			return nil, &MissingJoinKeyError{Partition: p.Partition, Key: k}
		}
		idx[i] = j
	}
	return idx, nil
}

func isKey(idx []int, i int) bool { return slices.Contains(idx, i) }
