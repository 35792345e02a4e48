// Package sink hands a final record set to a relational table: it derives
// the column types, replaces the destination table, and streams the rows
// through the batched loader.
package sink

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fwetl/internal/ddl"
	"fwetl/internal/metrics"
	"fwetl/internal/storage"
	"fwetl/pkg/records"
)

// DefaultBatchSize is used when Sink.BatchSize is not positive.
const DefaultBatchSize = 1000

// Sink writes record sets into Table through Repo.
type Sink struct {
	// Kind selects the DDL bootstrapper (the storage kind of Repo).
	Kind      string
	Table     string
	Repo      storage.Repository
	BatchSize int
	// TypeMap defaults to DefaultTypeMap.
	TypeMap TypeMap
	// Job labels metrics.
	Job string
}

// Write replaces Table with the contents of rs and returns the number of rows
// inserted. Any previous table of the same name is dropped.
func (s Sink) Write(ctx context.Context, rs records.RecordSet) (int64, error) {
	tm := s.TypeMap
	if tm == nil {
		tm = DefaultTypeMap
	}
	batch := s.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	types, err := ColumnTypes(rs, tm)
	if err != nil {
		return 0, err
	}
	td := ddl.TableDef{FQN: s.Table, Columns: make([]ddl.ColumnDef, len(types))}
	for i, ct := range types {
		td.Columns[i] = ddl.ColumnDef{Name: ct.Name, SQLType: ct.StorageType, Nullable: true}
	}

	start := time.Now()
	err = storage.EnsureTable(ctx, s.Kind, s.Repo, td)
	metrics.RecordStep(s.Job, "ddl", err, time.Since(start))
	if err != nil {
		return 0, fmt.Errorf("sink: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rows := make(chan []any, batch)
	go func() {
		defer close(rows)
		for _, r := range rowValues(rs, types) {
			select {
			case rows <- r:
			case <-ctx.Done():
				return
			}
		}
	}()

	start = time.Now()
	n, err := storage.LoadBatches(ctx, rs.ColumnNames(), rows, batch, s.Repo.CopyFrom)
	metrics.RecordStep(s.Job, "load", err, time.Since(start))
	metrics.RecordRow(s.Job, "inserted", n)
	metrics.RecordBatches(s.Job, (n+int64(batch)-1)/int64(batch))
	if err != nil {
		return n, fmt.Errorf("sink: load %s: %w", s.Table, err)
	}
	zap.L().Named("sink").Info("rows inserted",
		zap.String("table", s.Table),
		zap.Int64("rows", n),
		zap.Duration("took", time.Since(start)))
	return n, nil
}
