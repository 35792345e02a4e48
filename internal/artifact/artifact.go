// Package artifact encodes record sets into output files (CSV or Parquet) and
// writes them to a Store. Encoding is deterministic: the same record set
// always yields the same bytes and digest.
package artifact

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"fwetl/internal/metrics"
	"fwetl/pkg/records"
)

// Format names an artifact encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// FormatFromPath picks the format from the destination extension, defaulting
// to CSV.
func FormatFromPath(location string) Format {
	if strings.EqualFold(path.Ext(location), ".parquet") {
		return FormatParquet
	}
	return FormatCSV
}

// Result describes a written artifact.
type Result struct {
	Location string
	Bytes    int
	// Digest is the xxh3-64 hash of the encoded bytes.
	Digest uint64
}

// Encode renders rs in the given format.
func Encode(rs records.RecordSet, format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatCSV, "":
		err = encodeCSV(&buf, rs)
	case FormatParquet:
		err = encodeParquet(&buf, rs)
	default:
		return nil, fmt.Errorf("artifact: unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes rs and hands it to store at location. An empty format is
// inferred from the location. job labels metrics.
func Write(ctx context.Context, store Store, job string, rs records.RecordSet, location string, format Format) (Result, error) {
	if format == "" {
		format = FormatFromPath(location)
	}
	start := time.Now()
	data, err := Encode(rs, format)
	if err == nil {
		err = store.Write(ctx, location, bytes.NewReader(data))
	}
	metrics.RecordStep(job, "artifact", err, time.Since(start))
	if err != nil {
		return Result{}, fmt.Errorf("artifact %s: %w", location, err)
	}
	metrics.RecordRow(job, "written", int64(rs.Len()))

	res := Result{Location: location, Bytes: len(data), Digest: xxh3.Hash(data)}
	zap.L().Named("artifact").Info("output to",
		zap.String("location", location),
		zap.String("format", string(format)),
		zap.Int("bytes", res.Bytes),
		zap.String("digest", fmt.Sprintf("%016x", res.Digest)))
	return res, nil
}

func encodeCSV(buf *bytes.Buffer, rs records.RecordSet) error {
	w := csv.NewWriter(buf)
	if err := w.Write(rs.ColumnNames()); err != nil {
		return err
	}
	rec := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, v := range row {
			rec[i] = v.String()
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ColumnOrderKey is the Parquet key/value metadata entry holding the record
// set's column names, comma separated, in their original order. Parquet groups
// store their fields sorted by name.
const ColumnOrderKey = "fwetl.column_order"

// parquetSchema builds an all-optional schema whose leaf types follow the
// unified column kinds.
func parquetSchema(rs records.RecordSet) *parquet.Schema {
	root := make(parquet.Group, len(rs.Columns))
	for _, c := range rs.Columns {
		var node parquet.Node
		switch c.Kind {
		case records.KindInteger:
			node = parquet.Leaf(parquet.Int64Type)
		case records.KindReal:
			node = parquet.Leaf(parquet.DoubleType)
		default:
			node = parquet.String()
		}
		root[c.Name] = parquet.Optional(node)
	}
	return parquet.NewSchema("record", root)
}

func encodeParquet(buf *bytes.Buffer, rs records.RecordSet) error {
	pw := parquet.NewGenericWriter[map[string]any](buf,
		parquetSchema(rs),
		parquet.KeyValueMetadata(ColumnOrderKey, strings.Join(rs.ColumnNames(), ",")),
	)
	rows := make([]map[string]any, len(rs.Rows))
	for r, row := range rs.Rows {
		m := make(map[string]any, len(row))
		for i, v := range row {
			m[rs.Columns[i].Name] = v.Any()
		}
		rows[r] = m
	}
	if _, err := pw.Write(rows); err != nil {
		pw.Close()
		return fmt.Errorf("writing parquet rows: %w", err)
	}
	return pw.Close()
}
