// Package datasource defines where raw input bytes come from.
//
// A Source hands out a fresh, independent stream on every Open call. The dual
// layout transform relies on this: it reads the same file twice, once per
// partition, and each read must own its own cursor.
package datasource

import (
	"bytes"
	"context"
	"io"
)

// Source opens a new reader over the underlying data.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Named is implemented by sources that can describe themselves in logs.
type Named interface {
	Name() string
}

// NameOf returns the source name when src implements Named, otherwise "".
func NameOf(src Source) string {
	if n, ok := src.(Named); ok {
		return n.Name()
	}
	return ""
}

// Bytes is an in-memory Source. Every Open returns a reader positioned at the
// start of the same immutable payload.
type Bytes struct {
	name string
	data []byte
}

// FromBytes returns an in-memory Source over a copy of data.
func FromBytes(name string, data []byte) *Bytes {
	return &Bytes{name: name, data: bytes.Clone(data)}
}

// FromString returns an in-memory Source over s.
func FromString(name, s string) *Bytes {
	return &Bytes{name: name, data: []byte(s)}
}

// Name implements Named.
func (b *Bytes) Name() string { return b.name }

// Open implements Source.
func (b *Bytes) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}
