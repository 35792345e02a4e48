// Package parser holds the contract shared by the record parsers.
package parser

import (
	"context"
	"io"

	"fwetl/pkg/records"
)

// Parser reads one stream into a unified record set.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) (records.RecordSet, error)
}
