// Package fixedwidth slices fixed-width lines into typed records.
//
// Field offsets are the running sum of the schema widths, counted in
// characters (runes), not bytes. Every field is trimmed and classified on its
// own; Parse then unifies the kinds per column.
package fixedwidth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode/utf8"

	"fwetl/internal/schema"
	"fwetl/pkg/records"
)

const utf8BOM = "\uFEFF"

// maxLine bounds a single input line.
const maxLine = 4 << 20

// Options tunes a Parser.
type Options struct {
	// Selector keeps lines by 0-based index. Nil keeps all lines.
	Selector RowSelector
	// Strict rejects lines longer than the schema's total width.
	Strict bool
	// Encoding of the input: utf-8 (default), latin1 or cp1252.
	Encoding string
	// SkipBlank drops empty lines before they are indexed.
	SkipBlank bool
}

// Parser turns lines into records for one schema.
type Parser struct {
	schema schema.Schema
	widths []int
	total  int
	opt    Options
}

// New returns a parser for s. The schema must pass Validate.
func New(s schema.Schema, opt Options) (*Parser, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if opt.Selector == nil {
		opt.Selector = AllRows
	}
	if _, err := decoder(strings.NewReader(""), opt.Encoding); err != nil {
		return nil, err
	}
	return &Parser{
		schema: s,
		widths: s.Widths(),
		total:  s.TotalWidth(),
		opt:    opt,
	}, nil
}

// Schema returns the schema the parser was built with.
func (p *Parser) Schema() schema.Schema { return p.schema }

// Records yields one Record per selected line. The sequence stops after the
// first error, which is yielded with a nil Record.
func (p *Parser) Records(ctx context.Context, r io.Reader) iter.Seq2[records.Record, error] {
	return func(yield func(records.Record, error) bool) {
		dr, err := decoder(r, p.opt.Encoding)
		if err != nil {
			yield(nil, err)
			return
		}
		sc := bufio.NewScanner(dr)
		sc.Buffer(make([]byte, 0, 64*1024), maxLine)

		idx := 0
		for first := true; sc.Scan(); first = false {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			line := strings.TrimSuffix(sc.Text(), "\r")
			if first {
				line = strings.TrimPrefix(line, utf8BOM)
			}
			if p.opt.SkipBlank && strings.TrimSpace(line) == "" {
				continue
			}
			i := idx
			idx++
			if !p.opt.Selector(i) {
				continue
			}
			rec, err := p.slice(i, line)
			if !yield(rec, err) || err != nil {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(nil, fmt.Errorf("fixedwidth: read: %w", err))
		}
	}
}

// Parse reads every selected line and returns the unified record set.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (records.RecordSet, error) {
	rs := records.New(p.schema.Names()...)
	for rec, err := range p.Records(ctx, r) {
		if err != nil {
			return records.RecordSet{}, err
		}
		rs.Rows = append(rs.Rows, rec)
	}
	return rs.Unify(), nil
}

func (p *Parser) slice(index int, line string) (records.Record, error) {
	n := utf8.RuneCountInString(line)
	if n < p.total || (p.opt.Strict && n > p.total) {
		return nil, &RowWidthError{Line: index, Want: p.total, Got: n}
	}

	rec := make(records.Record, len(p.widths))
	rest := line
	for c, w := range p.widths {
		end := runeOffset(rest, w)
		rec[c] = records.Parse(rest[:end])
		rest = rest[end:]
	}
	return rec, nil
}

// runeOffset returns the byte offset just past the first n runes of s.
func runeOffset(s string, n int) int {
	off := 0
	for range n {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off
}
