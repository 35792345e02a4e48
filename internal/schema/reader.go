package schema

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"fwetl/internal/datasource"
	csvheader "fwetl/internal/parser/csv"
)

// ReadOptions configures which descriptor columns hold the name, width and
// partition tag. Header matching is case-insensitive and ignores surrounding
// whitespace.
type ReadOptions struct {
	// NameHeader is the header of the column-name column. Default "Name".
	NameHeader string
	// WidthHeaders lists accepted headers for the width column, first match
	// wins. Default {"Width", "Column Width"}.
	WidthHeaders []string
	// TagHeader is the header of the partition-tag column. Default "CFI".
	TagHeader string
	// RequireTag makes a missing tag header a SchemaFormatError.
	RequireTag bool
}

func (o ReadOptions) withDefaults() ReadOptions {
	if o.NameHeader == "" {
		o.NameHeader = "Name"
	}
	if len(o.WidthHeaders) == 0 {
		o.WidthHeaders = []string{"Width", "Column Width"}
	}
	if o.TagHeader == "" {
		o.TagHeader = "CFI"
	}
	return o
}

var lower = cases.Lower(language.Und)

// NormalizeName folds a descriptor name into the key used for records:
// trimmed, NFC-normalized and lowercased.
func NormalizeName(s string) string {
	return lower.String(norm.NFC.String(strings.TrimSpace(s)))
}

// NormalizeTag maps tag spellings onto TagA, TagB and TagBoth. Unknown
// values are returned trimmed so they end up in no partition.
func NormalizeTag(s string) string {
	t := strings.Join(strings.Fields(s), " ")
	switch strings.ToUpper(t) {
	case "A":
		return TagA
	case "B":
		return TagB
	case "A AND B", "A&B", "AB":
		return TagBoth
	default:
		return t
	}
}

// Read parses a CSV schema descriptor. The first record is the header; every
// following record describes one column, in field order.
func Read(r io.Reader, opt ReadOptions) (Schema, error) {
	opt = opt.withDefaults()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := csvheader.ReadHeader(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Schema{}, &SchemaFormatError{Row: -1, Reason: "empty descriptor"}
		}
		return Schema{}, fmt.Errorf("schema: read header: %w", err)
	}

	nameIdx := headerIndex(header, opt.NameHeader)
	if nameIdx < 0 {
		return Schema{}, &SchemaFormatError{Row: -1, Column: opt.NameHeader, Reason: "required descriptor column is missing"}
	}
	widthIdx, widthHeader := -1, ""
	for _, h := range opt.WidthHeaders {
		if i := headerIndex(header, h); i >= 0 {
			widthIdx, widthHeader = i, h
			break
		}
	}
	if widthIdx < 0 {
		return Schema{}, &SchemaFormatError{Row: -1, Column: strings.Join(opt.WidthHeaders, "|"), Reason: "required descriptor column is missing"}
	}
	tagIdx := headerIndex(header, opt.TagHeader)
	if tagIdx < 0 && opt.RequireTag {
		return Schema{}, &SchemaFormatError{Row: -1, Column: opt.TagHeader, Reason: "required descriptor column is missing"}
	}

	var s Schema
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Schema{}, fmt.Errorf("schema: read row %d: %w", row, err)
		}
		if blankRecord(rec) {
			continue
		}

		name := field(rec, nameIdx)
		rawWidth := field(rec, widthIdx)
		if rawWidth == "" {
			return Schema{}, &SchemaFormatError{Row: row, Column: widthHeader, Reason: "width is missing"}
		}
		width, err := strconv.Atoi(rawWidth)
		if err != nil {
			return Schema{}, &SchemaFormatError{Row: row, Column: widthHeader, Reason: fmt.Sprintf("width %q is not numeric", rawWidth)}
		}
		if width <= 0 {
			return Schema{}, &SchemaFormatError{Row: row, Column: widthHeader, Reason: fmt.Sprintf("width %d must be positive", width)}
		}

		col := ColumnSpec{Name: NormalizeName(name), Width: width}
		if tagIdx >= 0 {
			col.Tag = NormalizeTag(field(rec, tagIdx))
		}
		s.Columns = append(s.Columns, col)
	}
	if len(s.Columns) == 0 {
		return Schema{}, &SchemaFormatError{Row: -1, Reason: "descriptor has no column rows"}
	}
	return s, nil
}

// yamlDescriptor is the YAML form of a schema descriptor:
//
//	columns:
//	  - { name: PCCN, width: 6, cfi: "A and B" }
//	  - { name: PLISN, width: 5, cfi: "A and B" }
type yamlDescriptor struct {
	Columns []ColumnSpec `yaml:"columns"`
}

// ReadYAML parses a YAML schema descriptor. Names and tags are normalized the
// same way Read normalizes CSV descriptors.
func ReadYAML(r io.Reader, opt ReadOptions) (Schema, error) {
	var d yamlDescriptor
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return Schema{}, &SchemaFormatError{Row: -1, Reason: "empty descriptor"}
		}
		return Schema{}, fmt.Errorf("schema: decode yaml: %w", err)
	}
	if len(d.Columns) == 0 {
		return Schema{}, &SchemaFormatError{Row: -1, Column: "columns", Reason: "descriptor has no column rows"}
	}
	s := Schema{Columns: make([]ColumnSpec, len(d.Columns))}
	for i, c := range d.Columns {
		if c.Width <= 0 {
			return Schema{}, &SchemaFormatError{Row: i, Column: "width", Reason: fmt.Sprintf("width %d must be positive", c.Width)}
		}
		if opt.RequireTag && strings.TrimSpace(c.Tag) == "" {
			return Schema{}, &SchemaFormatError{Row: i, Column: "cfi", Reason: "partition tag is missing"}
		}
		c.Name = NormalizeName(c.Name)
		c.Tag = NormalizeTag(c.Tag)
		s.Columns[i] = c
	}
	return s, nil
}

// Format names a descriptor encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the descriptor format from a file extension,
// defaulting to CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatCSV
	}
}

// Load opens src and reads a descriptor in the given format. An empty format
// is inferred from the source name.
func Load(ctx context.Context, src datasource.Source, format Format, opt ReadOptions) (Schema, error) {
	if format == "" {
		format = FormatFromPath(datasource.NameOf(src))
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return Schema{}, fmt.Errorf("schema: %w", err)
	}
	defer rc.Close()

	switch format {
	case FormatCSV:
		return Read(rc, opt)
	case FormatYAML:
		return ReadYAML(rc, opt)
	default:
		return Schema{}, fmt.Errorf("schema: unsupported descriptor format %q", format)
	}
}

func headerIndex(header []string, want string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(want)) {
			return i
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
