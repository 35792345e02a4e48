// Package csv holds the header conventions shared by every CSV the pipeline
// reads: schema descriptors and validation references.
package csv

import (
	"encoding/csv"
	"strings"
)

const utf8BOM = "\uFEFF"

// StripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func StripHeaderBOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	return headers
}

// ReadHeader reads the first record of cr and strips a leading BOM. Errors,
// including io.EOF on empty input, are returned unchanged.
func ReadHeader(cr *csv.Reader) ([]string, error) {
	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	return StripHeaderBOM(header), nil
}
