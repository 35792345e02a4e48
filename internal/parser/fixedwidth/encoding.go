package fixedwidth

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// decoder wraps r so the scanner always sees UTF-8.
func decoder(r io.Reader, name string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(r), nil
	default:
		return nil, fmt.Errorf("fixedwidth: unsupported encoding %q", name)
	}
}

// SupportedEncoding reports whether name is an accepted input charset.
func SupportedEncoding(name string) bool {
	_, err := decoder(strings.NewReader(""), name)
	return err == nil
}
