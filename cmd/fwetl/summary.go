package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

func renderSummary(w io.Writer, sums []summary) {
	if len(sums) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Transform", "Kind", "Rows", "Cols", "Validation", "Output", "Digest", "Inserted", "Took"})
	for _, s := range sums {
		digest := ""
		if s.Output != "" {
			digest = fmt.Sprintf("%016x", s.Digest)
		}
		t.AppendRow(table.Row{s.Name, s.Kind, s.Rows, s.Columns, s.Validation, s.Output, digest, s.Inserted, s.Took.Truncate(time.Millisecond)})
	}
	t.Render()
}
