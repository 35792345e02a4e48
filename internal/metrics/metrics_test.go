package metrics

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

// recorder sums every counter and histogram call by "name{k=v,...}".
type recorder struct {
	mu      sync.Mutex
	series  map[string]float64
	flushes int
}

func seriesKey(name string, labels Labels) string {
	parts := make([]string, 0, len(labels))
	for k, v := range labels {
		parts = append(parts, k+"="+v)
	}
	slices.Sort(parts)
	return fmt.Sprintf("%s{%s}", name, strings.Join(parts, ","))
}

func (r *recorder) IncCounter(name string, delta float64, labels Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[seriesKey(name, labels)] += delta
}

func (r *recorder) ObserveHistogram(name string, value float64, labels Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[seriesKey(name, labels)] += value
}

func (r *recorder) Flush() error {
	r.flushes++
	return nil
}

// install swaps the package backend for a recorder until the test ends.
func install(t *testing.T) *recorder {
	t.Helper()
	orig := backend
	t.Cleanup(func() { backend = orig })
	r := &recorder{series: map[string]float64{}}
	SetBackend(r)
	return r
}

func TestRecordStep_PipelineSteps(t *testing.T) {
	r := install(t)

	steps := []struct {
		step string
		err  error
		took time.Duration
	}{
		{"parse", nil, 2 * time.Second},
		{"merge", nil, 250 * time.Millisecond},
		{"validate", nil, 0},
		{"ddl", nil, 0},
		{"load", errors.New("copy: table locked"), 1500 * time.Millisecond},
	}
	for _, s := range steps {
		RecordStep("option-2", s.step, s.err, s.took)
	}

	want := map[string]float64{
		"fwetl_step_total{job=option-2,status=success,step=parse}":               1,
		"fwetl_step_duration_seconds{job=option-2,status=success,step=parse}":    2,
		"fwetl_step_total{job=option-2,status=success,step=merge}":               1,
		"fwetl_step_duration_seconds{job=option-2,status=success,step=merge}":    0.25,
		"fwetl_step_total{job=option-2,status=failure,step=load}":                1,
		"fwetl_step_duration_seconds{job=option-2,status=failure,step=load}":     1.5,
		"fwetl_step_total{job=option-2,status=success,step=ddl}":                 1,
		"fwetl_step_duration_seconds{job=option-2,status=success,step=ddl}":      0,
		"fwetl_step_total{job=option-2,status=success,step=validate}":            1,
		"fwetl_step_duration_seconds{job=option-2,status=success,step=validate}": 0,
	}
	for k, v := range want {
		if got, ok := r.series[k]; !ok || got != v {
			t.Fatalf("series %s = %v (present %v), want %v", k, got, ok, v)
		}
	}
	if len(r.series) != len(want) {
		t.Fatalf("series = %v, want exactly %d entries", r.series, len(want))
	}
}

func TestRecordRow_Kinds(t *testing.T) {
	r := install(t)

	// A dual-layout run: both partitions parsed, merged, then written out.
	RecordRow("option-2", "parsed", 4)
	RecordRow("option-2", "merged", 3)
	RecordRow("option-2", "written", 3)
	RecordRow("option-2", "inserted", 3)
	RecordRow("option-2", "inserted", 0)
	RecordRow("option-2", "inserted", -1)
	RecordBatches("option-2", 2)
	RecordBatches("option-2", 0)

	want := map[string]float64{
		"fwetl_records_total{job=option-2,kind=parsed}":   4,
		"fwetl_records_total{job=option-2,kind=merged}":   3,
		"fwetl_records_total{job=option-2,kind=written}":  3,
		"fwetl_records_total{job=option-2,kind=inserted}": 3,
		"fwetl_batches_total{job=option-2}":               2,
	}
	if len(r.series) != len(want) {
		t.Fatalf("series = %v, want %v", r.series, want)
	}
	for k, v := range want {
		if r.series[k] != v {
			t.Fatalf("series %s = %v, want %v", k, r.series[k], v)
		}
	}
}

func TestRecordValidation_Outcomes(t *testing.T) {
	r := install(t)

	RecordValidation("option-1", true)
	RecordValidation("option-2", false)
	RecordValidation("option-2", false)

	if got := r.series["fwetl_validations_total{job=option-1,outcome=PASS}"]; got != 1 {
		t.Fatalf("option-1 PASS = %v, want 1", got)
	}
	if got := r.series["fwetl_validations_total{job=option-2,outcome=FAIL}"]; got != 2 {
		t.Fatalf("option-2 FAIL = %v, want 2", got)
	}
	if _, ok := r.series["fwetl_validations_total{job=option-2,outcome=PASS}"]; ok {
		t.Fatal("option-2 recorded a PASS")
	}
}

func TestSetBackend_NilKeepsCurrent(t *testing.T) {
	r := install(t)

	SetBackend(nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if r.flushes != 1 {
		t.Fatalf("flushes = %d, want 1", r.flushes)
	}
}

func TestDefaultBackendIsNop(t *testing.T) {
	orig := backend
	t.Cleanup(func() { backend = orig })
	backend = nopBackend{}

	RecordStep("option-1", "parse", nil, time.Second)
	RecordRow("option-1", "parsed", 1)
	RecordBatches("option-1", 1)
	RecordValidation("option-1", true)
	if err := Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}
