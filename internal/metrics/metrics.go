// Package metrics records pipeline counters and step timings through a
// pluggable Backend.
//
// The default backend is a no-op, so every Record* helper is safe to call
// whether or not a real backend (prompush, datadog) was installed with
// SetBackend. Callers depend only on this package; the concrete metric
// systems live in subpackages.
package metrics

import "time"

// Metric names emitted by the Record* helpers.
const (
	StepTotal           = "fwetl_step_total"
	StepDurationSeconds = "fwetl_step_duration_seconds"
	RecordsTotal        = "fwetl_records_total"
	BatchesTotal        = "fwetl_batches_total"
	ValidationsTotal    = "fwetl_validations_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-style value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of a pipeline step (parse, merge,
// validate, ddl, load, artifact) and observes its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow increments the record counter for job and kind. Kinds in use:
// "parsed", "merged", "inserted", "written".
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the loader batch counter for job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}

// RecordValidation counts one validation verdict for job.
func RecordValidation(job string, pass bool) {
	outcome := "PASS"
	if !pass {
		outcome = "FAIL"
	}
	backend.IncCounter(ValidationsTotal, 1, Labels{
		"job":     job,
		"outcome": outcome,
	})
}
