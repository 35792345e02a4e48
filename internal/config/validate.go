package config

import (
	"fmt"
	"strings"

	"fwetl/internal/ddl"
	"fwetl/internal/parser/fixedwidth"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single lint finding. Path is a dotted path into the config,
// e.g. "transforms[1].schema".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline lints p without touching the filesystem. Callers decide
// whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics",
		})
	}
	issues = append(issues, validateTransforms(p.Transforms)...)
	if len(p.SinkTransforms()) > 0 {
		issues = append(issues, validateStorage(p.Storage)...)
	}
	issues = append(issues, validateArtifacts(p)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

func validateTransforms(ts []Transform) []Issue {
	var issues []Issue

	if len(ts) == 0 {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "transforms",
			Message:  "no transforms configured; nothing to run",
		})
	}

	names := map[string]int{}
	sinks := 0
	for i, t := range ts {
		at := func(field string) string { return fmt.Sprintf("transforms[%d].%s", i, field) }

		if strings.TrimSpace(t.Name) == "" {
			issues = append(issues, Issue{SeverityError, at("name"), "transform name must not be empty"})
		} else if j, dup := names[t.Name]; dup {
			issues = append(issues, Issue{SeverityError, at("name"), fmt.Sprintf("duplicate transform name %q (also transforms[%d])", t.Name, j)})
		} else {
			names[t.Name] = i
		}

		switch t.Kind {
		case KindSingle, KindDual:
		case "":
			issues = append(issues, Issue{SeverityError, at("kind"), "transform kind must not be empty"})
		default:
			issues = append(issues, Issue{SeverityError, at("kind"), fmt.Sprintf("unknown transform kind %q (want single or dual)", t.Kind)})
		}

		if strings.TrimSpace(t.Schema) == "" {
			issues = append(issues, Issue{SeverityError, at("schema"), "schema descriptor path must not be empty"})
		}
		switch strings.ToLower(t.SchemaFormat) {
		case "", "csv", "yaml":
		default:
			issues = append(issues, Issue{SeverityError, at("schema_format"), fmt.Sprintf("unknown schema format %q (want csv or yaml)", t.SchemaFormat)})
		}
		if strings.TrimSpace(t.Input) == "" {
			issues = append(issues, Issue{SeverityError, at("input"), "input path must not be empty"})
		}
		if strings.TrimSpace(t.Reference) == "" {
			issues = append(issues, Issue{SeverityWarning, at("reference"), "no reference data; the validation test is skipped"})
		}
		if strings.TrimSpace(t.Output) == "" && !t.Sink {
			issues = append(issues, Issue{SeverityWarning, at("output"), "transform has neither an output nor the sink; its result is discarded"})
		}
		if !fixedwidth.SupportedEncoding(t.Encoding) {
			issues = append(issues, Issue{SeverityError, at("encoding"), fmt.Sprintf("unsupported encoding %q", t.Encoding)})
		}
		if t.Sink {
			sinks++
		}

		if t.Kind != KindDual {
			if len(t.Keys) > 0 || t.ASelector != "" || t.BSelector != "" {
				issues = append(issues, Issue{SeverityWarning, at("kind"), "join settings are ignored by a single-layout transform"})
			}
			continue
		}
		for _, sel := range []struct{ field, name string }{{"a_selector", t.ASelector}, {"b_selector", t.BSelector}} {
			if _, err := fixedwidth.SelectorByName(sel.name); err != nil {
				issues = append(issues, Issue{SeverityError, at(sel.field), err.Error()})
			}
		}
		if t.ASelector != "" && t.ASelector == t.BSelector {
			issues = append(issues, Issue{SeverityWarning, at("b_selector"), "both partitions read the same lines"})
		}
		for j, k := range t.Keys {
			if strings.TrimSpace(k) == "" {
				issues = append(issues, Issue{SeverityError, fmt.Sprintf("transforms[%d].keys[%d]", i, j), "join key must not be empty"})
			}
		}
	}

	if sinks > 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transforms",
			Message:  fmt.Sprintf("%d transforms write to the sink; each run replaces the table, so only the last one is kept", sinks),
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return append(issues, Issue{SeverityError, "storage.kind", "storage.kind must not be empty"})
	}
	if _, ok := ddl.Dialects[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	if strings.TrimSpace(s.DSN) == "" && s.Kind != "duckdb" {
		issues = append(issues, Issue{SeverityError, "storage.dsn", "storage.dsn must not be empty"})
	}
	if strings.TrimSpace(s.Table) == "" {
		issues = append(issues, Issue{SeverityError, "storage.table", "storage.table must not be empty"})
	}
	if s.ReplaceFile && s.Kind != "sqlite" {
		issues = append(issues, Issue{SeverityWarning, "storage.replace_file", "replace_file only applies to sqlite"})
	}
	return issues
}

func validateArtifacts(p Pipeline) []Issue {
	var issues []Issue

	switch strings.ToLower(p.Artifacts.Format) {
	case "", "csv", "parquet":
	default:
		issues = append(issues, Issue{SeverityError, "artifacts.format", fmt.Sprintf("unknown artifact format %q (want csv or parquet)", p.Artifacts.Format)})
	}
	for i, t := range p.Transforms {
		if strings.HasPrefix(t.Output, "s3://") && p.Artifacts.S3.Region == "" {
			issues = append(issues, Issue{SeverityError, "artifacts.s3.region", fmt.Sprintf("transforms[%d] writes to S3 but no region is configured", i)})
			break
		}
	}
	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	if r.BatchSize <= 0 {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; the sink default is used instead", r.BatchSize),
		}}
	}
	return nil
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if m.PushgatewayURL == "" {
			return []Issue{{SeverityError, "metrics.pushgateway_url", "pushgateway backend requires pushgateway_url"}}
		}
	case "datadog":
		if m.DatadogAddr == "" {
			return []Issue{{SeverityError, "metrics.datadog_addr", "datadog backend requires datadog_addr"}}
		}
	default:
		return []Issue{{SeverityError, "metrics.backend", fmt.Sprintf("unknown metrics backend %q (want none, pushgateway or datadog)", m.Backend)}}
	}
	return nil
}
