// Package config defines the pipeline configuration model and loads it in
// layers with koanf: built-in defaults, then a YAML (or JSON) file, then
// FWETL_* environment variables, then explicitly set CLI flags.
//
// Example:
//
//	job: lsa-task2
//	transforms:
//	  - name: option-1
//	    kind: single
//	    schema: data/option1_schema.csv
//	    input: data/option1_input.txt
//	    reference: data/option1_expected.csv
//	    output: results/result-task2_option1.csv
//	  - name: option-2
//	    kind: dual
//	    schema: data/option2_schema.csv
//	    input: data/option2_input.txt
//	    output: results/result-task2_option2.csv
//	    sink: true
//	storage: { kind: sqlite, dsn: results/result.db, table: task2, replace_file: true }
package config

// Transform kinds.
const (
	KindSingle = "single"
	KindDual   = "dual"
)

// Pipeline is the top-level configuration of one run.
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job        string        `koanf:"job" json:"job"`
	Transforms []Transform   `koanf:"transforms" json:"transforms"`
	Storage    Storage       `koanf:"storage" json:"storage"`
	Artifacts  Artifacts     `koanf:"artifacts" json:"artifacts"`
	Runtime    RuntimeConfig `koanf:"runtime" json:"runtime"`
	Metrics    Metrics       `koanf:"metrics" json:"metrics"`
}

// Transform configures one single- or dual-layout transform.
type Transform struct {
	Name string `koanf:"name" json:"name"`
	// Kind is "single" or "dual".
	Kind string `koanf:"kind" json:"kind"`

	// Schema is the column-width descriptor path; SchemaFormat ("csv" or
	// "yaml") defaults to the file extension.
	Schema       string `koanf:"schema" json:"schema"`
	SchemaFormat string `koanf:"schema_format" json:"schema_format"`

	Input     string `koanf:"input" json:"input"`
	Reference string `koanf:"reference" json:"reference"`
	// Output is the artifact destination: a local path or s3://bucket/key.
	Output string `koanf:"output" json:"output"`
	// Sink hands the result to the table sink.
	Sink bool `koanf:"sink" json:"sink"`

	Encoding  string `koanf:"encoding" json:"encoding"`
	Strict    bool   `koanf:"strict" json:"strict"`
	SkipBlank bool   `koanf:"skip_blank" json:"skip_blank"`

	// Dual-layout settings. Empty values take the transformer defaults.
	Keys        []string `koanf:"keys" json:"keys"`
	ASelector   string   `koanf:"a_selector" json:"a_selector"`
	BSelector   string   `koanf:"b_selector" json:"b_selector"`
	Placeholder string   `koanf:"placeholder" json:"placeholder"`
	TagColumn   string   `koanf:"tag_column" json:"tag_column"`
}

// Storage selects and configures the table sink backend.
type Storage struct {
	// Kind is a registered storage kind: sqlite, postgres, mssql, mysql, duckdb.
	Kind  string `koanf:"kind" json:"kind"`
	DSN   string `koanf:"dsn" json:"dsn"`
	Table string `koanf:"table" json:"table"`
	// ReplaceFile removes a file-backed database before the run.
	ReplaceFile bool `koanf:"replace_file" json:"replace_file"`
	// IntegerColumns stores whole-number columns as integers instead of text.
	IntegerColumns bool `koanf:"integer_columns" json:"integer_columns"`
}

// Artifacts configures output files.
type Artifacts struct {
	// Format is "csv" or "parquet"; empty infers it from each output path.
	Format string `koanf:"format" json:"format"`
	S3     S3     `koanf:"s3" json:"s3"`
}

// S3 configures the store used for s3:// outputs.
type S3 struct {
	Region          string `koanf:"region" json:"region"`
	Endpoint        string `koanf:"endpoint" json:"endpoint"`
	AccessKeyID     string `koanf:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key" json:"secret_access_key"`
	UsePathStyle    bool   `koanf:"use_path_style" json:"use_path_style"`
}

// RuntimeConfig controls batching.
type RuntimeConfig struct {
	BatchSize int `koanf:"batch_size" json:"batch_size"`
}

// Metrics selects a metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string   `koanf:"backend" json:"backend"`
	PushgatewayURL string   `koanf:"pushgateway_url" json:"pushgateway_url"`
	DatadogAddr    string   `koanf:"datadog_addr" json:"datadog_addr"`
	Namespace      string   `koanf:"namespace" json:"namespace"`
	Tags           []string `koanf:"tags" json:"tags"`
}

// SinkTransforms returns the transforms whose result goes to the table sink.
func (p Pipeline) SinkTransforms() []Transform {
	var out []Transform
	for _, t := range p.Transforms {
		if t.Sink {
			out = append(out, t)
		}
	}
	return out
}
