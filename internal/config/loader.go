package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nesting levels: FWETL_STORAGE__DSN sets storage.dsn.
const EnvPrefix = "FWETL_"

// Defaults are the lowest configuration layer.
var Defaults = map[string]any{
	"job":                     "fwetl",
	"storage.kind":            "sqlite",
	"storage.dsn":             "results/result.db",
	"storage.table":           "task2",
	"storage.replace_file":    true,
	"storage.integer_columns": false,
	"runtime.batch_size":      1000,
	"metrics.backend":         "none",
}

// FlagKeys maps CLI flag names onto configuration keys. Flags not listed
// here (config path, verbosity) are not configuration.
var FlagKeys = map[string]string{
	"job":             "job",
	"storage-kind":    "storage.kind",
	"storage-dsn":     "storage.dsn",
	"storage-table":   "storage.table",
	"batch-size":      "runtime.batch_size",
	"artifact-format": "artifacts.format",
	"metrics-backend": "metrics.backend",
}

// Load builds a Pipeline from defaults, the file at path (skipped when
// empty), the environment, and flags that were explicitly set. Later layers
// win.
func Load(path string, flags *pflag.FlagSet) (Pipeline, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults, "."), nil); err != nil {
		return Pipeline{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		// JSON is a subset of YAML, so one parser covers both file types.
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Pipeline{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Pipeline{}, fmt.Errorf("config: load env: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Pipeline{}, fmt.Errorf("config: load flags: %w", err)
		}
	}

	var p Pipeline
	if err := k.Unmarshal("", &p); err != nil {
		return Pipeline{}, fmt.Errorf("config: decode: %w", err)
	}
	return p, nil
}

// envKey turns FWETL_STORAGE__REPLACE_FILE into storage.replace_file.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
