// Command fwetl runs a configured fixed-width ingestion pipeline once: every
// transform parses its input, is checked against its reference data, and is
// written to its artifact and, when marked, to the table sink.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fwetl/internal/config"
)

type rootOptions struct {
	configPath string
	envFile    string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "fwetl",
		Short:         "Parse, validate, merge and load fixed-width flat files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnvFile(opts.envFile); err != nil {
				return err
			}
			logger, err := newLogger(opts.verbose)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = zap.L().Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "fwetl.yaml", "pipeline config file (YAML or JSON)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config; ignored when missing")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "development (console) logging at debug level")
	pf.String("job", "", "override job")
	pf.String("storage-kind", "", "override storage.kind")
	pf.String("storage-dsn", "", "override storage.dsn")
	pf.String("storage-table", "", "override storage.table")
	pf.Int("batch-size", 0, "override runtime.batch_size")
	pf.String("artifact-format", "", "override artifacts.format (csv, parquet)")
	pf.String("metrics-backend", "", "override metrics.backend (none, pushgateway, datadog)")

	root.AddCommand(newRunCmd(opts), newValidateCmd(opts))
	return root
}

// loadPipeline loads the configuration layers for cmd.
func loadPipeline(cmd *cobra.Command, opts *rootOptions) (config.Pipeline, error) {
	return config.Load(opts.configPath, cmd.Flags())
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	return zap.NewProduction()
}
