package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fwetl/internal/artifact"
	"fwetl/internal/config"
	"fwetl/internal/datasource"
	"fwetl/internal/datasource/file"
	"fwetl/internal/metrics"
	"fwetl/internal/metrics/datadog"
	"fwetl/internal/metrics/prompush"
	"fwetl/internal/parser/fixedwidth"
	"fwetl/internal/schema"
	"fwetl/internal/sink"
	"fwetl/internal/storage"
	"fwetl/internal/transformer"

	// Every backend is compiled in; storage.kind picks one at run time.
	_ "fwetl/internal/storage/all"
)

// Test seams.
var (
	newRepositoryFn = storage.New
	newS3StoreFn    = func(c config.S3) artifact.Store {
		return artifact.NewS3(artifact.S3Config{
			Region:          c.Region,
			Endpoint:        c.Endpoint,
			AccessKeyID:     c.AccessKeyID,
			SecretAccessKey: c.SecretAccessKey,
			UsePathStyle:    c.UsePathStyle,
		})
	}
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every configured transform once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadPipeline(cmd, opts)
			if err != nil {
				return err
			}
			issues := config.ValidatePipeline(p)
			renderIssues(cmd, issues)
			if config.HasErrors(issues) {
				return fmt.Errorf("configuration is invalid: %s", opts.configPath)
			}

			flush, err := setupMetrics(p)
			if err != nil {
				return err
			}
			defer flush()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			sums, err := runPipeline(ctx, p)
			renderSummary(cmd.OutOrStdout(), sums)
			if err != nil {
				zap.L().Error("run failed", zap.Error(err))
			}
			return err
		},
	}
}

// setupMetrics installs the configured metrics backend and returns a flush
// function to defer.
func setupMetrics(p config.Pipeline) (func(), error) {
	var (
		b   metrics.Backend
		err error
	)
	switch p.Metrics.Backend {
	case "", "none":
		return func() {}, nil
	case "pushgateway":
		b, err = prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.DatadogAddr,
			Namespace:  p.Metrics.Namespace,
			GlobalTags: p.Metrics.Tags,
		})
	default:
		return nil, fmt.Errorf("unknown metrics backend %q", p.Metrics.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	metrics.SetBackend(b)
	zap.L().Named("metrics").Info("backend enabled", zap.String("backend", p.Metrics.Backend))
	return func() {
		if err := metrics.Flush(); err != nil {
			zap.L().Named("metrics").Warn("flush failed", zap.Error(err))
		}
	}, nil
}

// summary is one line of the end-of-run report.
type summary struct {
	Name       string
	Kind       string
	Rows       int
	Columns    int
	Validation string
	Output     string
	Digest     uint64
	Inserted   int64
	Took       time.Duration
}

// runPipeline runs the transforms in order and stops at the first fatal
// error. A failed validation is reported, not fatal.
func runPipeline(ctx context.Context, p config.Pipeline) ([]summary, error) {
	log := zap.L().Named("pipeline").With(
		zap.String("job", p.Job),
		zap.String("run_id", uuid.NewString()))
	log.Info("run started", zap.Int("transforms", len(p.Transforms)))

	store := artifact.Router{Local: artifact.Local{}}
	for _, t := range p.Transforms {
		if strings.HasPrefix(t.Output, "s3://") {
			store.S3 = newS3StoreFn(p.Artifacts.S3)
			break
		}
	}

	var sums []summary
	for _, t := range p.Transforms {
		start := time.Now()
		sum, err := runTransform(ctx, p, t, store)
		sum.Took = time.Since(start)
		sums = append(sums, sum)
		if err != nil {
			return sums, err
		}
		log.Info("transform finished",
			zap.String("transform", t.Name),
			zap.Int("rows", sum.Rows),
			zap.String("validation", sum.Validation),
			zap.Duration("took", sum.Took))
	}
	return sums, nil
}

func runTransform(ctx context.Context, p config.Pipeline, t config.Transform, store artifact.Store) (summary, error) {
	sum := summary{Name: t.Name, Kind: t.Kind, Validation: "-"}

	tr, err := buildTransform(ctx, t)
	if err != nil {
		return sum, err
	}
	res, err := tr.Run(ctx)
	if err != nil {
		return sum, err
	}
	sum.Rows, sum.Columns = res.Set.Len(), len(res.Set.Columns)
	if res.Validation != nil {
		sum.Validation = res.Validation.String()
	}

	if t.Output != "" {
		a, err := artifact.Write(ctx, store, t.Name, res.Set, t.Output, artifact.Format(p.Artifacts.Format))
		if err != nil {
			return sum, err
		}
		sum.Output, sum.Digest = a.Location, a.Digest
	}

	if t.Sink {
		n, err := writeSink(ctx, p, t.Name, res)
		sum.Inserted = n
		if err != nil {
			return sum, fmt.Errorf("%s: %w", t.Name, err)
		}
	}
	return sum, nil
}

// buildTransform loads the schema descriptor and assembles the transform t
// describes.
func buildTransform(ctx context.Context, t config.Transform) (transformer.Transform, error) {
	sch, err := schema.Load(ctx, file.NewLocal(t.Schema), schema.Format(strings.ToLower(t.SchemaFormat)),
		schema.ReadOptions{RequireTag: t.Kind == config.KindDual})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Name, err)
	}

	var ref datasource.Source
	if t.Reference != "" {
		ref = file.NewLocal(t.Reference)
	}
	in := file.NewLocal(t.Input)

	switch t.Kind {
	case config.KindSingle:
		return transformer.SingleLayout{
			Name:      t.Name,
			Schema:    sch,
			Source:    in,
			Reference: ref,
			Encoding:  t.Encoding,
			Strict:    t.Strict,
			SkipBlank: t.SkipBlank,
		}, nil
	case config.KindDual:
		a, err := selector(t.ASelector)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name, err)
		}
		b, err := selector(t.BSelector)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name, err)
		}
		return transformer.DualLayout{
			Name:        t.Name,
			Schema:      sch,
			Source:      in,
			Reference:   ref,
			Encoding:    t.Encoding,
			Strict:      t.Strict,
			SkipBlank:   t.SkipBlank,
			TagColumn:   schema.NormalizeName(t.TagColumn),
			Placeholder: schema.NormalizeName(t.Placeholder),
			Keys:        normalizeNames(t.Keys),
			ASelector:   a,
			BSelector:   b,
		}, nil
	default:
		return nil, fmt.Errorf("%s: unknown transform kind %q", t.Name, t.Kind)
	}
}

// selector resolves a configured row selector; empty keeps the transformer
// default.
func selector(name string) (fixedwidth.RowSelector, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	return fixedwidth.SelectorByName(name)
}

func normalizeNames(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = schema.NormalizeName(s)
	}
	return out
}

func writeSink(ctx context.Context, p config.Pipeline, job string, res transformer.Result) (int64, error) {
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:        p.Storage.Kind,
		DSN:         p.Storage.DSN,
		Table:       p.Storage.Table,
		Columns:     res.Set.ColumnNames(),
		ReplaceFile: p.Storage.ReplaceFile,
	})
	if err != nil {
		return 0, fmt.Errorf("open %s storage: %w", p.Storage.Kind, err)
	}
	defer repo.Close()

	s := sink.Sink{
		Kind:      p.Storage.Kind,
		Table:     p.Storage.Table,
		Repo:      repo,
		BatchSize: p.Runtime.BatchSize,
		Job:       job,
	}
	if p.Storage.IntegerColumns {
		s.TypeMap = sink.IntegerTypeMap
	}
	return s.Write(ctx, res.Set)
}
