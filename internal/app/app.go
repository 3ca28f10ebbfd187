// Package app wires configuration, the spreadsheet source, the
// preprocessing pipeline and the exporters into renders.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"crvx/internal/config"
	"crvx/internal/dataprocessing"
	apperrors "crvx/internal/errors"
	"crvx/internal/exporter"
	"crvx/internal/infrastructure"
	"crvx/internal/source"
	"crvx/pkg/contracts/domain"
)

// Output file names inside the output directory.
const (
	WorkbookFile = "crvx.xlsx"
	DatasetFile  = "dataset.json"
)

// Render status labels for the renders_total metric.
const (
	StatusOK = "ok"
)

// Result is the outcome of one render
type Result struct {
	Dataset *domain.Dataset
	Files   []string
}

// App performs renders. Each render is independent: it fetches (or reuses a
// cached copy of) the spreadsheet and builds its own tables.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	source   *source.CachedSource
	pipeline *dataprocessing.Pipeline
	filter   dataprocessing.Filter
	metrics  *infrastructure.Metrics
	tracing  *infrastructure.Tracing
}

// New builds an App using the source described by cfg
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	src, err := source.New(ctx, cfg.Source, logger)
	if err != nil {
		return nil, err
	}
	return NewWithSource(cfg, logger, src)
}

// NewWithSource builds an App around an existing source
func NewWithSource(cfg *config.Config, logger *slog.Logger, src source.Source) (*App, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	filter, err := dataprocessing.FilterFromConfig(cfg.Filter)
	if err != nil {
		return nil, err
	}

	tracing, err := infrastructure.InitializeTracing(cfg.Telemetry, os.Stderr)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize tracing", err)
	}

	metrics := infrastructure.NewMetrics()
	pipeline, err := dataprocessing.NewPipeline(
		dataprocessing.OptionsFromConfig(cfg.Pipeline), logger, tracing.Tracer(), metrics)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid pipeline configuration", err)
	}

	return &App{
		cfg:      cfg,
		logger:   infrastructure.WithComponent(logger, "app"),
		source:   source.NewCachedSource(src, cfg.Source.CacheTTL, metrics, logger),
		pipeline: pipeline,
		filter:   filter,
		metrics:  metrics,
		tracing:  tracing,
	}, nil
}

// Metrics returns the render metrics
func (a *App) Metrics() *infrastructure.Metrics {
	return a.metrics
}

// RunOnce performs a single render. refresh drops the cached pull first.
func (a *App) RunOnce(ctx context.Context, refresh bool) (*Result, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	start := time.Now()

	result, err := a.render(ctx, refresh)

	status := StatusOK
	if err != nil {
		status = statusOf(err)
	}
	a.metrics.RecordRender(status, time.Since(start))
	if werr := a.metrics.WriteTextfile(a.cfg.Output.MetricsFile); werr != nil {
		a.logger.WarnContext(ctx, "metrics not written", slog.String("error", werr.Error()))
	}

	if err != nil {
		a.logger.ErrorContext(ctx, "render failed",
			slog.String("status", status),
			slog.String("error", err.Error()))
		return nil, err
	}

	a.logger.InfoContext(ctx, "render completed",
		slog.Int("files", len(result.Files)),
		slog.Int("warnings", len(result.Dataset.Warnings)),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}

// Invalidate drops the cached spreadsheet pull so the next render fetches
func (a *App) Invalidate(ctx context.Context) {
	a.source.Invalidate()
	a.logger.InfoContext(ctx, "cache invalidated")
}

func (a *App) render(ctx context.Context, refresh bool) (*Result, error) {
	if refresh {
		a.Invalidate(ctx)
	}

	raw, err := a.source.Fetch(ctx)
	if err != nil {
		if apperrors.TypeOf(err) == "" {
			err = apperrors.NewSourceError("failed to fetch climbing log", err)
		}
		return nil, err
	}

	ds, err := a.pipeline.Run(ctx, raw, a.filter)
	if err != nil {
		return nil, err
	}

	files, err := a.export(ds)
	if err != nil {
		return nil, err
	}
	return &Result{Dataset: ds, Files: files}, nil
}

func (a *App) export(ds *domain.Dataset) ([]string, error) {
	out := a.cfg.Output
	tables := exporter.Tables(ds)

	var files []string
	if out.CSV {
		paths, err := exporter.NewCSVWriter(out.Dir).ExportTables(tables)
		if err != nil {
			return nil, err
		}
		files = append(files, paths...)
	}
	if out.XLSX {
		path := filepath.Join(out.Dir, WorkbookFile)
		if err := exporter.NewWorkbookWriter(path).Export(tables); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	if out.JSON {
		path := filepath.Join(out.Dir, DatasetFile)
		if err := exporter.NewJSONWriter(path).Export(ds); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

// RunScheduled renders every interval until ctx is cancelled. The first
// render starts immediately and renders never overlap. A failed render is
// logged and the schedule continues.
func (a *App) RunScheduled(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return apperrors.NewConfigError(fmt.Sprintf("schedule interval must be positive, got %s", interval), nil)
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	a.logger.InfoContext(ctx, "starting render scheduler", slog.Duration("interval", interval))

	_, err := scheduler.Every(interval).Do(func() {
		runCtx := infrastructure.WithRunID(context.WithoutCancel(ctx), infrastructure.GenerateRunID())
		if _, err := a.RunOnce(runCtx, false); err != nil {
			a.logger.WarnContext(ctx, "scheduled render failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return apperrors.NewConfigError("failed to schedule renders", err)
	}

	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()

	a.logger.InfoContext(ctx, "render scheduler stopped")
	return nil
}

// Close flushes and stops tracing
func (a *App) Close(ctx context.Context) error {
	return a.tracing.Shutdown(ctx)
}

// statusOf maps an error to a render status label
func statusOf(err error) string {
	if t := apperrors.TypeOf(err); t != "" {
		return strings.ToLower(string(t))
	}
	return "error"
}
