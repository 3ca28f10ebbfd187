package dataprocessing

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"crvx/internal/infrastructure"
	"crvx/pkg/contracts/domain"
)

// DropRecorder receives the number of rows dropped per table
type DropRecorder interface {
	RecordRowsDropped(table string, n int)
}

// Pipeline runs one render's worth of preprocessing. It holds no state
// between runs: every call to Run seeds its own generator and allocates its
// own tables.
type Pipeline struct {
	opts    Options
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics DropRecorder
}

// NewPipeline creates a pipeline. A nil logger uses the default logger and
// a nil tracer disables spans.
func NewPipeline(opts Options, logger *slog.Logger, tracer trace.Tracer, metrics DropRecorder) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Pipeline{
		opts:    opts,
		logger:  infrastructure.WithComponent(logger, "pipeline"),
		tracer:  tracer,
		metrics: metrics,
	}, nil
}

// Run normalizes, validates, filters, expands and aggregates raw. It stops
// at the first error; validation failures never reach aggregation.
func (p *Pipeline) Run(ctx context.Context, raw *domain.RawTables, filter Filter) (*domain.Dataset, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.Int64("crvx.seed", p.opts.Seed)))
	defer span.End()

	start := time.Now()
	ds := &domain.Dataset{
		RunID:       infrastructure.GetRunID(ctx),
		GeneratedAt: start.UTC(),
		Seed:        p.opts.Seed,
	}
	if raw != nil {
		ds.FetchedAt = raw.FetchedAt
	}

	var normalized *NormalizeResult
	err := p.stage(ctx, "normalize", func() error {
		var err error
		normalized, err = Normalize(raw)
		return err
	})
	if err != nil {
		return nil, p.fail(ctx, span, "normalize", err)
	}
	ds.Warnings = normalized.Warnings
	for _, w := range normalized.Warnings {
		p.logger.WarnContext(ctx, w.Message, "table", w.Table, "count", w.Count)
		if p.metrics != nil {
			p.metrics.RecordRowsDropped(w.Table, w.Count)
		}
	}

	tables := normalized.Tables
	if err := p.stage(ctx, "validate", func() error {
		return ValidateConsistency(tables.Climbs, tables.Sessions)
	}); err != nil {
		return nil, p.fail(ctx, span, "validate", err)
	}

	if err := p.stage(ctx, "filter", func() error {
		var err error
		tables, err = filter.Apply(tables)
		return err
	}); err != nil {
		return nil, p.fail(ctx, span, "filter", err)
	}
	ds.Normalized = tables

	if err := p.stage(ctx, "expand", func() error {
		expanded, err := ExpandMultipliers(tables.Climbs)
		if err != nil {
			return err
		}
		resolver := NewGradeResolver(rand.New(rand.NewSource(p.opts.Seed)), p.opts.DropBeginner)
		ds.UnitClimbs, err = ResolveUnitClimbs(expanded, resolver, WorkoutTypesByDate(tables.Sessions))
		if err != nil {
			return err
		}
		ds.Attempts = ExpandAttempts(ds.UnitClimbs)
		return nil
	}); err != nil {
		return nil, p.fail(ctx, span, "expand", err)
	}

	_, aggSpan := p.tracer.Start(ctx, "pipeline.aggregate")
	p.aggregate(ds, tables)
	aggSpan.End()

	span.SetAttributes(
		attribute.Int("crvx.unit_climbs", len(ds.UnitClimbs)),
		attribute.Int("crvx.attempts", len(ds.Attempts)),
	)
	p.logger.InfoContext(ctx, "pipeline completed",
		"climbs", len(tables.Climbs),
		"sessions", len(tables.Sessions),
		"unit_climbs", len(ds.UnitClimbs),
		"warnings", len(ds.Warnings),
		"duration", time.Since(start))
	return ds, nil
}

// aggregate fills the derived tables of ds
func (p *Pipeline) aggregate(ds *domain.Dataset, tables domain.NormalizedTables) {
	ds.GradeCounts = AggregateGradeCounts(ds.UnitClimbs)
	ds.Pyramid = BuildPyramid(ds.GradeCounts)
	ds.TopK = TopKMonthlyMeans(ds.UnitClimbs, p.opts.TopK)
	ds.CumTopK = CumulativeTopKMeans(ds.UnitClimbs, p.opts.TopK)
	ds.Activity = BuildActivity(tables.Sessions, tables.Outdoor)
	ds.AttemptStats = SummarizeAttempts(ds.Attempts)
	ds.Sessions = SessionPointsByDate(ds.UnitClimbs, tables.Sessions)
	ds.WorkoutTypes = WorkoutGradeCounts(ds.UnitClimbs)
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	_, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	if err := fn(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (p *Pipeline) fail(ctx context.Context, span trace.Span, stage string, err error) error {
	span.SetStatus(codes.Error, stage+" failed")
	p.logger.ErrorContext(ctx, "pipeline stage failed", "stage", stage, "error", err)
	return err
}
