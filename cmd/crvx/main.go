package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"crvx/internal/app"
	"crvx/internal/config"
	"crvx/internal/infrastructure"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "YAML config file (defaults to crvx.yaml or configs/crvx.yaml when present)")
	sourceKind := flag.String("source", "", "sheets | workbook")
	workbook := flag.String("workbook", "", "path to a local .xlsx export of the climbing log")
	out := flag.String("out", "", "output directory for derived tables")
	dateRange := flag.String("range", "", "all | YTD | 1y | 6m | custom")
	start := flag.String("start", "", "custom range start date (YYYY-MM-DD)")
	end := flag.String("end", "", "custom range end date (YYYY-MM-DD)")
	workouts := flag.String("workouts", "", "comma-separated workout types to keep")
	schedule := flag.Duration("schedule", 0, "re-render on this interval; 0 renders once")
	refresh := flag.Bool("refresh", false, "drop the cached spreadsheet pull before the first render")
	flag.Parse()

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crvx: %v\n", err)
		return 1
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["source"] {
		cfg.Source.Kind = *sourceKind
	}
	if set["workbook"] {
		cfg.Source.WorkbookPath = *workbook
		if !set["source"] {
			cfg.Source.Kind = config.SourceKindWorkbook
		}
	}
	if set["out"] {
		cfg.Output.Dir = *out
	}
	if set["range"] {
		cfg.Filter.Range = *dateRange
	}
	if set["start"] {
		cfg.Filter.Start = *start
	}
	if set["end"] {
		cfg.Filter.End = *end
	}
	if set["workouts"] {
		cfg.Filter.Workouts = splitList(*workouts)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "crvx: config validation failed: %v\n", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting "+config.AppName,
		slog.String("version", config.AppVersion),
		slog.String("source", cfg.Source.Kind),
		slog.String("output_dir", cfg.Output.Dir),
		slog.String("range", cfg.Filter.Range),
		slog.Duration("schedule", *schedule))

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Close(shutdownCtx)
	}()

	if *schedule > 0 {
		if *refresh {
			a.Invalidate(ctx)
		}
		if err := a.RunScheduled(ctx, *schedule); err != nil {
			logger.Error("Scheduler failed", slog.String("error", err.Error()))
			return 1
		}
		return 0
	}

	res, err := a.RunOnce(ctx, *refresh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crvx: %v\n", err)
		return 1
	}
	for _, w := range res.Dataset.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
	}
	for _, f := range res.Files {
		fmt.Println(f)
	}
	return 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
