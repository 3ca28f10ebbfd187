package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crvx/internal/config"
	apperrors "crvx/internal/errors"
	"crvx/internal/exporter"
	"crvx/internal/infrastructure"
	sharedtest "crvx/internal/shared/testutil"
	"crvx/pkg/contracts/domain"
)

type stubSource struct {
	calls  atomic.Int32
	err    error
	mutate func(*domain.RawTables)
}

func (s *stubSource) Fetch(ctx context.Context) (*domain.RawTables, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	raw := sharedtest.NewClimbingLogFixtures().RawTables()
	if s.mutate != nil {
		s.mutate(raw)
	}
	return raw, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Source.Kind = config.SourceKindWorkbook
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")
	cfg.Output.MetricsFile = filepath.Join(t.TempDir(), "crvx.prom")
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, src *stubSource) (*App, *sharedtest.BufferedSlogHandler) {
	t.Helper()
	logger, logs := sharedtest.NewTestLogger(t)
	a, err := NewWithSource(cfg, logger, src)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a, logs
}

func TestRunOnce(t *testing.T) {
	cfg := testConfig(t)
	a, logs := newTestApp(t, cfg, &stubSource{})

	ctx := infrastructure.WithRunID(context.Background(), "render-1")
	res, err := a.RunOnce(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, "render-1", res.Dataset.RunID)
	assert.Len(t, res.Files, len(exporter.Tables(res.Dataset))+2)
	for _, f := range res.Files {
		assert.FileExists(t, f)
	}
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, DatasetFile))
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, WorkbookFile))
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "pyramid.csv"))

	prom, err := os.ReadFile(cfg.Output.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `crvx_renders_total{status="ok"} 1`)
	assert.Contains(t, string(prom), `crvx_rows_dropped_total{table="climbs"} 1`)

	sharedtest.AssertNoErrors(t, logs)
}

func TestRunOnce_OutputSelection(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.CSV = false
	cfg.Output.XLSX = false
	a, _ := newTestApp(t, cfg, &stubSource{})

	res, err := a.RunOnce(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(cfg.Output.Dir, DatasetFile)}, res.Files)
	assert.NotEmpty(t, res.Dataset.RunID, "a run id is generated when missing")
}

func TestRunOnce_Failures(t *testing.T) {
	tests := []struct {
		name    string
		src     *stubSource
		errType apperrors.ErrorType
		status  string
	}{
		{
			name: "inconsistent dates",
			src: &stubSource{mutate: func(raw *domain.RawTables) {
				raw.Sessions = raw.Sessions[:2]
			}},
			errType: apperrors.ErrTypeValidation,
			status:  "validation",
		},
		{
			name:    "unreachable source",
			src:     &stubSource{err: errors.New("dial tcp: timeout")},
			errType: apperrors.ErrTypeSource,
			status:  "source",
		},
		{
			name: "broken header",
			src: &stubSource{mutate: func(raw *domain.RawTables) {
				raw.Climbs[0][0] = "When"
			}},
			errType: apperrors.ErrTypeConfig,
			status:  "config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			a, logs := newTestApp(t, cfg, tt.src)

			res, err := a.RunOnce(context.Background(), false)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)
			prom, err := os.ReadFile(cfg.Output.MetricsFile)
			require.NoError(t, err)
			assert.Contains(t, string(prom), `crvx_renders_total{status="`+tt.status+`"} 1`)
			assert.NoDirExists(t, cfg.Output.Dir, "nothing is exported after a failure")
			sharedtest.AssertLogAttr(t, logs, "status", tt.status)
		})
	}
}

func TestRunOnce_CachesAndRefreshes(t *testing.T) {
	src := &stubSource{}
	a, _ := newTestApp(t, testConfig(t), src)
	ctx := context.Background()

	_, err := a.RunOnce(ctx, false)
	require.NoError(t, err)
	_, err = a.RunOnce(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())

	_, err = a.RunOnce(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestInvalidate(t *testing.T) {
	src := &stubSource{}
	a, logs := newTestApp(t, testConfig(t), src)
	ctx := context.Background()

	_, err := a.RunOnce(ctx, false)
	require.NoError(t, err)

	a.Invalidate(ctx)
	_, err = a.RunOnce(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, int32(2), src.calls.Load())
	assert.True(t, logs.ContainsMessage("cache invalidated"))
}

func TestRunScheduled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Source.CacheTTL = 0
	src := &stubSource{}
	a, _ := newTestApp(t, cfg, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.RunScheduled(ctx, 50*time.Millisecond) }()

	require.Eventually(t, func() bool { return src.calls.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestRunScheduled_InvalidInterval(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t), &stubSource{})
	err := a.RunScheduled(context.Background(), 0)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, "invariant", statusOf(apperrors.NewInvariantViolation("x")))
	assert.Equal(t, "error", statusOf(errors.New("plain")))
}
