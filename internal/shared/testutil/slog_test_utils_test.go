package testutil

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"crvx/internal/config"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
		assert.True(t, handler.ContainsAttr("code", int64(500)))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("keeps attributes of derived loggers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With("component", "pipeline").Warn("dropped rows")

		AssertLogAttr(t, handler, "component", "pipeline")
		AssertLogContains(t, handler, slog.LevelWarn, "dropped")
	})

	t.Run("clear functionality", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.Info("message 2")
		assert.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})
}

func TestClimbingLogFixtures_WriteWorkbook(t *testing.T) {
	f := NewClimbingLogFixtures()
	path := filepath.Join(t.TempDir(), "log.xlsx")

	require.NoError(t, f.WriteWorkbook(path, f.RawTables()))

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(config.DefaultSessionsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string(f.SessionsTable()), rows)

	var names []string
	for _, dn := range wb.GetDefinedName() {
		names = append(names, dn.Name)
	}
	assert.ElementsMatch(t, []string{config.DefaultClimbsRange, config.DefaultSessionsRange}, names)
}
