package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"crvx/internal/config"
	"crvx/internal/dataprocessing"
	apperrors "crvx/internal/errors"
	"crvx/internal/shared/testutil"
	"crvx/pkg/contracts/domain"
)

func fixtureDataset(t *testing.T) *domain.Dataset {
	t.Helper()
	p, err := dataprocessing.NewPipeline(dataprocessing.DefaultOptions(), nil, nil, nil)
	require.NoError(t, err)
	ds, err := p.Run(context.Background(), testutil.NewClimbingLogFixtures().RawTables(), dataprocessing.Filter{})
	require.NoError(t, err)
	return ds
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "missing BOM")

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"string", "volume", "volume"},
		{"int", 7, "7"},
		{"int64", int64(-1), "-1"},
		{"float", 13.4, "13.40"},
		{"half", 0.5, "0.50"},
		{"bool", true, "true"},
		{"date", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), "2023-01-05"},
		{"month", Month(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)), "2023-02"},
		{"duration", 90 * time.Minute, "90.00"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.in))
		})
	}
}

func TestTables(t *testing.T) {
	ds := fixtureDataset(t)
	tables := Tables(ds)

	byName := map[string]Table{}
	for _, tbl := range tables {
		for _, row := range tbl.Rows {
			require.Len(t, row, len(tbl.Headers), tbl.Name)
		}
		byName[tbl.Name] = tbl
	}
	assert.Len(t, byName, len(tables), "table names are unique")

	assert.Len(t, byName[TableUnitClimbs].Rows, len(ds.UnitClimbs))
	assert.Len(t, byName[TableGradeCounts].Rows, len(ds.GradeCounts))
	assert.Equal(t, []string{"v_grade", "total_count", "target_count"}, byName[TablePyramid].Headers)
}

func TestCSVWriter_ExportTables(t *testing.T) {
	dir := t.TempDir()
	tables := []Table{
		{
			Name:    TablePyramid,
			Headers: []string{"v_grade", "total_count", "target_count"},
			Rows:    [][]interface{}{{5, 2, 6}, {6, 3, 3}, {7, 1, 1}},
		},
		{
			Name:    TableSessionPts,
			Headers: []string{"date", "workout_type", "sends", "v_points_total_sess", "v_points_mean_sess"},
			Rows:    [][]interface{}{{time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), "volume, easy", 2, 4.5, 2.25}},
		},
	}

	paths, err := NewCSVWriter(filepath.Join(dir, "csv")).ExportTables(tables)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "csv", "pyramid.csv"), paths[0])

	assert.Equal(t, [][]string{
		{"v_grade", "total_count", "target_count"},
		{"5", "2", "6"},
		{"6", "3", "3"},
		{"7", "1", "1"},
	}, readCSV(t, paths[0]))

	assert.Equal(t, [][]string{
		{"date", "workout_type", "sends", "v_points_total_sess", "v_points_mean_sess"},
		{"2023-01-05", "volume, easy", "2", "4.50", "2.25"},
	}, readCSV(t, paths[1]))
}

func TestCSVWriter_Overwrites(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	require.NoError(t, w.WriteSimpleCSV("t.csv", []string{"a"}, [][]string{{"1"}, {"2"}, {"3"}}))
	require.NoError(t, w.WriteSimpleCSV("t.csv", []string{"a"}, [][]string{{"9"}}))

	assert.Equal(t, [][]string{{"a"}, {"9"}}, readCSV(t, filepath.Join(dir, "t.csv")))
}

func TestCSVWriter_ExportError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewCSVWriter(blocker).ExportTables([]Table{{Name: "x", Headers: []string{"a"}}})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExport))
}

func TestWorkbookWriter_Export(t *testing.T) {
	ds := fixtureDataset(t)
	tables := Tables(ds)
	path := filepath.Join(t.TempDir(), "out", "crvx.xlsx")

	require.NoError(t, NewWorkbookWriter(path).Export(tables))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	names := make([]string, len(tables))
	for i, tbl := range tables {
		names[i] = tbl.Name
	}
	assert.Equal(t, names, f.GetSheetList())

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, config.AppName, props.Creator)
	assert.Equal(t, config.AppVersion, props.Version)

	rows, err := f.GetRows(TablePyramid)
	require.NoError(t, err)
	require.Len(t, rows, len(ds.Pyramid)+1)
	assert.Equal(t, []string{"v_grade", "total_count", "target_count"}, rows[0])

	top, err := f.GetRows(TableTopK)
	require.NoError(t, err)
	require.Greater(t, len(top), 1)
	assert.Equal(t, "2023-01", top[1][0])
}

func TestWorkbookWriter_NoTables(t *testing.T) {
	err := NewWorkbookWriter(filepath.Join(t.TempDir(), "x.xlsx")).Export(nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExport))
}

func TestJSONWriter_Export(t *testing.T) {
	ds := fixtureDataset(t)
	ds.RunID = "run-42"
	path := filepath.Join(t.TempDir(), "dataset.json")

	require.NoError(t, NewJSONWriter(path).Export(ds))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded domain.Dataset
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-42", decoded.RunID)
	assert.Equal(t, ds.Pyramid, decoded.Pyramid)
	assert.Len(t, decoded.UnitClimbs, len(ds.UnitClimbs))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
