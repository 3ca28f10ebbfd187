package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"crvx/internal/config"
	apperrors "crvx/internal/errors"
)

// WorkbookWriter writes all tables into one .xlsx file, one sheet per table
type WorkbookWriter struct {
	path string
}

// NewWorkbookWriter creates a workbook writer for path
func NewWorkbookWriter(path string) *WorkbookWriter {
	return &WorkbookWriter{path: path}
}

// Export writes tables to the workbook, replacing any existing file
func (w *WorkbookWriter) Export(tables []Table) error {
	if len(tables) == 0 {
		return apperrors.NewExportError("no tables to export", nil)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Creator: config.AppName,
		Title:   config.AppName + " derived tables",
		Version: config.AppVersion,
	}); err != nil {
		return apperrors.NewExportError("failed to set workbook properties", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.NewExportError("failed to create header style", err)
	}

	for i, t := range tables {
		if err := w.writeSheet(f, i, t, header); err != nil {
			return apperrors.NewExportError(fmt.Sprintf("failed to write sheet %s", t.Name), err).
				WithContext("table", t.Name)
		}
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return apperrors.NewExportError("failed to create directory", err)
	}
	if err := f.SaveAs(w.path); err != nil {
		return apperrors.NewExportError("failed to save workbook", err).WithContext("path", w.path)
	}

	slog.Debug("Workbook written", slog.String("path", w.path), slog.Int("sheets", len(tables)))
	return nil
}

func (w *WorkbookWriter) writeSheet(f *excelize.File, index int, t Table, headerStyle int) error {
	if index == 0 {
		if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(t.Name); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(t.Name)
	if err != nil {
		return err
	}

	headers := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for c, v := range row {
			values[c] = xlsxValue(v)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	return sw.Flush()
}
