package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"crvx/internal/config"
	apperrors "crvx/internal/errors"
	"crvx/internal/infrastructure"
	"crvx/pkg/contracts/domain"
)

// WorkbookSource reads the climbing log from a local .xlsx export of the
// spreadsheet. Named ranges are resolved through the workbook's defined
// names; a missing name falls back to the whole sheet.
type WorkbookSource struct {
	cfg    config.SourceConfig
	logger *slog.Logger
}

// NewWorkbookSource creates a workbook source
func NewWorkbookSource(cfg config.SourceConfig, logger *slog.Logger) *WorkbookSource {
	return &WorkbookSource{
		cfg:    cfg,
		logger: infrastructure.WithComponent(logger, "workbook_source"),
	}
}

// Fetch opens the workbook and reads the three tables
func (w *WorkbookSource) Fetch(ctx context.Context) (*domain.RawTables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(w.cfg.WorkbookPath)
	if err != nil {
		return nil, apperrors.NewSourceError("failed to open workbook", err).
			WithContext("path", w.cfg.WorkbookPath)
	}
	defer f.Close()

	climbs, err := readRange(f, w.cfg.ClimbsSheet, w.cfg.ClimbsRange)
	if err != nil {
		return nil, err
	}
	sessions, err := readRange(f, w.cfg.SessionsSheet, w.cfg.SessionsRange)
	if err != nil {
		return nil, err
	}
	outdoor, err := readRange(f, w.cfg.OutdoorSheet, "")
	if err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "workbook read",
		slog.String("path", w.cfg.WorkbookPath),
		slog.Int("climb_rows", len(climbs)),
		slog.Int("session_rows", len(sessions)),
		slog.Int("outdoor_rows", len(outdoor)))

	return &domain.RawTables{
		Climbs:    climbs,
		Sessions:  sessions,
		Outdoor:   outdoor,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// cellRect is an inclusive, 1-based cell rectangle
type cellRect struct {
	sheet      string
	col1, row1 int
	col2, row2 int
}

// readRange returns the cells of a named range, or of the whole sheet when
// name is empty or not defined in the workbook.
func readRange(f *excelize.File, sheet, name string) (domain.RawTable, error) {
	rect, ok, err := lookupDefinedName(f, name)
	if err != nil {
		return nil, err
	}
	if ok {
		sheet = rect.sheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewSourceError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	if !ok {
		return domain.RawTable(rows), nil
	}

	var table domain.RawTable
	for r := rect.row1; r <= rect.row2 && r <= len(rows); r++ {
		row := rows[r-1]
		var cells []string
		for c := rect.col1; c <= rect.col2 && c <= len(row); c++ {
			cells = append(cells, row[c-1])
		}
		table = append(table, cells)
	}
	return table, nil
}

func lookupDefinedName(f *excelize.File, name string) (cellRect, bool, error) {
	if name == "" {
		return cellRect{}, false, nil
	}
	for _, dn := range f.GetDefinedName() {
		if dn.Name != name {
			continue
		}
		rect, err := parseRefersTo(dn.RefersTo)
		if err != nil {
			return cellRect{}, false, apperrors.NewSourceError(fmt.Sprintf("invalid range %q", name), err)
		}
		return rect, true, nil
	}
	return cellRect{}, false, nil
}

// parseRefersTo parses a reference like 'Sheet Name'!$A$1:$E$20
func parseRefersTo(ref string) (cellRect, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "=")
	i := strings.LastIndex(ref, "!")
	if i < 0 {
		return cellRect{}, fmt.Errorf("missing sheet in %q", ref)
	}

	sheet := ref[:i]
	if strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") && len(sheet) >= 2 {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}

	cells := strings.ReplaceAll(ref[i+1:], "$", "")
	first, last, found := strings.Cut(cells, ":")
	if !found {
		last = first
	}

	rect := cellRect{sheet: sheet}
	var err error
	if rect.col1, rect.row1, err = excelize.CellNameToCoordinates(first); err != nil {
		return cellRect{}, err
	}
	if rect.col2, rect.row2, err = excelize.CellNameToCoordinates(last); err != nil {
		return cellRect{}, err
	}
	return rect, nil
}
