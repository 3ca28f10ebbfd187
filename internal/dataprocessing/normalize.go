package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"crvx/internal/config"
	apperrors "crvx/internal/errors"
	"crvx/pkg/contracts/domain"
)

// NormalizeResult holds the typed tables and the warnings raised while
// building them.
type NormalizeResult struct {
	Tables   domain.NormalizedTables
	Warnings []domain.Warning
}

// Required canonical fields per table. A row missing any of them is dropped.
var (
	climbRequired   = []string{config.FieldDate, config.FieldGradeLabel}
	sessionRequired = []string{config.FieldDate, config.FieldWorkoutType}
	outdoorRequired = []string{config.FieldDate, config.FieldGradeLabel}
)

// Normalize promotes the header row of each raw table, renames columns to
// their canonical names and types every value. Blank rows are ignored. Rows
// with a required value missing are dropped and counted in a warning.
func Normalize(raw *domain.RawTables) (*NormalizeResult, error) {
	if raw == nil {
		return nil, apperrors.NewValidationError("no raw tables to normalize")
	}

	result := &NormalizeResult{}

	climbs, dropped, err := normalizeClimbs(raw.Climbs)
	if err != nil {
		return nil, err
	}
	result.Tables.Climbs = climbs
	result.addDropped(config.TableClimbs, dropped)

	sessions, dropped, err := normalizeSessions(raw.Sessions)
	if err != nil {
		return nil, err
	}
	result.Tables.Sessions = sessions
	result.addDropped(config.TableSessions, dropped)

	outdoor, dropped, err := normalizeOutdoor(raw.Outdoor)
	if err != nil {
		return nil, err
	}
	result.Tables.Outdoor = outdoor
	result.addDropped(config.TableOutdoor, dropped)

	return result, nil
}

func (r *NormalizeResult) addDropped(table string, n int) {
	if n == 0 {
		return
	}
	r.Warnings = append(r.Warnings, domain.Warning{
		Kind:    domain.WarningRowsDropped,
		Table:   table,
		Count:   n,
		Message: fmt.Sprintf("dropped %d %s rows with missing values", n, table),
	})
}

func normalizeClimbs(table domain.RawTable) ([]domain.ClimbRecord, int, error) {
	cols, err := indexColumns(config.TableClimbs, table.Header(), config.ClimbColumns, climbRequired)
	if err != nil || cols == nil {
		return nil, 0, err
	}

	var (
		records []domain.ClimbRecord
		dropped int
	)
	for i, row := range table.Rows() {
		rc := cols.row(config.TableClimbs, i, row)
		if rc.blank() {
			continue
		}
		if rc.missing(climbRequired) {
			dropped++
			continue
		}

		date, err := rc.date()
		if err != nil {
			return nil, 0, err
		}
		label := StripGradePrefix(rc.get(config.FieldGradeLabel))
		if _, err := ParseGradeLabel(label); err != nil {
			return nil, 0, rc.parseError(config.FieldGradeLabel, err)
		}
		multiplier, err := rc.positiveInt(config.FieldCountMultiplier)
		if err != nil {
			return nil, 0, err
		}
		attempts, err := rc.positiveInt(config.FieldAttempts)
		if err != nil {
			return nil, 0, err
		}

		records = append(records, domain.ClimbRecord{
			Date:            date,
			GradeLabel:      label,
			CountMultiplier: multiplier,
			Attempts:        attempts,
			Sent:            rc.cell(config.FieldSent) == config.TrueLiteral,
		})
	}
	return records, dropped, nil
}

func normalizeSessions(table domain.RawTable) ([]domain.SessionRecord, int, error) {
	cols, err := indexColumns(config.TableSessions, table.Header(), config.SessionColumns, sessionRequired)
	if err != nil || cols == nil {
		return nil, 0, err
	}

	var (
		records []domain.SessionRecord
		dropped int
	)
	for i, row := range table.Rows() {
		rc := cols.row(config.TableSessions, i, row)
		if rc.blank() {
			continue
		}
		if rc.missing(sessionRequired) {
			dropped++
			continue
		}

		date, err := rc.date()
		if err != nil {
			return nil, 0, err
		}
		climbing, err := rc.duration(config.FieldClimbingTime)
		if err != nil {
			return nil, 0, err
		}
		total, err := rc.duration(config.FieldTotalTime)
		if err != nil {
			return nil, 0, err
		}

		records = append(records, domain.SessionRecord{
			Date:         date,
			WorkoutType:  rc.get(config.FieldWorkoutType),
			ClimbingTime: climbing,
			TotalTime:    total,
		})
	}
	return records, dropped, nil
}

func normalizeOutdoor(table domain.RawTable) ([]domain.OutdoorRecord, int, error) {
	cols, err := indexColumns(config.TableOutdoor, table.Header(), config.OutdoorColumns, outdoorRequired)
	if err != nil || cols == nil {
		return nil, 0, err
	}

	var (
		records []domain.OutdoorRecord
		dropped int
	)
	for i, row := range table.Rows() {
		rc := cols.row(config.TableOutdoor, i, row)
		if rc.blank() {
			continue
		}
		if rc.missing(outdoorRequired) {
			dropped++
			continue
		}

		date, err := rc.date()
		if err != nil {
			return nil, 0, err
		}
		// Outdoor grades may use any scale and are never resolved.
		records = append(records, domain.OutdoorRecord{
			Date:       date,
			GradeLabel: StripGradePrefix(rc.get(config.FieldGradeLabel)),
		})
	}
	return records, dropped, nil
}

// columnIndex maps canonical field names to positions in a raw row.
type columnIndex map[string]int

// indexColumns builds the column index of a table from its header row. An
// empty table yields a nil index and no error.
func indexColumns(table string, header []string, renames map[string]string, required []string) (columnIndex, error) {
	if len(header) == 0 {
		return nil, nil
	}

	idx := make(columnIndex, len(renames))
	for i, h := range header {
		field, ok := renames[strings.TrimSpace(h)]
		if !ok {
			continue
		}
		if _, seen := idx[field]; !seen {
			idx[field] = i
		}
	}

	for _, field := range required {
		if _, ok := idx[field]; !ok {
			return nil, apperrors.NewConfigError(
				fmt.Sprintf("%s table is missing required column %q", table, headerFor(renames, field)), nil).
				WithContext("table", table)
		}
	}
	return idx, nil
}

func headerFor(renames map[string]string, field string) string {
	for header, f := range renames {
		if f == field {
			return header
		}
	}
	return field
}

// rowCursor reads typed values out of one raw row.
type rowCursor struct {
	table string
	// line is the 1-based sheet row, header included.
	line  int
	cols  columnIndex
	cells []string
}

func (c columnIndex) row(table string, i int, cells []string) rowCursor {
	return rowCursor{table: table, line: i + 2, cols: c, cells: cells}
}

// cell returns the cell for field as stored. The Sheets API omits trailing
// empty cells, so short rows read as empty.
func (r rowCursor) cell(field string) string {
	i, ok := r.cols[field]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// get returns the trimmed cell for field
func (r rowCursor) get(field string) string {
	return strings.TrimSpace(r.cell(field))
}

func (r rowCursor) blank() bool {
	for _, cell := range r.cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (r rowCursor) missing(fields []string) bool {
	for _, f := range fields {
		if r.get(f) == "" {
			return true
		}
	}
	return false
}

func (r rowCursor) parseError(field string, cause error) error {
	return apperrors.NewParsingError(
		fmt.Sprintf("%s row %d column %s", r.table, r.line, field), cause).
		WithContext("table", r.table).
		WithContext("row", r.line).
		WithContext("column", field)
}

func (r rowCursor) date() (time.Time, error) {
	t, err := ParseDate(r.get(config.FieldDate))
	if err != nil {
		return time.Time{}, r.parseError(config.FieldDate, err)
	}
	return t, nil
}

// positiveInt reads an optional count column. Empty cells count as 1.
func (r rowCursor) positiveInt(field string) (int, error) {
	s := r.get(field)
	if s == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Sheets renders whole numbers in numeric cells as e.g. "2.0" on export.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, r.parseError(field, fmt.Errorf("not an integer: %q", s))
		}
		n = int(f)
	}
	if n < 1 {
		return 0, r.parseError(field, fmt.Errorf("must be positive, got %d", n))
	}
	return n, nil
}

func (r rowCursor) duration(field string) (time.Duration, error) {
	d, err := ParseDuration(r.get(field))
	if err != nil {
		return 0, r.parseError(field, err)
	}
	return d, nil
}

// ParseDate parses a DD/MM/YYYY cell as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(config.DateLayout, strings.TrimSpace(s), time.UTC)
}

// FormatDate renders a date back into the spreadsheet's DD/MM/YYYY form.
func FormatDate(t time.Time) string {
	return t.Format(config.DateLayout)
}

// ParseDuration reads a session time written as H:MM, H:MM:SS or a plain
// number of minutes. An empty cell is a zero duration.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if !strings.Contains(s, ":") {
		minutes, err := strconv.ParseFloat(s, 64)
		if err != nil || minutes < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(minutes * float64(time.Minute)), nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || (i > 0 && n > 59) {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		d += time.Duration(n) * units[i]
	}
	return d, nil
}
