package exporter

import (
	"time"

	"crvx/internal/config"
	"crvx/pkg/contracts/domain"
)

// Table is one derived table ready to be written. Rows hold typed values.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// Records returns the rows formatted for CSV output
func (t Table) Records() [][]string {
	records := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = formatCell(v)
		}
		records[i] = rec
	}
	return records
}

// Table names, also used as file and sheet names.
const (
	TableClimbs       = config.TableClimbs
	TableSessions     = config.TableSessions
	TableOutdoor      = config.TableOutdoor
	TableUnitClimbs   = "unit_climbs"
	TableAttempts     = "attempts"
	TableGradeCounts  = "grade_counts"
	TablePyramid      = "pyramid"
	TableTopK         = "top_k"
	TableCumTopK      = "cum_top_k"
	TableActivity     = "activity"
	TableAttemptStats = "attempt_stats"
	TableSessionPts   = "session_points"
	TableWorkoutTypes = "workout_grades"
)

// Tables flattens every table of a dataset, normalized inputs first
func Tables(ds *domain.Dataset) []Table {
	return []Table{
		climbsTable(ds.Normalized.Climbs),
		sessionsTable(ds.Normalized.Sessions),
		outdoorTable(ds.Normalized.Outdoor),
		unitClimbsTable(ds.UnitClimbs),
		attemptsTable(ds.Attempts),
		gradeCountsTable(ds.GradeCounts),
		pyramidTable(ds.Pyramid),
		topKTable(ds.TopK),
		cumTopKTable(ds.CumTopK),
		activityTable(ds.Activity),
		attemptStatsTable(ds.AttemptStats),
		sessionPointsTable(ds.Sessions),
		workoutTypesTable(ds.WorkoutTypes),
	}
}

func climbsTable(rows []domain.ClimbRecord) Table {
	t := Table{Name: TableClimbs, Headers: []string{
		config.FieldDate, config.FieldGradeLabel, config.FieldCountMultiplier, config.FieldAttempts, config.FieldSent,
	}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Date, r.GradeLabel, r.CountMultiplier, r.Attempts, r.Sent})
	}
	return t
}

func sessionsTable(rows []domain.SessionRecord) Table {
	t := Table{Name: TableSessions, Headers: []string{
		config.FieldDate, config.FieldWorkoutType, config.FieldClimbingTime + "_min", config.FieldTotalTime + "_min",
	}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Date, r.WorkoutType, r.ClimbingTime, r.TotalTime})
	}
	return t
}

func outdoorTable(rows []domain.OutdoorRecord) Table {
	t := Table{Name: TableOutdoor, Headers: []string{config.FieldDate, config.FieldGradeLabel}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Date, r.GradeLabel})
	}
	return t
}

func unitClimbsTable(rows []domain.UnitClimb) Table {
	t := Table{Name: TableUnitClimbs, Headers: []string{"date", "v_grade", "sent", "attempts", "workout_type"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Date, r.Grade, r.Sent, r.Attempts, r.WorkoutType})
	}
	return t
}

func attemptsTable(rows []domain.AttemptUnit) Table {
	t := Table{Name: TableAttempts, Headers: []string{"date", "v_grade", "attempt_num", "sent"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Date, r.Grade, r.AttemptNum, r.Sent})
	}
	return t
}

func gradeCountsTable(rows []domain.GradeCount) Table {
	t := Table{Name: TableGradeCounts, Headers: []string{
		"date", "v_grade", "count", "count_csum", "v_points", "v_points_csum",
	}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Date, r.Grade, r.Count, r.CountCSum, r.VPoints, r.VPointsCSum})
	}
	return t
}

func pyramidTable(rows []domain.PyramidTarget) Table {
	t := Table{Name: TablePyramid, Headers: []string{"v_grade", "total_count", "target_count"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Grade, r.TotalCount, r.TargetCount})
	}
	return t
}

func topKTable(rows []domain.TopKMean) Table {
	t := Table{Name: TableTopK, Headers: []string{"month", "k", "mean_top_k"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{Month(r.Month), r.K, r.MeanTopK})
	}
	return t
}

func cumTopKTable(rows []domain.CumulativeTopKMean) Table {
	t := Table{Name: TableCumTopK, Headers: []string{"month", "k", "cum_mean_top_k"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{Month(r.Month), r.K, r.CumMeanTopK})
	}
	return t
}

func activityTable(rows []domain.ActivityDay) Table {
	t := Table{Name: TableActivity, Headers: []string{"date", "workout_type"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Date, r.WorkoutType})
	}
	return t
}

func attemptStatsTable(rows []domain.AttemptCount) Table {
	t := Table{Name: TableAttemptStats, Headers: []string{"v_grade", "attempt_num", "sent", "count"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Grade, r.AttemptNum, r.Sent, r.Count})
	}
	return t
}

func sessionPointsTable(rows []domain.SessionPoints) Table {
	t := Table{Name: TableSessionPts, Headers: []string{
		"date", "workout_type", "sends", "v_points_total_sess", "v_points_mean_sess",
	}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Date, r.WorkoutType, r.Sends, r.VPointsSum, r.VPointsMean})
	}
	return t
}

func workoutTypesTable(rows []domain.WorkoutGradeCount) Table {
	t := Table{Name: TableWorkoutTypes, Headers: []string{"workout_type", "v_grade", "count"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.WorkoutType, r.Grade, r.Count})
	}
	return t
}

// xlsxValue converts a typed cell into a value excelize writes natively
func xlsxValue(v interface{}) interface{} {
	switch c := v.(type) {
	case Month:
		return formatMonth(time.Time(c))
	case time.Time:
		return formatDate(c)
	case time.Duration:
		return c.Minutes()
	default:
		return v
	}
}
