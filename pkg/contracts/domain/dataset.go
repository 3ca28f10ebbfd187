package domain

import (
	"time"
)

// WarningKind classifies non-fatal findings of a pipeline run.
type WarningKind string

const (
	WarningRowsDropped WarningKind = "rows_dropped"
)

// Warning is a user-visible, non-fatal data quality finding.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Table   string      `json:"table"`
	Count   int         `json:"count"`
	Message string      `json:"message"`
}

// Dataset is everything one render produces. The rendering layer consumes
// it read-only.
type Dataset struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	FetchedAt   time.Time `json:"fetched_at"`
	Seed        int64     `json:"seed"`

	Normalized NormalizedTables `json:"normalized"`

	UnitClimbs   []UnitClimb          `json:"unit_climbs"`
	Attempts     []AttemptUnit        `json:"attempts"`
	GradeCounts  []GradeCount         `json:"grade_counts"`
	Pyramid      []PyramidTarget      `json:"pyramid"`
	TopK         []TopKMean           `json:"top_k"`
	CumTopK      []CumulativeTopKMean `json:"cum_top_k"`
	Activity     []ActivityDay        `json:"activity"`
	AttemptStats []AttemptCount       `json:"attempt_stats"`
	Sessions     []SessionPoints      `json:"session_points"`
	WorkoutTypes []WorkoutGradeCount  `json:"workout_grades"`

	Warnings []Warning `json:"warnings,omitempty"`
}
