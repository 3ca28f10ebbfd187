package domain

import (
	"time"
)

// BeginnerGrade is the integer used for the "VB" band when it is kept.
const BeginnerGrade = -1

// Well-known workout types.
const (
	WorkoutOutdoors = "outdoors"
)

// ClimbRecord is one normalized row of the indoor climbs table.
// A single row may stand for several physical climbs via CountMultiplier.
type ClimbRecord struct {
	Date            time.Time `json:"date"`
	GradeLabel      string    `json:"grade_label"`
	CountMultiplier int       `json:"count_multiplier"`
	Attempts        int       `json:"attempts"`
	Sent            bool      `json:"sent"`
}

// SessionRecord is one normalized row of the indoor sessions table.
type SessionRecord struct {
	Date         time.Time     `json:"date"`
	WorkoutType  string        `json:"workout_type"`
	ClimbingTime time.Duration `json:"climbing_time,omitempty"`
	TotalTime    time.Duration `json:"total_time,omitempty"`
}

// OutdoorRecord is one normalized row of the outdoor climbs table.
// Every outdoor date is treated as an implicit "outdoors" session.
type OutdoorRecord struct {
	Date       time.Time `json:"date"`
	GradeLabel string    `json:"grade_label"`
}

// NormalizedTables holds the three tables after schema normalization.
type NormalizedTables struct {
	Climbs   []ClimbRecord   `json:"climbs"`
	Sessions []SessionRecord `json:"sessions"`
	Outdoor  []OutdoorRecord `json:"outdoor"`
}

// UnitClimb is exactly one physical climb after multiplier expansion and
// grade resolution.
type UnitClimb struct {
	Date        time.Time `json:"date"`
	Grade       int       `json:"grade"`
	Sent        bool      `json:"sent"`
	Attempts    int       `json:"attempts"`
	WorkoutType string    `json:"workout_type"`
}

// AttemptUnit is one individual attempt of a UnitClimb.
// Only the final attempt of a sequence can be a send.
type AttemptUnit struct {
	Date       time.Time `json:"date"`
	Grade      int       `json:"grade"`
	AttemptNum int       `json:"attempt_num"`
	Sent       bool      `json:"sent"`
}
