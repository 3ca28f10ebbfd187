package domain

import (
	"time"
)

// GradeCount is the number of sends of a grade on a date, with running
// totals per grade in ascending date order.
type GradeCount struct {
	Date        time.Time `json:"date"`
	Grade       int       `json:"grade"`
	Count       int       `json:"count"`
	CountCSum   int       `json:"count_csum"`
	VPoints     float64   `json:"v_points"`
	VPointsCSum float64   `json:"v_points_csum"`
}

// PyramidTarget is the total send count of a grade and its pyramid target.
type PyramidTarget struct {
	Grade       int `json:"grade"`
	TotalCount  int `json:"total_count"`
	TargetCount int `json:"target_count"`
}

// TopKMean is the mean grade of the K hardest sends within a month.
type TopKMean struct {
	Month    time.Time `json:"month"`
	K        int       `json:"k"`
	MeanTopK float64   `json:"mean_top_k"`
}

// CumulativeTopKMean is the mean grade of the K hardest sends logged up to
// the end of a month.
type CumulativeTopKMean struct {
	Month       time.Time `json:"month"`
	K           int       `json:"k"`
	CumMeanTopK float64   `json:"cum_mean_top_k"`
}

// ActivityDay marks a date with the kind of climbing done on it.
type ActivityDay struct {
	Date        time.Time `json:"date"`
	WorkoutType string    `json:"workout_type"`
}

// AttemptCount counts attempts by grade, attempt number and outcome.
type AttemptCount struct {
	Grade      int  `json:"grade"`
	AttemptNum int  `json:"attempt_num"`
	Sent       bool `json:"sent"`
	Count      int  `json:"count"`
}

// SessionPoints summarises the weighted points of one session's sends.
type SessionPoints struct {
	Date        time.Time `json:"date"`
	WorkoutType string    `json:"workout_type"`
	Sends       int       `json:"sends"`
	VPointsSum  float64   `json:"v_points_total_sess"`
	VPointsMean float64   `json:"v_points_mean_sess"`
}

// WorkoutGradeCount counts sends per workout type and grade.
type WorkoutGradeCount struct {
	WorkoutType string `json:"workout_type"`
	Grade       int    `json:"grade"`
	Count       int    `json:"count"`
}
