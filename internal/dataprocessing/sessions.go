package dataprocessing

import (
	"sort"
	"time"

	"crvx/pkg/contracts/domain"
)

// SessionPointsByDate totals the weighted points of each session's sends.
// Sessions without sends report zero points. Rows are ordered by date.
func SessionPointsByDate(units []domain.UnitClimb, sessions []domain.SessionRecord) []domain.SessionPoints {
	type tally struct {
		sends  int
		points float64
	}
	byDate := make(map[time.Time]*tally, len(sessions))
	for _, u := range units {
		if !u.Sent {
			continue
		}
		t, ok := byDate[u.Date]
		if !ok {
			t = &tally{}
			byDate[u.Date] = t
		}
		t.sends++
		t.points += GradeWeight(u.Grade)
	}

	out := make([]domain.SessionPoints, 0, len(sessions))
	for _, s := range sessions {
		row := domain.SessionPoints{Date: s.Date, WorkoutType: s.WorkoutType}
		if t, ok := byDate[s.Date]; ok {
			row.Sends = t.sends
			row.VPointsSum = t.points
			row.VPointsMean = t.points / float64(t.sends)
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// WorkoutGradeCounts counts sends per workout type and grade.
func WorkoutGradeCounts(units []domain.UnitClimb) []domain.WorkoutGradeCount {
	type key struct {
		workout string
		grade   int
	}
	counts := make(map[key]int)
	for _, u := range units {
		if !u.Sent {
			continue
		}
		counts[key{workout: u.WorkoutType, grade: u.Grade}]++
	}

	out := make([]domain.WorkoutGradeCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.WorkoutGradeCount{WorkoutType: k.workout, Grade: k.grade, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WorkoutType != out[j].WorkoutType {
			return out[i].WorkoutType < out[j].WorkoutType
		}
		return out[i].Grade < out[j].Grade
	})
	return out
}
