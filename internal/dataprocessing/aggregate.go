package dataprocessing

import (
	"sort"
	"time"

	"crvx/pkg/contracts/domain"
)

type dateGrade struct {
	date  time.Time
	grade int
}

// countSends groups sent unit climbs by (date, grade).
func countSends(units []domain.UnitClimb) map[dateGrade]int {
	counts := make(map[dateGrade]int)
	for _, u := range units {
		if !u.Sent {
			continue
		}
		counts[dateGrade{date: u.Date, grade: u.Grade}]++
	}
	return counts
}

// ObservedDatesAndGrades returns the sorted distinct dates and grades of the
// unit climbs, sent or not.
func ObservedDatesAndGrades(units []domain.UnitClimb) ([]time.Time, []int) {
	dateSet := make(map[time.Time]struct{})
	gradeSet := make(map[int]struct{})
	for _, u := range units {
		dateSet[u.Date] = struct{}{}
		gradeSet[u.Grade] = struct{}{}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sortDates(dates)

	grades := make([]int, 0, len(gradeSet))
	for g := range gradeSet {
		grades = append(grades, g)
	}
	sort.Ints(grades)
	return dates, grades
}

// AggregateGradeCounts counts sends per (date, grade) over the full cross
// product of observed dates and grades, zero-filling unobserved pairs. Rows
// are ordered by date then grade and carry per-grade running totals of the
// count and of the weighted points.
func AggregateGradeCounts(units []domain.UnitClimb) []domain.GradeCount {
	counts := countSends(units)
	dates, grades := ObservedDatesAndGrades(units)

	out := make([]domain.GradeCount, 0, len(dates)*len(grades))
	for _, d := range dates {
		for _, g := range grades {
			n := counts[dateGrade{date: d, grade: g}]
			out = append(out, domain.GradeCount{
				Date:    d,
				Grade:   g,
				Count:   n,
				VPoints: float64(n) * GradeWeight(g),
			})
		}
	}
	return accumulate(out)
}

// accumulate fills the running totals. Input must be ordered by date.
func accumulate(rows []domain.GradeCount) []domain.GradeCount {
	countSum := make(map[int]int)
	pointSum := make(map[int]float64)
	for i := range rows {
		g := rows[i].Grade
		countSum[g] += rows[i].Count
		pointSum[g] += rows[i].VPoints
		rows[i].CountCSum = countSum[g]
		rows[i].VPointsCSum = pointSum[g]
	}
	return rows
}
