package dataprocessing

import (
	"sort"

	"crvx/pkg/contracts/domain"
)

// GradeTotals sums the send count of every grade, ascending by grade.
func GradeTotals(counts []domain.GradeCount) []domain.PyramidTarget {
	totals := make(map[int]int)
	for _, c := range counts {
		totals[c.Grade] += c.Count
	}

	out := make([]domain.PyramidTarget, 0, len(totals))
	for g, n := range totals {
		out = append(out, domain.PyramidTarget{Grade: g, TotalCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Grade < out[j].Grade })
	return out
}

// PyramidTargets fills TargetCount for totals sorted by ascending grade.
// The hardest grade targets its own total; each easier grade targets at
// least twice the next harder grade's target.
func PyramidTargets(totals []domain.PyramidTarget) []domain.PyramidTarget {
	out := make([]domain.PyramidTarget, len(totals))
	copy(out, totals)

	for i := len(out) - 1; i >= 0; i-- {
		target := out[i].TotalCount
		if i < len(out)-1 {
			target = max(target, 2*out[i+1].TargetCount)
		}
		out[i].TargetCount = target
	}
	return out
}

// BuildPyramid derives the grade totals and pyramid targets of a grade
// count table.
func BuildPyramid(counts []domain.GradeCount) []domain.PyramidTarget {
	return PyramidTargets(GradeTotals(counts))
}
