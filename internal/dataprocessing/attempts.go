package dataprocessing

import (
	"sort"

	"crvx/pkg/contracts/domain"
)

// SummarizeAttempts counts attempts per (grade, attempt number, outcome),
// ordered by grade, attempt number and then failures before sends.
func SummarizeAttempts(attempts []domain.AttemptUnit) []domain.AttemptCount {
	type key struct {
		grade      int
		attemptNum int
		sent       bool
	}
	counts := make(map[key]int)
	for _, a := range attempts {
		counts[key{grade: a.Grade, attemptNum: a.AttemptNum, sent: a.Sent}]++
	}

	out := make([]domain.AttemptCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.AttemptCount{
			Grade:      k.grade,
			AttemptNum: k.attemptNum,
			Sent:       k.sent,
			Count:      n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Grade != b.Grade {
			return a.Grade < b.Grade
		}
		if a.AttemptNum != b.AttemptNum {
			return a.AttemptNum < b.AttemptNum
		}
		return !a.Sent && b.Sent
	})
	return out
}
