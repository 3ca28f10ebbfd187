package dataprocessing

import (
	"fmt"
	"sort"
	"time"

	apperrors "crvx/internal/errors"
	"crvx/pkg/contracts/domain"
)

// ExpandMultipliers replicates each climb CountMultiplier times. Rows are
// emitted in date order with ties kept in input order, and the copies of a
// row are adjacent. Output rows carry a multiplier of 1.
func ExpandMultipliers(climbs []domain.ClimbRecord) ([]domain.ClimbRecord, error) {
	ordered := make([]domain.ClimbRecord, len(climbs))
	copy(ordered, climbs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	expected := 0
	for _, c := range ordered {
		if c.CountMultiplier < 1 {
			return nil, apperrors.NewInvariantViolation(
				fmt.Sprintf("non-positive count multiplier %d on %s", c.CountMultiplier, FormatDate(c.Date)))
		}
		expected += c.CountMultiplier
	}

	out := make([]domain.ClimbRecord, 0, expected)
	for _, c := range ordered {
		unit := c
		unit.CountMultiplier = 1
		for n := 0; n < c.CountMultiplier; n++ {
			out = append(out, unit)
		}
	}

	if len(out) != expected {
		return nil, apperrors.NewInvariantViolation(
			fmt.Sprintf("multiplier expansion produced %d rows, expected %d", len(out), expected)).
			WithContext("expected", expected).
			WithContext("actual", len(out))
	}
	return out, nil
}

// ResolveUnitClimbs turns expanded climb rows into unit climbs, resolving
// each grade label in row order. Rows in the beginner band are dropped when
// the resolver is configured to do so. workoutTypes maps session dates to
// their workout type.
func ResolveUnitClimbs(expanded []domain.ClimbRecord, resolver *GradeResolver, workoutTypes map[time.Time]string) ([]domain.UnitClimb, error) {
	units := make([]domain.UnitClimb, 0, len(expanded))
	for _, c := range expanded {
		grade, keep, err := resolver.Resolve(c.GradeLabel)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}
		units = append(units, domain.UnitClimb{
			Date:        c.Date,
			Grade:       grade,
			Sent:        c.Sent,
			Attempts:    c.Attempts,
			WorkoutType: workoutTypes[c.Date],
		})
	}
	return units, nil
}

// ExpandAttempts emits one row per attempt of every unit climb. Only the
// last attempt of a sequence carries the climb's outcome.
func ExpandAttempts(units []domain.UnitClimb) []domain.AttemptUnit {
	total := 0
	for _, u := range units {
		total += attemptsOf(u)
	}

	out := make([]domain.AttemptUnit, 0, total)
	for _, u := range units {
		n := attemptsOf(u)
		for i := 1; i <= n; i++ {
			out = append(out, domain.AttemptUnit{
				Date:       u.Date,
				Grade:      u.Grade,
				AttemptNum: i,
				Sent:       i == n && u.Sent,
			})
		}
	}
	return out
}

func attemptsOf(u domain.UnitClimb) int {
	if u.Attempts < 1 {
		return 1
	}
	return u.Attempts
}

// WorkoutTypesByDate indexes session workout types by date.
func WorkoutTypesByDate(sessions []domain.SessionRecord) map[time.Time]string {
	out := make(map[time.Time]string, len(sessions))
	for _, s := range sessions {
		out[s.Date] = s.WorkoutType
	}
	return out
}
