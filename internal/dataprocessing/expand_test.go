package dataprocessing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crvx/internal/errors"
	"crvx/pkg/contracts/domain"
)

func TestExpandMultipliers(t *testing.T) {
	climbs := []domain.ClimbRecord{
		{Date: date("2023-01-07"), GradeLabel: "6", CountMultiplier: 1, Attempts: 2, Sent: true},
		{Date: date("2023-01-05"), GradeLabel: "3", CountMultiplier: 3, Attempts: 1, Sent: true},
		{Date: date("2023-01-05"), GradeLabel: "4-5", CountMultiplier: 2, Attempts: 1},
	}

	out, err := ExpandMultipliers(climbs)
	require.NoError(t, err)
	require.Len(t, out, 6)

	labels := make([]string, len(out))
	for i, c := range out {
		labels[i] = c.GradeLabel
		assert.Equal(t, 1, c.CountMultiplier)
	}
	assert.Equal(t, []string{"3", "3", "3", "4-5", "4-5", "6"}, labels)

	assert.Equal(t, 3, climbs[1].CountMultiplier, "input is not modified")
	assert.Equal(t, date("2023-01-07"), climbs[0].Date)
}

func TestExpandMultipliers_RowCountProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(30)
		climbs := make([]domain.ClimbRecord, n)
		sum := 0
		for i := range climbs {
			m := 1 + rng.Intn(5)
			sum += m
			climbs[i] = domain.ClimbRecord{
				Date:            date("2023-01-01").AddDate(0, 0, rng.Intn(10)),
				GradeLabel:      "2",
				CountMultiplier: m,
				Attempts:        1,
			}
		}

		out, err := ExpandMultipliers(climbs)
		require.NoError(t, err)
		assert.Len(t, out, sum)
		for i := 1; i < len(out); i++ {
			assert.False(t, out[i].Date.Before(out[i-1].Date))
		}
	}
}

func TestExpandMultipliers_NonPositive(t *testing.T) {
	_, err := ExpandMultipliers([]domain.ClimbRecord{
		{Date: date("2023-01-05"), GradeLabel: "3", CountMultiplier: 0},
	})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvariant))
}

func TestResolveUnitClimbs(t *testing.T) {
	expanded := []domain.ClimbRecord{
		{Date: date("2023-01-05"), GradeLabel: "3", CountMultiplier: 1, Attempts: 2, Sent: true},
		{Date: date("2023-01-05"), GradeLabel: "B", CountMultiplier: 1, Attempts: 1, Sent: true},
		{Date: date("2023-01-07"), GradeLabel: "4-5", CountMultiplier: 1, Attempts: 1},
	}
	types := WorkoutTypesByDate([]domain.SessionRecord{
		{Date: date("2023-01-05"), WorkoutType: "strength"},
		{Date: date("2023-01-07"), WorkoutType: "volume"},
	})

	units, err := ResolveUnitClimbs(expanded, NewGradeResolver(rand.New(rand.NewSource(1)), true), types)
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, domain.UnitClimb{
		Date: date("2023-01-05"), Grade: 3, Sent: true, Attempts: 2, WorkoutType: "strength",
	}, units[0])
	assert.Contains(t, []int{4, 5}, units[1].Grade)
	assert.Equal(t, "volume", units[1].WorkoutType)
}

func TestExpandAttempts(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		sent     bool
		wantLen  int
	}{
		{"single send", 1, true, 1},
		{"single fail", 1, false, 1},
		{"send on fourth", 4, true, 4},
		{"four fails", 4, false, 4},
		{"missing attempts", 0, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := domain.UnitClimb{Date: date("2023-01-05"), Grade: 5, Sent: tt.sent, Attempts: tt.attempts}
			out := ExpandAttempts([]domain.UnitClimb{unit})
			require.Len(t, out, tt.wantLen)

			for i, a := range out {
				assert.Equal(t, i+1, a.AttemptNum)
				assert.Equal(t, 5, a.Grade)
				if a.AttemptNum < tt.wantLen {
					assert.False(t, a.Sent)
				} else {
					assert.Equal(t, tt.sent, a.Sent)
				}
			}
		})
	}
}

func TestExpandAttempts_SequencesStayTogether(t *testing.T) {
	units := []domain.UnitClimb{
		{Date: date("2023-01-05"), Grade: 3, Sent: true, Attempts: 2},
		{Date: date("2023-01-05"), Grade: 6, Sent: false, Attempts: 3},
	}
	out := ExpandAttempts(units)

	got := make([][2]int, len(out))
	for i, a := range out {
		got[i] = [2]int{a.Grade, a.AttemptNum}
	}
	assert.Equal(t, [][2]int{{3, 1}, {3, 2}, {6, 1}, {6, 2}, {6, 3}}, got)
	assert.True(t, out[1].Sent)
	assert.False(t, out[4].Sent)
}
