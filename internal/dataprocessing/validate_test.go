package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crvx/internal/errors"
	"crvx/pkg/contracts/domain"
)

func TestValidateConsistency(t *testing.T) {
	climb := func(d string) domain.ClimbRecord {
		return domain.ClimbRecord{Date: date(d), GradeLabel: "3", CountMultiplier: 1, Attempts: 1}
	}
	session := func(d, workout string) domain.SessionRecord {
		return domain.SessionRecord{Date: date(d), WorkoutType: workout}
	}

	tests := []struct {
		name      string
		climbs    []domain.ClimbRecord
		sessions  []domain.SessionRecord
		wantErr   bool
		wantDates []string
		wantMsg   string
	}{
		{
			name:     "matching dates",
			climbs:   []domain.ClimbRecord{climb("2023-01-05"), climb("2023-01-05"), climb("2023-01-07")},
			sessions: []domain.SessionRecord{session("2023-01-05", "strength"), session("2023-01-07", "volume")},
		},
		{
			name:     "both empty",
			climbs:   nil,
			sessions: nil,
		},
		{
			name:      "climb date without session",
			climbs:    []domain.ClimbRecord{climb("2023-01-05"), climb("2023-01-06")},
			sessions:  []domain.SessionRecord{session("2023-01-05", "strength")},
			wantErr:   true,
			wantDates: []string{"2023-01-06"},
			wantMsg:   "dates not in sessions",
		},
		{
			name:      "session date without climbs",
			climbs:    []domain.ClimbRecord{climb("2023-01-05")},
			sessions:  []domain.SessionRecord{session("2023-01-05", "strength"), session("2023-01-06", "volume")},
			wantErr:   true,
			wantDates: []string{"2023-01-06"},
			wantMsg:   "missing dates found in sessions",
		},
		{
			name:      "several offending dates are sorted",
			climbs:    []domain.ClimbRecord{climb("2023-03-01"), climb("2023-01-05"), climb("2023-02-01")},
			sessions:  []domain.SessionRecord{session("2023-01-05", "strength")},
			wantErr:   true,
			wantDates: []string{"2023-02-01", "2023-03-01"},
		},
		{
			name:   "duplicate session dates",
			climbs: []domain.ClimbRecord{climb("2023-01-05")},
			sessions: []domain.SessionRecord{
				session("2023-01-05", "strength"),
				session("2023-01-05", "volume"),
			},
			wantErr:   true,
			wantDates: []string{"2023-01-05"},
			wantMsg:   "multiple entries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConsistency(tt.climbs, tt.sessions)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
			for _, d := range tt.wantDates {
				assert.Contains(t, err.Error(), d)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantDates, appErr.Context["dates"])
		})
	}
}
