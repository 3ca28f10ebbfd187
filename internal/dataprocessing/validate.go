package dataprocessing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "crvx/internal/errors"
	"crvx/pkg/contracts/domain"
)

// ValidateConsistency checks that indoor climbs and indoor sessions cover
// exactly the same dates and that no session date repeats. The returned
// error names the offending dates.
func ValidateConsistency(climbs []domain.ClimbRecord, sessions []domain.SessionRecord) error {
	climbDates := make(map[time.Time]struct{}, len(climbs))
	for _, c := range climbs {
		climbDates[c.Date] = struct{}{}
	}
	sessionDates := make(map[time.Time]struct{}, len(sessions))
	for _, s := range sessions {
		sessionDates[s.Date] = struct{}{}
	}

	if extra := difference(climbDates, sessionDates); len(extra) > 0 {
		return apperrors.NewValidationError(
			fmt.Sprintf("indoor climbing data contains dates not in sessions: %s", joinDates(extra))).
			WithContext("dates", formatDates(extra))
	}
	if missing := difference(sessionDates, climbDates); len(missing) > 0 {
		return apperrors.NewValidationError(
			fmt.Sprintf("indoor climbing data is missing dates found in sessions: %s", joinDates(missing))).
			WithContext("dates", formatDates(missing))
	}

	if dups := duplicateDates(sessions); len(dups) > 0 {
		return apperrors.NewValidationError(
			fmt.Sprintf("indoor climbing sessions contain multiple entries for: %s", joinDates(dups))).
			WithContext("dates", formatDates(dups))
	}
	return nil
}

// difference returns the sorted dates in a but not in b.
func difference(a, b map[time.Time]struct{}) []time.Time {
	var out []time.Time
	for d := range a {
		if _, ok := b[d]; !ok {
			out = append(out, d)
		}
	}
	sortDates(out)
	return out
}

func duplicateDates(sessions []domain.SessionRecord) []time.Time {
	seen := make(map[time.Time]int, len(sessions))
	var dups []time.Time
	for _, s := range sessions {
		seen[s.Date]++
		if seen[s.Date] == 2 {
			dups = append(dups, s.Date)
		}
	}
	sortDates(dups)
	return dups
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(time.DateOnly)
	}
	return out
}

func joinDates(dates []time.Time) string {
	return strings.Join(formatDates(dates), ", ")
}
