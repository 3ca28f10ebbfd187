package dataprocessing

import (
	"fmt"
	"strings"
	"time"

	"crvx/internal/config"
	apperrors "crvx/internal/errors"
	"crvx/pkg/contracts/domain"
)

// Filter narrows the normalized tables to a date window and an optional
// set of workout types before expansion.
type Filter struct {
	Range    string
	Start    time.Time
	End      time.Time
	Workouts []string
}

// FilterFromConfig builds a filter from its configuration section. Custom
// bounds accept YYYY-MM-DD or DD/MM/YYYY.
func FilterFromConfig(cfg config.FilterConfig) (Filter, error) {
	f := Filter{Range: cfg.Range, Workouts: cfg.Workouts}
	if f.Range == "" {
		f.Range = config.RangeAll
	}
	if f.Range != config.RangeCustom {
		return f, nil
	}

	var err error
	if f.Start, err = parseFilterDate(cfg.Start); err != nil {
		return Filter{}, apperrors.NewConfigError("invalid filter start date", err)
	}
	if f.End, err = parseFilterDate(cfg.End); err != nil {
		return Filter{}, apperrors.NewConfigError("invalid filter end date", err)
	}
	return f, nil
}

func parseFilterDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(time.DateOnly, s, time.UTC); err == nil {
		return t, nil
	}
	return ParseDate(s)
}

// Window returns the inclusive date window of the filter for data spanning
// earliest..latest.
func (f Filter) Window(earliest, latest time.Time) (time.Time, time.Time, error) {
	switch f.Range {
	case "", config.RangeAll:
		return earliest, latest, nil
	case config.RangeYTD:
		return time.Date(latest.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), latest, nil
	case config.RangeOneYear:
		return latest.AddDate(0, 0, -52*7), latest, nil
	case config.RangeSixMonths:
		return latest.AddDate(0, 0, -26*7), latest, nil
	case config.RangeCustom:
		if !f.Start.Before(f.End) {
			return time.Time{}, time.Time{}, apperrors.NewValidationError("end date must fall after start date").
				WithContext("start", f.Start.Format(time.DateOnly)).
				WithContext("end", f.End.Format(time.DateOnly))
		}
		return f.Start, f.End, nil
	default:
		return time.Time{}, time.Time{}, apperrors.NewConfigError(fmt.Sprintf("unknown date range %q", f.Range), nil)
	}
}

// Apply returns the tables restricted to the filter. Sessions must match the
// window and the workout allow-list, climbs survive only on kept session
// dates and outdoor records follow the window when outdoor days are allowed.
func (f Filter) Apply(tables domain.NormalizedTables) (domain.NormalizedTables, error) {
	earliest, latest, ok := dateSpan(tables)
	if !ok {
		return tables, nil
	}
	start, end, err := f.Window(earliest, latest)
	if err != nil {
		return domain.NormalizedTables{}, err
	}
	inWindow := func(d time.Time) bool { return !d.Before(start) && !d.After(end) }

	allowed := f.allowed()
	var out domain.NormalizedTables

	keptDates := make(map[time.Time]struct{}, len(tables.Sessions))
	for _, s := range tables.Sessions {
		if !inWindow(s.Date) || !allowed(s.WorkoutType) {
			continue
		}
		out.Sessions = append(out.Sessions, s)
		keptDates[s.Date] = struct{}{}
	}
	for _, c := range tables.Climbs {
		if _, ok := keptDates[c.Date]; ok {
			out.Climbs = append(out.Climbs, c)
		}
	}
	if allowed(domain.WorkoutOutdoors) {
		for _, o := range tables.Outdoor {
			if inWindow(o.Date) {
				out.Outdoor = append(out.Outdoor, o)
			}
		}
	}
	return out, nil
}

func (f Filter) allowed() func(string) bool {
	if len(f.Workouts) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]struct{}, len(f.Workouts))
	for _, w := range f.Workouts {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return func(workout string) bool {
		_, ok := set[strings.ToLower(workout)]
		return ok
	}
}

// dateSpan returns the first and last session or outdoor date.
func dateSpan(tables domain.NormalizedTables) (time.Time, time.Time, bool) {
	var (
		earliest, latest time.Time
		found            bool
	)
	visit := func(d time.Time) {
		if !found || d.Before(earliest) {
			earliest = d
		}
		if !found || d.After(latest) {
			latest = d
		}
		found = true
	}
	for _, s := range tables.Sessions {
		visit(s.Date)
	}
	for _, o := range tables.Outdoor {
		visit(o.Date)
	}
	return earliest, latest, found
}
