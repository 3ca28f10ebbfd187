package dataprocessing

import (
	"sort"
	"time"

	"crvx/pkg/contracts/domain"
)

// BuildActivity lists every climbing day with its workout type. Indoor
// sessions contribute their own type and each distinct outdoor date counts
// as an "outdoors" day. Rows are ordered by date then workout type with
// duplicates removed.
func BuildActivity(sessions []domain.SessionRecord, outdoor []domain.OutdoorRecord) []domain.ActivityDay {
	type key struct {
		date    time.Time
		workout string
	}
	seen := make(map[key]struct{}, len(sessions)+len(outdoor))

	var out []domain.ActivityDay
	add := func(d time.Time, workout string) {
		k := key{date: d, workout: workout}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, domain.ActivityDay{Date: d, WorkoutType: workout})
	}

	for _, s := range sessions {
		add(s.Date, s.WorkoutType)
	}
	for _, o := range outdoor {
		add(o.Date, domain.WorkoutOutdoors)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].WorkoutType < out[j].WorkoutType
	})
	return out
}
