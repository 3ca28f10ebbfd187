package dataprocessing

import (
	"slices"
	"sort"
	"time"

	"crvx/pkg/contracts/domain"
)

// monthOf truncates a date to the first day of its month.
func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// sendsByMonth returns the sent grades of each month, months ascending.
func sendsByMonth(units []domain.UnitClimb) ([]time.Time, map[time.Time][]int) {
	byMonth := make(map[time.Time][]int)
	for _, u := range units {
		if !u.Sent {
			continue
		}
		m := monthOf(u.Date)
		byMonth[m] = append(byMonth[m], u.Grade)
	}

	months := make([]time.Time, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sortDates(months)
	return months, byMonth
}

// meanTop returns the mean of the k largest values of grades, which must be
// sorted descending.
func meanTop(grades []int, k int) float64 {
	sum := 0
	for _, g := range grades[:k] {
		sum += g
	}
	return float64(sum) / float64(k)
}

// sortedKs returns the distinct values of ks in ascending order
func sortedKs(ks []int) []int {
	out := append([]int(nil), ks...)
	sort.Ints(out)
	return slices.Compact(out)
}

// TopKMonthlyMeans computes, for every month and K, the mean grade of the K
// hardest sends of that month. Months with fewer than K sends have no entry
// for that K.
func TopKMonthlyMeans(units []domain.UnitClimb, ks []int) []domain.TopKMean {
	months, byMonth := sendsByMonth(units)
	ks = sortedKs(ks)

	var out []domain.TopKMean
	for _, m := range months {
		grades := append([]int(nil), byMonth[m]...)
		sort.Sort(sort.Reverse(sort.IntSlice(grades)))
		for _, k := range ks {
			if len(grades) < k {
				continue
			}
			out = append(out, domain.TopKMean{Month: m, K: k, MeanTopK: meanTop(grades, k)})
		}
	}
	return out
}

// CumulativeTopKMeans computes, for every month and K, the mean grade of the
// K hardest sends logged up to the end of that month.
func CumulativeTopKMeans(units []domain.UnitClimb, ks []int) []domain.CumulativeTopKMean {
	months, byMonth := sendsByMonth(units)
	ks = sortedKs(ks)

	var (
		out []domain.CumulativeTopKMean
		all []int
	)
	for _, m := range months {
		all = append(all, byMonth[m]...)
		sort.Sort(sort.Reverse(sort.IntSlice(all)))
		for _, k := range ks {
			if len(all) < k {
				continue
			}
			out = append(out, domain.CumulativeTopKMean{Month: m, K: k, CumMeanTopK: meanTop(all, k)})
		}
	}
	return out
}
