package engine

import (
	"sort"

	"tradelens/internal/models"
)

// resolveFirstTriggers collapses raw rows to one canonical row per
// (ticker, date) group. Candidates inside a group are ordered ascending by
// time-of-day with missing times first; identical timestamps fall back to
// original row order, which the stable sort preserves.
//
// keep selects filtered mode: when non-nil, the first candidate whose
// original row index satisfies keep wins, and groups with no satisfying
// candidate are dropped. A nil keep is baseline mode: the first candidate
// wins unconditionally.
//
// Output is chronological: sorted by date, then time-of-day, then original
// row order, so streak and equity computations can trust the sequence.
func resolveFirstTriggers(trades []models.AdjustedTrade, keep func(row int) bool) []models.AdjustedTrade {
	if len(trades) == 0 {
		return nil
	}

	sorted := make([]models.AdjustedTrade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return timeKey(a) < timeKey(b)
	})

	var resolved []models.AdjustedTrade
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sameGroup(sorted[start], sorted[end]) {
			end++
		}
		for i := start; i < end; i++ {
			if keep == nil || keep(sorted[i].Row) {
				resolved = append(resolved, sorted[i])
				break
			}
		}
		start = end
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		a, b := resolved[i], resolved[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if timeKey(a) != timeKey(b) {
			return timeKey(a) < timeKey(b)
		}
		return a.Row < b.Row
	})
	return resolved
}

func sameGroup(a, b models.AdjustedTrade) bool {
	return a.Ticker == b.Ticker && a.Date.Equal(b.Date)
}

// timeKey orders missing times before any real time-of-day.
func timeKey(t models.AdjustedTrade) int64 {
	if !t.HasTime {
		return -1
	}
	return int64(t.TimeOfDay)
}
