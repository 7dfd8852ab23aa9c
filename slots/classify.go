package slots

import (
	"time"

	"github.com/angas/agilewatch/clock"
	"github.com/angas/agilewatch/types"
)

type ListState string

const (
	ListStateCurrent   ListState = "current"
	ListStatePast      ListState = "past"
	ListStateFavorable ListState = "favorable"
	ListStateDefault   ListState = ""
)

// ClassifyListItem decides how a history list entry is highlighted. The current
// slot is matched by its end time, then elapsed slots, then non-positive prices.
func ClassifyListItem(s types.PriceSlot, state ResolvedState, now time.Time) ListState {
	if cur, ok := state.CurrentSlot.Get(); ok && s.ValidTo.Equal(cur.ValidTo) {
		return ListStateCurrent
	}
	if s.ValidTo.Before(now) {
		return ListStatePast
	}
	if !s.ValueIncVat.IsPositive() {
		return ListStateFavorable
	}
	return ListStateDefault
}

// SameDay keeps the slots starting on the calendar day of now, in loc.
func SameDay(series types.PriceSeries, now time.Time, loc *time.Location) types.PriceSeries {
	out := make(types.PriceSeries, 0, len(series))
	for _, s := range series {
		if clock.SameDay(s.ValidFrom, now, loc) {
			out = append(out, s)
		}
	}
	return out
}

// ChartPoint is one bar of the same-day chart.
type ChartPoint struct {
	Time      time.Time
	Price     float64
	IsCurrent bool
	IsPast    bool
}

func ChartPoints(day types.PriceSeries, now time.Time) []ChartPoint {
	points := make([]ChartPoint, len(day))
	for i, s := range day {
		points[i] = ChartPoint{
			Time:      s.ValidFrom,
			Price:     s.ValueIncVat.InexactFloat64(),
			IsCurrent: s.Contains(now),
			IsPast:    now.After(s.ValidTo),
		}
	}
	return points
}
