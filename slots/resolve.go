package slots

import (
	"fmt"
	"time"

	"github.com/angas/agilewatch/clock"
	"github.com/angas/agilewatch/types"
	"github.com/angas/agilewatch/types/maybe"
	"github.com/shopspring/decimal"
)

// ResolvedState is derived from a series and a point in time, never stored.
type ResolvedState struct {
	CurrentIndex maybe.Maybe[int]
	CurrentSlot  maybe.Maybe[types.PriceSlot]
	NextSlot     maybe.Maybe[types.PriceSlot]
}

// Resolve finds the slot active at now and the one following it. Windows are
// half-open, so a slot ending exactly at now is not current. If the data ever
// contains overlapping slots the first match in series order wins.
func Resolve(series types.PriceSeries, now time.Time) ResolvedState {
	for i, s := range series {
		if !s.Contains(now) {
			continue
		}
		state := ResolvedState{
			CurrentIndex: maybe.Some(i),
			CurrentSlot:  maybe.Some(s),
			NextSlot:     maybe.None[types.PriceSlot](),
		}
		if i+1 < len(series) {
			state.NextSlot = maybe.Some(series[i+1])
		}
		return state
	}
	return ResolvedState{}
}

func (r ResolvedState) Equal(other ResolvedState) bool {
	return r.CurrentIndex == other.CurrentIndex &&
		equalSlot(r.CurrentSlot, other.CurrentSlot) &&
		equalSlot(r.NextSlot, other.NextSlot)
}

func equalSlot(a, b maybe.Maybe[types.PriceSlot]) bool {
	if a.IsValid() != b.IsValid() {
		return false
	}
	return !a.IsValid() || a.Value().Equal(b.Value())
}

// FormatPrice renders a unit price with two decimals, rounding half away from zero.
func FormatPrice(price decimal.Decimal) string {
	return price.StringFixed(2)
}

// Label is the short text used as window title, e.g. "12.34p (17:30)".
func Label(s types.PriceSlot, loc *time.Location) string {
	return fmt.Sprintf("%sp (%s)", FormatPrice(s.ValueIncVat), clock.FormatClock(s.ValidFrom, loc))
}
