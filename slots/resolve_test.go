package slots

import (
	"testing"
	"time"

	"github.com/angas/agilewatch/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) time.Time {
	return time.Date(2025, 1, 1, h, m, 0, 0, time.UTC)
}

func slot(from, to time.Time, price string) types.PriceSlot {
	return types.PriceSlot{
		ValidFrom:   from,
		ValidTo:     to,
		ValueIncVat: decimal.RequireFromString(price),
		ValueExcVat: decimal.RequireFromString(price).Div(decimal.NewFromFloat(1.05)),
	}
}

func twoSlots() types.PriceSeries {
	return types.PriceSeries{
		slot(at(10, 0), at(10, 30), "5"),
		slot(at(10, 30), at(11, 0), "3"),
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		series      types.PriceSeries
		now         time.Time
		wantIndex   int // -1 when absent
		wantCurrent string
		wantNext    string
	}{
		{
			name:        "inside first slot",
			series:      twoSlots(),
			now:         at(10, 15),
			wantIndex:   0,
			wantCurrent: "5",
			wantNext:    "3",
		},
		{
			name:        "inside last slot has no next",
			series:      twoSlots(),
			now:         at(10, 45),
			wantIndex:   1,
			wantCurrent: "3",
		},
		{
			name:        "valid_from is inclusive",
			series:      twoSlots(),
			now:         at(10, 0),
			wantIndex:   0,
			wantCurrent: "5",
			wantNext:    "3",
		},
		{
			name:        "valid_to is exclusive, adjacent slot wins",
			series:      twoSlots(),
			now:         at(10, 30),
			wantIndex:   1,
			wantCurrent: "3",
		},
		{
			name:      "single slot at its valid_to",
			series:    types.PriceSeries{slot(at(10, 0), at(10, 30), "5")},
			now:       at(10, 30),
			wantIndex: -1,
		},
		{
			name:      "before all slots",
			series:    twoSlots(),
			now:       at(9, 59),
			wantIndex: -1,
		},
		{
			name:      "after all slots",
			series:    twoSlots(),
			now:       at(11, 0),
			wantIndex: -1,
		},
		{
			name:      "empty series",
			series:    types.PriceSeries{},
			now:       at(10, 15),
			wantIndex: -1,
		},
		{
			name: "in a gap between slots",
			series: types.PriceSeries{
				slot(at(10, 0), at(10, 30), "5"),
				slot(at(11, 0), at(11, 30), "3"),
			},
			now:       at(10, 45),
			wantIndex: -1,
		},
		{
			name: "overlapping data picks the first match",
			series: types.PriceSeries{
				slot(at(10, 0), at(11, 0), "7"),
				slot(at(10, 30), at(11, 0), "9"),
			},
			now:         at(10, 45),
			wantIndex:   0,
			wantCurrent: "7",
			wantNext:    "9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := Resolve(tt.series, tt.now)

			if tt.wantIndex < 0 {
				assert.False(t, state.CurrentIndex.IsValid())
				assert.False(t, state.CurrentSlot.IsValid())
				assert.False(t, state.NextSlot.IsValid())
				return
			}

			require.True(t, state.CurrentIndex.IsValid())
			assert.Equal(t, tt.wantIndex, state.CurrentIndex.Value())
			require.True(t, state.CurrentSlot.IsValid())
			assert.Equal(t, tt.wantCurrent, state.CurrentSlot.Value().ValueIncVat.String())

			if tt.wantNext == "" {
				assert.False(t, state.NextSlot.IsValid())
			} else {
				require.True(t, state.NextSlot.IsValid())
				assert.Equal(t, tt.wantNext, state.NextSlot.Value().ValueIncVat.String())
			}
		})
	}
}

func TestResolveNextIsFollowingElement(t *testing.T) {
	var series types.PriceSeries
	for i := 0; i < 48; i++ {
		from := at(0, 0).Add(time.Duration(i) * 30 * time.Minute)
		series = append(series, slot(from, from.Add(30*time.Minute), decimal.NewFromInt(int64(i)).String()))
	}

	for i, s := range series {
		state := Resolve(series, s.ValidFrom.Add(time.Minute))
		require.Equal(t, i, state.CurrentIndex.Value())
		if i == len(series)-1 {
			assert.False(t, state.NextSlot.IsValid())
		} else {
			assert.True(t, state.NextSlot.Value().Equal(series[i+1]))
		}
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	series := twoSlots()
	a := Resolve(series, at(10, 15))
	b := Resolve(series, at(10, 15))
	assert.True(t, a.Equal(b))
	assert.Equal(t, a, b)
}

func TestResolvedStateEqual(t *testing.T) {
	series := twoSlots()
	first := Resolve(series, at(10, 5))
	sameSlot := Resolve(series, at(10, 25))
	second := Resolve(series, at(10, 35))
	none := Resolve(series, at(12, 0))

	assert.True(t, first.Equal(sameSlot))
	assert.False(t, first.Equal(second))
	assert.False(t, first.Equal(none))
	assert.True(t, none.Equal(ResolvedState{}))
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		expected string
	}{
		{"two decimals", "12.3456", "12.35p (10:00)"},
		{"pads decimals", "5", "5.00p (10:00)"},
		{"negative", "-1.2", "-1.20p (10:00)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := slot(at(10, 0), at(10, 30), tt.price)
			assert.Equal(t, tt.expected, Label(s, time.UTC))
		})
	}
}
