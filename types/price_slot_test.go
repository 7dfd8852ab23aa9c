package types

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(from, to time.Time, price string) PriceSlot {
	return PriceSlot{
		ValidFrom:   from,
		ValidTo:     to,
		ValueIncVat: decimal.RequireFromString(price),
	}
}

func TestPriceSlotContains(t *testing.T) {
	from := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	to := from.Add(30 * time.Minute)
	s := slot(from, to, "5")

	tests := []struct {
		name     string
		at       time.Time
		expected bool
	}{
		{"at valid_from", from, true},
		{"inside", from.Add(15 * time.Minute), true},
		{"at valid_to", to, false},
		{"before", from.Add(-time.Nanosecond), false},
		{"after", to.Add(time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Contains(tt.at))
		})
	}
}

func TestPriceSlotKeyIsUTC(t *testing.T) {
	loc := time.FixedZone("BST", 3600)
	s := slot(time.Date(2025, 6, 1, 11, 0, 0, 0, loc), time.Date(2025, 6, 1, 11, 30, 0, 0, loc), "1")
	assert.Equal(t, "2025-06-01T10:00:00Z", s.Key())
}

func TestSortByValidToUsesInstants(t *testing.T) {
	// Same instants written with different offsets would sort wrongly as strings.
	plus2 := time.FixedZone("+02", 2*3600)
	a := slot(time.Date(2025, 1, 1, 11, 0, 0, 0, plus2), time.Date(2025, 1, 1, 11, 30, 0, 0, plus2), "1") // ends 09:30Z
	b := slot(time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC), time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), "2")
	c := slot(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC), "3")

	series := PriceSeries{b, a, c}
	series.SortByValidTo()

	require.Len(t, series, 3)
	assert.Equal(t, "3", series[0].ValueIncVat.String())
	assert.Equal(t, "1", series[1].ValueIncVat.String())
	assert.Equal(t, "2", series[2].ValueIncVat.String())
}

func TestPriceSlotIsValid(t *testing.T) {
	from := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, slot(from, from.Add(time.Minute), "1").IsValid())
	assert.False(t, slot(from, from, "1").IsValid())
	assert.False(t, slot(time.Time{}, from, "1").IsValid())
}
