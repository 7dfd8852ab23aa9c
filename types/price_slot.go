package types

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSlot is one unit rate of the tariff, active in the half-open window [ValidFrom, ValidTo).
type PriceSlot struct {
	ValidFrom   time.Time
	ValidTo     time.Time
	ValueIncVat decimal.Decimal // pence per kWh including VAT, may be negative
	ValueExcVat decimal.Decimal // pence per kWh excluding VAT, may be negative
}

// Key identifies the slot in lists and scroll targets.
func (s PriceSlot) Key() string {
	return s.ValidFrom.UTC().Format(time.RFC3339)
}

func (s PriceSlot) Contains(t time.Time) bool {
	return !t.Before(s.ValidFrom) && t.Before(s.ValidTo)
}

func (s PriceSlot) IsValid() bool {
	return !s.ValidFrom.IsZero() && !s.ValidTo.IsZero() && s.ValidFrom.Before(s.ValidTo)
}

func (s PriceSlot) Equal(other PriceSlot) bool {
	return s.ValidFrom.Equal(other.ValidFrom) &&
		s.ValidTo.Equal(other.ValidTo) &&
		s.ValueIncVat.Equal(other.ValueIncVat) &&
		s.ValueExcVat.Equal(other.ValueExcVat)
}

// PriceSeries is ordered ascending by ValidTo.
type PriceSeries []PriceSlot

// SortByValidTo orders the series by the end instant of each slot, not by its text form.
func (ps PriceSeries) SortByValidTo() {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].ValidTo.Before(ps[j].ValidTo)
	})
}

func (ps PriceSeries) Clone() PriceSeries {
	if ps == nil {
		return nil
	}
	c := make(PriceSeries, len(ps))
	copy(c, ps)
	return c
}

type PriceProvider interface {
	Name() string
	GetPrices(ctx context.Context) (PriceSeries, error)
}
