package www

import (
	"time"

	"github.com/angas/agilewatch/clock"
	"github.com/angas/agilewatch/prices"
	"github.com/angas/agilewatch/slots"
	"github.com/angas/agilewatch/types"
	"github.com/angas/agilewatch/types/maybe"
	"github.com/angas/agilewatch/www/chartjs"
)

const (
	MessageLoading = "Loading prices..."
	MessageError   = "Error fetching prices"
	unknown        = "Unknown"
)

type DashboardSettings struct {
	Location *time.Location
	SvtRate  float64
}

type PriceCard struct {
	Known bool
	Price string // e.g. "12.35"
	From  string
	To    string
}

func (c PriceCard) Text() string {
	if !c.Known {
		return unknown
	}
	return c.Price + " p/kWh"
}

type ListItem struct {
	Key   string
	From  string
	To    string
	Price string
	Class slots.ListState
}

type Dashboard struct {
	Status  prices.Status
	Message string
	Title   string
	Current PriceCard
	Next    PriceCard
	Items   []ListItem
	Chart   chartjs.Chart
	Updated string
}

func (d Dashboard) Loaded() bool {
	return d.Status == prices.StatusLoaded
}

// BuildDashboard derives everything the page shows from the repository
// snapshot and the resolved state. It has no side effects.
func BuildDashboard(snap prices.Snapshot, state slots.ResolvedState, now time.Time, settings DashboardSettings) Dashboard {
	loc := settings.Location
	if loc == nil {
		loc = time.UTC
	}

	switch snap.Status {
	case prices.StatusLoading:
		return Dashboard{Status: prices.StatusLoading, Message: MessageLoading}
	case prices.StatusError:
		return Dashboard{Status: prices.StatusError, Message: MessageError}
	}

	d := Dashboard{
		Status:  prices.StatusLoaded,
		Current: priceCard(state.CurrentSlot, loc),
		Next:    priceCard(state.NextSlot, loc),
	}
	if cur, ok := state.CurrentSlot.Get(); ok {
		d.Title = slots.Label(cur, loc)
	}
	if !snap.FetchedAt.IsZero() {
		d.Updated = clock.FormatTime(snap.FetchedAt, loc)
	}

	day := slots.SameDay(snap.Series, now, loc)
	d.Items = make([]ListItem, len(day))
	for i, s := range day {
		d.Items[i] = ListItem{
			Key:   s.Key(),
			From:  clock.FormatClock(s.ValidFrom, loc),
			To:    clock.FormatClock(s.ValidTo, loc),
			Price: slots.FormatPrice(s.ValueIncVat),
			Class: slots.ClassifyListItem(s, state, now),
		}
	}

	d.Chart = priceChart(slots.ChartPoints(day, now), loc, settings.SvtRate)
	return d
}

func priceCard(slot maybe.Maybe[types.PriceSlot], loc *time.Location) PriceCard {
	return maybe.Map(slot, func(s types.PriceSlot) PriceCard {
		return PriceCard{
			Known: true,
			Price: slots.FormatPrice(s.ValueIncVat),
			From:  clock.FormatClock(s.ValidFrom, loc),
			To:    clock.FormatClock(s.ValidTo, loc),
		}
	}).ValueOrDefault(PriceCard{})
}

func priceChart(points []slots.ChartPoint, loc *time.Location, svtRate float64) chartjs.Chart {
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = clock.FormatClock(p.Time, loc)
	}

	chart := chartjs.NewBarChart("", labels)
	for i, p := range points {
		chart.Data.Datasets[0].Data[i] = chartjs.FixedFloat64(p.Price, 2)
		chart.Data.Datasets[0].BackgroundColor[i] = barColor(p)
	}
	chart.Options.Scales["y"] = chart.Options.Scales["y"].WithTitle("Price (p/kWh)")
	chart.Options.Scales["x"] = chart.Options.Scales["x"].WithTitle("Time")

	if svtRate > 0 {
		chart = chart.WithReferenceLine("SVT", svtRate)
	}
	return chart
}

func barColor(p slots.ChartPoint) string {
	switch {
	case p.IsCurrent:
		return chartjs.ColorCurrent
	case p.IsPast && p.Price < 0:
		return chartjs.ColorPastNegative
	case p.IsPast:
		return chartjs.ColorPast
	case p.Price < 0:
		return chartjs.ColorFutureNegative
	default:
		return chartjs.ColorFuture
	}
}
