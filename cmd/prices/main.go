package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/angas/agilewatch/clock"
	"github.com/angas/agilewatch/config"
	"github.com/angas/agilewatch/prices"
	"github.com/angas/agilewatch/slots"
	"github.com/angas/agilewatch/types"
	"github.com/angas/agilewatch/types/maybe"
	"github.com/lmittmann/tint"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339Nano,
		}),
	))

	if err := run(*configPath, os.Stdout); err != nil {
		slog.Error("prices failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath string, w io.Writer) error {
	cnfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := clock.SetGuiTimezone(cnfg.Gui.GetTimezone()); err != nil {
		return err
	}

	providers, err := prices.NewProviders(cnfg.Tariff)
	if err != nil {
		return err
	}
	repo := prices.NewRepository(providers)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(len(providers))*cnfg.Tariff.Timeout)
	defer cancel()

	series, err := repo.Fetch(ctx)
	if err != nil {
		return err
	}

	printPrices(w, series, time.Now(), clock.GuiLocation())
	return nil
}

func printPrices(w io.Writer, series types.PriceSeries, now time.Time, loc *time.Location) {
	state := slots.Resolve(series, now)

	fmt.Fprintf(w, "Current: %s\n", describe(state.CurrentSlot, loc))
	fmt.Fprintf(w, "Next:    %s\n", describe(state.NextSlot, loc))
	fmt.Fprintln(w)

	for _, s := range slots.SameDay(series, now, loc) {
		marker := " "
		switch slots.ClassifyListItem(s, state, now) {
		case slots.ListStateCurrent:
			marker = ">"
		case slots.ListStatePast:
			marker = "-"
		case slots.ListStateFavorable:
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s - %s %8sp\n", marker,
			clock.FormatClock(s.ValidFrom, loc),
			clock.FormatClock(s.ValidTo, loc),
			slots.FormatPrice(s.ValueIncVat))
	}
}

func describe(slot maybe.Maybe[types.PriceSlot], loc *time.Location) string {
	return maybe.Map(slot, func(s types.PriceSlot) string {
		return slots.Label(s, loc)
	}).ValueOrDefault("Unknown")
}
