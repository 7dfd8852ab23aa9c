package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/angas/agilewatch/types"
)

type PriceFetcher interface {
	Fetch(ctx context.Context) (types.PriceSeries, error)
}

// Restarter is told that the data source changed.
type Restarter interface {
	Restart(ctx context.Context)
}

// NewPriceTask returns a task fetching prices and restarting the refresh loop
// afterwards, whatever the outcome. appCtx bounds the lifetime of the loop.
func NewPriceTask(appCtx context.Context, logger *slog.Logger, fetcher PriceFetcher, loop Restarter, timeout time.Duration) func() {
	return func() {
		if appCtx.Err() != nil {
			return
		}
		logger.Debug("running price task...")

		ctx, cancel := context.WithTimeout(appCtx, timeout)
		defer cancel()

		series, err := fetcher.Fetch(ctx)
		if err != nil {
			// the repository logs the failure, once per error state
			logger.Debug("price task done with error", slog.Any("error", err))
		} else {
			logger.Info("price task done", slog.Int("noOfSlots", len(series)))
		}

		if appCtx.Err() == nil {
			loop.Restart(appCtx)
		}
	}
}
