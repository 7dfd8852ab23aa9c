package task

import (
	"context"
	"log/slog"
	"time"
)

type LogPurger interface {
	PurgeLog(ctx context.Context, maxLogEntries int) (int64, error)
}

func NewMaintenanceTask(logger *slog.Logger, db LogPurger, maxLogEntries int) func() {
	return func() {
		logger.Debug("running maintenance task...")

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		purged, err := db.PurgeLog(ctx, maxLogEntries)
		if err != nil {
			logger.Error("log maintenance error", slog.Any("error", err))
			return
		}

		logger.Info("maintenance task done", slog.Int64("purgedLogEntries", purged))
	}
}
