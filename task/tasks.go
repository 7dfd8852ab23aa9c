package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/angas/agilewatch/config"
	"github.com/angas/agilewatch/database"
	"github.com/robfig/cron/v3"
)

const maintenanceSchedule = "30 2 * * *"

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	PriceTask       func()
	MaintenanceTask func() // nil without a database
}

func NewTasks(
	appCtx context.Context,
	fetcher PriceFetcher,
	loop Restarter,
	db *database.Database,
	cnfg *config.AppConfig,
) *Tasks {
	logger := slog.Default().With("module", "tasks")
	t := &Tasks{
		cron:      cron.New(),
		cnfg:      cnfg,
		PriceTask: NewPriceTask(appCtx, logger.With(slog.String("task", "price")), fetcher, loop, fetchTimeout(cnfg.Tariff)),
	}
	if db != nil {
		t.MaintenanceTask = NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg.Logging.GetDbMaxEntries())
	}
	return t
}

// fetchTimeout leaves room for every provider to time out once.
func fetchTimeout(c config.AppConfigTariff) time.Duration {
	n := len(c.Providers)
	if n < 1 {
		n = 1
	}
	return time.Duration(n) * c.Timeout
}

// Run schedules the tasks and fetches prices once right away.
func (t *Tasks) Run() error {
	if _, err := t.cron.AddFunc(t.cnfg.Tariff.RunAt, t.PriceTask); err != nil {
		return fmt.Errorf("invalid tariff.run_at %q: %w", t.cnfg.Tariff.RunAt, err)
	}
	if t.MaintenanceTask != nil {
		if _, err := t.cron.AddFunc(maintenanceSchedule, t.MaintenanceTask); err != nil {
			return fmt.Errorf("scheduling maintenance: %w", err)
		}
	}
	t.cron.Start()

	go t.PriceTask()
	return nil
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
