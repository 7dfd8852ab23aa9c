package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angas/agilewatch/clock"
	"github.com/angas/agilewatch/config"
	"github.com/angas/agilewatch/database"
	"github.com/angas/agilewatch/logging"
	"github.com/angas/agilewatch/prices"
	"github.com/angas/agilewatch/refresh"
	"github.com/angas/agilewatch/slots"
	"github.com/angas/agilewatch/task"
	"github.com/angas/agilewatch/www"
	"github.com/lmittmann/tint"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := clock.SetGuiTimezone(cnfg.Gui.GetTimezone()); err != nil {
		panic(fmt.Sprintf("failed to set GUI timezone: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	logger := slog.New(consoleHandler)
	slog.SetDefault(logger)
	logger.Debug("agilewatch is starting...", slog.String("version", Version))

	var db *database.Database
	if cnfg.Database.Path != "" {
		db, err = database.New(ctx, cnfg.Database.Path)
		if err != nil {
			panic(fmt.Sprintf("failed to connect to database: %v", err))
		}
		defer db.Close()

		logger = slog.New(logging.NewMultiHandler(
			consoleHandler,
			logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
		slog.SetDefault(logger)

		// Now we can use the logger to log database operations into the database itself
		db.SetLogger(logger.With("module", "database"))
	} else {
		logger.Info("no database configured, logging to console only")
	}

	providers, err := prices.NewProviders(cnfg.Tariff)
	if err != nil {
		panic(fmt.Sprintf("failed to create price providers: %v", err))
	}
	repo := prices.NewRepository(providers)

	settings := www.DashboardSettings{Location: clock.GuiLocation(), SvtRate: cnfg.Gui.SvtRate}

	var tasks *task.Tasks
	server, err := www.NewServer(cnfg.Api, settings, repo, func() { tasks.PriceTask() }, db)
	if err != nil {
		panic(fmt.Sprintf("failed to create server: %v", err))
	}

	loop := refresh.NewLoop(repo, www.NewWebSocketSink(server.Hub()), cnfg.Refresh.Interval,
		refresh.WithLocation(clock.GuiLocation()))
	loop.OnResolved(func(state slots.ResolvedState) {
		server.PublishDashboard(state)
	})

	tasks = task.NewTasks(ctx, repo, loop, db, cnfg)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run(ctx)
	}()

	loop.Start(ctx)
	defer loop.Stop()

	if err := tasks.Run(); err != nil {
		panic(fmt.Sprintf("failed to schedule tasks: %v", err))
	}
	defer tasks.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", slog.Any("signal", sig))
		cancel()
		<-serverErr
	case err := <-serverErr:
		cancel()
		if err != nil {
			exitWithError(logger, err)
		}
	}
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	time.Sleep(2 * time.Second)
	os.Exit(1)
}
