package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"boampwatch/internal/anomaly"
	"boampwatch/internal/archive"
	"boampwatch/internal/compose"
	"boampwatch/internal/digest"
	"boampwatch/internal/events"
	"boampwatch/internal/feed"
	"boampwatch/internal/notice/classify"
	"boampwatch/internal/notice/service"
	"boampwatch/internal/scheduler"
	"boampwatch/internal/stats"
	"boampwatch/internal/teams"
	"boampwatch/internal/watch"
	"boampwatch/platform/config"
	"boampwatch/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "daily_scan_hour", cfg.GetDailyScanHour())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	classifier, err := classify.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize classifier", "error", err)
		os.Exit(1)
	}
	archiver, err := archive.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize archiver", "error", err)
		os.Exit(1)
	}

	bus := events.NewInMemoryBus(log)
	anomaly.NewSink(log).RegisterHandlers(bus)

	runner := watch.NewRunner(
		feed.New(cfg, log),
		service.New(log),
		classifier,
		compose.New(cfg.GetSeuilMarches()),
		teams.NewClient(cfg, log),
		archiver,
		stats.New(cfg, log),
		digest.NewSender(cfg, log),
		bus,
		log,
	)

	worker, err := scheduler.NewWorker(cfg, runner, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		os.Exit(1)
	}

	worker.Run(ctx)
	log.Info("scheduler stopped")
}
