package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boampwatch/internal/anomaly"
	"boampwatch/internal/archive"
	"boampwatch/internal/compose"
	"boampwatch/internal/digest"
	"boampwatch/internal/events"
	"boampwatch/internal/feed"
	"boampwatch/internal/notice/classify"
	"boampwatch/internal/notice/service"
	"boampwatch/internal/stats"
	"boampwatch/internal/teams"
	"boampwatch/internal/watch"
	"boampwatch/platform/config"
	"boampwatch/platform/logger"
)

func main() {
	var (
		dateFlag   = flag.String("date", "", "bulletin date to scan (YYYY-MM-DD), defaults to yesterday")
		nowFlag    = flag.Bool("now", false, "scan today's bulletin instead of yesterday's")
		selectFlag = flag.String("select", "", "restrict to one nature: attribution, ao or rectificatif")
		debugFlag  = flag.Bool("debug", false, "print notifications to stdout instead of sending them")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	sel, err := feed.ParseSelectOption(*selectFlag)
	if err != nil {
		log.Error("invalid select flag", "error", err)
		os.Exit(2)
	}

	date := *dateFlag
	if date == "" {
		day := time.Now()
		if !*nowFlag {
			day = day.AddDate(0, 0, -1)
		}
		date = day.Format(time.DateOnly)
	} else if _, parseErr := time.Parse(time.DateOnly, date); parseErr != nil {
		log.Error("invalid date flag", "date", date, "error", parseErr)
		os.Exit(2)
	}

	log.Info("starting scan", "date", date, "select", string(sel), "debug", *debugFlag)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := buildRunner(cfg, log)
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	result, err := runner.Run(ctx, watch.Options{Date: date, Select: sel, Debug: *debugFlag})
	if err != nil {
		log.Error("run failed", "date", date, "error", err)
		os.Exit(1)
	}

	log.Info("scan finished",
		"date", result.Date,
		"total", result.Stats.TotalCount,
		"sent", result.Stats.Sent,
		"anomalies", result.Stats.Anomalies,
	)
}

func buildRunner(cfg *config.Config, log *logger.Logger) (*watch.Runner, error) {
	classifier, err := classify.New(cfg, log)
	if err != nil {
		return nil, err
	}
	archiver, err := archive.New(cfg, log)
	if err != nil {
		return nil, err
	}

	bus := events.NewInMemoryBus(log)
	anomaly.NewSink(log).RegisterHandlers(bus)

	return watch.NewRunner(
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
	), nil
}
