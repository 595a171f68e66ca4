package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boampwatch/internal/anomaly"
	"boampwatch/internal/api"
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
	"boampwatch/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting admin api", "env", cfg.Env, "addr", cfg.GetHTTPAddr())

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
	sink := anomaly.NewSink(log)
	sink.RegisterHandlers(bus)

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

	scanClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = scanClient.Close()
	}()

	handler := api.NewHandler(runner, scanClient, sink, validator.New(), log)
	engine := api.NewRouter(cfg, handler, log)

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
