package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"boampwatch/internal/feed"
	"boampwatch/internal/watch"
	"boampwatch/platform/config"
	"boampwatch/platform/logger"
)

// Worker consumes scan tasks and runs them through the batch runner. The
// daily task covers the previous day, since the bulletin for a date is only
// complete once the date has passed.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	runner    *watch.Runner
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, runner *watch.Runner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 2
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	periodic := asynq.NewScheduler(opt, nil)
	cronSpec := fmt.Sprintf("0 %d * * *", cfg.GetDailyScanHour())
	if _, err := periodic.Register(cronSpec, NewScanDailyTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register daily scan: %w", err)
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		scheduler: periodic,
		mux:       mux,
		runner:    runner,
		log:       log,
	}

	mux.HandleFunc(TaskScanDaily, w.handleScanDaily)
	mux.HandleFunc(TaskScanDate, w.handleScanDate)

	return w, nil
}

func (w *Worker) handleScanDaily(ctx context.Context, _ *asynq.Task) error {
	date := time.Now().AddDate(0, 0, -1).Format(time.DateOnly)
	w.log.Info("daily scan starting", "date", date)

	_, err := w.runner.Run(ctx, watch.Options{Date: date})
	return err
}

func (w *Worker) handleScanDate(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseScanDatePayload(task)
	if err != nil {
		return err
	}

	sel, err := feed.ParseSelectOption(payload.Select)
	if err != nil {
		return err
	}

	w.log.Info("ad hoc scan starting", "date", payload.Date, "select", payload.Select)
	_, err = w.runner.Run(ctx, watch.Options{Date: payload.Date, Select: sel})
	return err
}

// Run starts the periodic scheduler and the task server, blocking until the
// context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
	}()

	go func() {
		if err := w.scheduler.Run(); err != nil {
			w.log.Error("periodic scheduler stopped", "error", err)
		}
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
