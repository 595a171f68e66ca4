// Package watch drives one batch run end to end: fetch the day's notices,
// archive the raw batch, normalize in parallel, classify, compose and
// deliver in feed order, then persist counters and send the digest.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"boampwatch/internal/archive"
	"boampwatch/internal/compose"
	"boampwatch/internal/digest"
	"boampwatch/internal/events"
	"boampwatch/internal/feed"
	"boampwatch/internal/notice/classify"
	"boampwatch/internal/notice/domain"
	"boampwatch/internal/notice/service"
	"boampwatch/internal/stats"
	"boampwatch/platform/apperr"
	"boampwatch/platform/logger"
)

// maxParallelNormalize bounds the normalization fan-out. Normalization is
// CPU-only, so a small fixed limit is enough.
const maxParallelNormalize = 8

// Notifier delivers one composed message.
type Notifier interface {
	Send(ctx context.Context, msg compose.Message) error
}

// Options selects what a run covers.
type Options struct {
	Date   string // batch date, YYYY-MM-DD
	Select feed.SelectOption
	Debug  bool // print to stdout instead of delivering
}

// RunResult is the recorded outcome of one run.
type RunResult struct {
	RunID      uuid.UUID       `json:"runId"`
	Date       string          `json:"date"`
	Debug      bool            `json:"debug"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
	Stats      domain.RunStats `json:"stats"`
}

// Runner owns the run pipeline. Safe for sequential reuse; concurrent runs
// are prevented by the callers (CLI runs once, the scheduler queue is
// serialized per task).
type Runner struct {
	feed       *feed.Client
	normalizer *service.Service
	classifier *classify.Classifier
	composer   *compose.Composer
	notifier   Notifier
	archiver   *archive.Archiver
	stats      *stats.Store
	digest     *digest.Sender
	bus        events.Bus
	log        *logger.Logger

	mu   sync.Mutex
	last *RunResult
}

func NewRunner(
	feedClient *feed.Client,
	normalizer *service.Service,
	classifier *classify.Classifier,
	composer *compose.Composer,
	notifier Notifier,
	archiver *archive.Archiver,
	statsStore *stats.Store,
	digestSender *digest.Sender,
	bus events.Bus,
	log *logger.Logger,
) *Runner {
	return &Runner{
		feed:       feedClient,
		normalizer: normalizer,
		classifier: classifier,
		composer:   composer,
		notifier:   notifier,
		archiver:   archiver,
		stats:      statsStore,
		digest:     digestSender,
		bus:        bus,
		log:        log,
	}
}

// Run executes one batch run. Notice-level problems are absorbed as
// anomalies; only batch-level failures (fetch, interrupted normalization)
// return an error.
func (r *Runner) Run(ctx context.Context, opts Options) (*RunResult, error) {
	runID := uuid.New()
	log := r.log.WithRunID(runID.String())
	started := time.Now()

	batch, err := r.feed.FetchDay(ctx, opts.Date, opts.Select)
	if err != nil {
		return nil, err
	}

	runStats := domain.NewRunStats(opts.Date)
	runStats.TotalCount = batch.TotalCount

	r.bus.Publish(ctx, events.BatchFetched{
		BaseEvent:  events.NewBaseEvent(),
		RunID:      runID,
		Date:       opts.Date,
		TotalCount: batch.TotalCount,
	})

	if batch.TotalCount == 0 {
		// An empty bulletin is logged and skipped; no stats entry, no digest.
		log.Info("no notices published", "date", opts.Date)
		return r.finish(ctx, runID, opts, started, runStats, false), nil
	}

	if batch.TotalCount > len(batch.Results) {
		message := fmt.Sprintf("feed reports %d notices but one page holds %d, rest not processed",
			batch.TotalCount, len(batch.Results))
		log.Warn(message, "date", opts.Date)
		runStats.Anomalies++
		r.bus.Publish(ctx, events.AnomalyDetected{
			BaseEvent: events.NewBaseEvent(),
			RunID:     runID,
			Message:   message,
		})
	}

	if r.archiver != nil && !opts.Debug {
		if err := r.archiver.StoreBatch(ctx, opts.Date, *batch); err != nil {
			// Archival is best effort; the notifications still go out.
			log.Error("batch archival failed", "error", err)
		}
	}

	type outcome struct {
		record    domain.NoticeRecord
		anomalies []service.Anomaly
	}
	outcomes := make([]outcome, len(batch.Results))

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(maxParallelNormalize)
	for i, raw := range batch.Results {
		grp.Go(func() error {
			if err := grpCtx.Err(); err != nil {
				return err
			}
			record, anomalies := r.normalizer.Normalize(raw)
			outcomes[i] = outcome{record: record, anomalies: anomalies}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.KindBatch, "normalization interrupted", err)
	}

	// Delivery stays in feed order so the channel reads like the bulletin.
	for _, out := range outcomes {
		record := out.record
		runStats.CountNotice(record.Nature)
		runStats.Anomalies += len(out.anomalies)
		for _, anomaly := range out.anomalies {
			r.bus.Publish(ctx, events.AnomalyDetected{
				BaseEvent: events.NewBaseEvent(),
				RunID:     runID,
				NoticeID:  anomaly.NoticeID,
				Message:   anomaly.Message,
			})
		}

		classification := r.classifier.Classify(record)
		msg := r.composer.Compose(record, classification)

		if opts.Debug {
			fmt.Println(msg.Title)
			fmt.Println(compose.PlainText(msg.Body))
		} else if err := r.notifier.Send(ctx, msg); err != nil {
			runStats.Failed++
			log.Error("notification delivery failed", "notice_id", record.ID, "error", err)
		} else {
			runStats.Sent++
		}

		r.bus.Publish(ctx, events.NoticeProcessed{
			BaseEvent: events.NewBaseEvent(),
			RunID:     runID,
			NoticeID:  record.ID,
			Nature:    record.Nature,
			Variant:   record.Variant,
			Tier:      classification.AmountTier,
		})
	}

	log.Info("run completed",
		"date", opts.Date,
		"total", runStats.TotalCount,
		"sent", runStats.Sent,
		"failed", runStats.Failed,
		"anomalies", runStats.Anomalies,
	)
	return r.finish(ctx, runID, opts, started, runStats, true), nil
}

// finish records the run outcome. persist controls the stats entry and the
// digest email; the empty-feed path and debug runs skip both.
func (r *Runner) finish(ctx context.Context, runID uuid.UUID, opts Options, started time.Time, runStats domain.RunStats, persist bool) *RunResult {
	if persist && !opts.Debug {
		if err := r.stats.RecordRun(runStats); err != nil {
			r.log.Error("stats update failed", "error", err)
		}
		if err := r.digest.SendRunDigest(ctx, runStats); err != nil {
			r.log.Error("digest send failed", "error", err)
		}
	}

	r.bus.Publish(ctx, events.RunCompleted{
		BaseEvent: events.NewBaseEvent(),
		RunID:     runID,
		Stats:     runStats,
	})

	result := &RunResult{
		RunID:      runID,
		Date:       opts.Date,
		Debug:      opts.Debug,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Stats:      runStats,
	}
	r.mu.Lock()
	r.last = result
	r.mu.Unlock()
	return result
}

// LatestRun returns the most recent run in this process, if any.
func (r *Runner) LatestRun() (*RunResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil, false
	}
	copied := *r.last
	return &copied, true
}
