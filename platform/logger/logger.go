// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RunIDKey is the context key for the batch run ID
	RunIDKey contextKey = "run_id"
	// NoticeIDKey is the context key for the notice being processed
	NoticeIDKey contextKey = "notice_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports run_id and notice_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if runID, ok := ctx.Value(RunIDKey).(string); ok && runID != "" {
		newLogger = newLogger.WithRunID(runID)
	}

	if noticeID, ok := ctx.Value(NoticeIDKey).(string); ok && noticeID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("notice_id", noticeID)),
		}
	}

	return newLogger
}

// WithRunID returns a logger with the batch run ID attached
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("run_id", runID)),
	}
}

// FeedRequest logs an upstream feed request
func (l *Logger) FeedRequest(url string, status int, latencyMs float64, results int) {
	l.Info("feed_request",
		slog.String("url", url),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.Int("results", results),
	)
}

// FeedError logs an upstream feed failure
func (l *Logger) FeedError(url string, err error) {
	l.Error("feed_error",
		slog.String("url", url),
		slog.String("error", err.Error()),
	)
}

// Anomaly logs a data-quality anomaly on a single notice
func (l *Logger) Anomaly(noticeID, message string) {
	l.Warn("data_anomaly",
		slog.String("notice_id", noticeID),
		slog.String("message", message),
	)
}

// DeliveryError logs a webhook delivery failure
func (l *Logger) DeliveryError(channel, noticeID string, err error) {
	l.Error("delivery_error",
		slog.String("channel", channel),
		slog.String("notice_id", noticeID),
		slog.String("error", err.Error()),
	)
}

// ArchiveError logs a raw-batch archival failure
func (l *Logger) ArchiveError(target string, err error) {
	l.Error("archive_error",
		slog.String("target", target),
		slog.String("error", err.Error()),
	)
}
