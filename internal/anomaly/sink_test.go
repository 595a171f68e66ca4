package anomaly

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"boampwatch/internal/events"
	"boampwatch/platform/logger"
)

func TestSinkRecordsPublishedAnomalies(t *testing.T) {
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	sink := NewSink(log)
	sink.RegisterHandlers(bus)

	runID := uuid.New()
	if err := bus.PublishSync(context.Background(), events.AnomalyDetected{
		BaseEvent: events.NewBaseEvent(),
		RunID:     runID,
		NoticeID:  "26-7",
		Message:   "unknown form shape",
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	findings := sink.Recent()
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].RunID != runID || findings[0].NoticeID != "26-7" {
		t.Fatalf("unexpected finding %+v", findings[0])
	}
	if findings[0].Message != "unknown form shape" {
		t.Fatalf("unexpected message %q", findings[0].Message)
	}
}

func TestSinkKeepsABoundedWindow(t *testing.T) {
	log := logger.New("test")
	sink := NewSink(log)
	sink.capacity = 3

	for i := 0; i < 5; i++ {
		if err := sink.Handle(context.Background(), events.AnomalyDetected{
			BaseEvent: events.NewBaseEvent(),
			Message:   fmt.Sprintf("finding %d", i),
		}); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	findings := sink.Recent()
	if len(findings) != 3 {
		t.Fatalf("expected window of 3, got %d", len(findings))
	}
	if findings[0].Message != "finding 2" || findings[2].Message != "finding 4" {
		t.Fatalf("expected oldest findings dropped, got %+v", findings)
	}
}

func TestSinkIgnoresUnrelatedEvents(t *testing.T) {
	log := logger.New("test")
	sink := NewSink(log)

	if err := sink.Handle(context.Background(), events.BatchFetched{
		BaseEvent: events.NewBaseEvent(),
		Date:      "2026-08-30",
	}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sink.Recent()) != 0 {
		t.Fatal("expected no findings recorded")
	}
}
