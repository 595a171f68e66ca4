// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"boampwatch/internal/notice/domain"
	"boampwatch/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Batch Run Events
// =============================================================================

// BatchFetched is published once per run when the feed responded.
type BatchFetched struct {
	BaseEvent
	RunID      uuid.UUID `json:"runId"`
	Date       string    `json:"date"`
	TotalCount int       `json:"totalCount"`
}

func (e BatchFetched) EventName() string { return "watch.batch.fetched" }

// NoticeProcessed is published for every notice that was normalized,
// whether or not every field resolved.
type NoticeProcessed struct {
	BaseEvent
	RunID    uuid.UUID            `json:"runId"`
	NoticeID string               `json:"noticeId"`
	Nature   domain.Nature        `json:"nature"`
	Variant  domain.SchemaVariant `json:"variant"`
	Tier     domain.Tier          `json:"tier"`
}

func (e NoticeProcessed) EventName() string { return "watch.notice.processed" }

// AnomalyDetected is published for data-quality findings: unknown variants,
// malformed sub-documents, excess result counts. It feeds the anomaly sink.
type AnomalyDetected struct {
	BaseEvent
	RunID    uuid.UUID `json:"runId"`
	NoticeID string    `json:"noticeId,omitempty"`
	Message  string    `json:"message"`
}

func (e AnomalyDetected) EventName() string { return "watch.anomaly.detected" }

// RunCompleted is published when a batch run finished, with its counters.
type RunCompleted struct {
	BaseEvent
	RunID uuid.UUID       `json:"runId"`
	Stats domain.RunStats `json:"stats"`
}

func (e RunCompleted) EventName() string { return "watch.run.completed" }
