// Package anomaly collects the data-quality findings published during runs
// so operators can inspect them without digging through the logs.
package anomaly

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"boampwatch/internal/events"
	"boampwatch/platform/logger"
)

// defaultCapacity bounds the in-memory window; older findings roll off.
const defaultCapacity = 200

// Finding is one recorded data-quality signal.
type Finding struct {
	RunID    uuid.UUID `json:"runId"`
	NoticeID string    `json:"noticeId,omitempty"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// Sink subscribes to anomaly events and keeps a bounded window of recent
// findings. It also flags runs that finished with anomalies.
type Sink struct {
	mu       sync.Mutex
	findings []Finding
	capacity int
	log      *logger.Logger
}

func NewSink(log *logger.Logger) *Sink {
	return &Sink{capacity: defaultCapacity, log: log}
}

// RegisterHandlers subscribes the sink to the run events it consumes.
func (s *Sink) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.AnomalyDetected{}.EventName(), s)
	bus.Subscribe(events.RunCompleted{}.EventName(), s)
}

// Handle routes events to the appropriate recording method.
func (s *Sink) Handle(_ context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.AnomalyDetected:
		s.record(Finding{
			RunID:    e.RunID,
			NoticeID: e.NoticeID,
			Message:  e.Message,
			At:       e.OccurredAt(),
		})
	case events.RunCompleted:
		if e.Stats.Anomalies > 0 {
			s.log.Warn("run finished with data anomalies",
				"run_id", e.RunID.String(),
				"date", e.Stats.Date,
				"anomalies", e.Stats.Anomalies,
			)
		}
	}
	return nil
}

func (s *Sink) record(finding Finding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings = append(s.findings, finding)
	if overflow := len(s.findings) - s.capacity; overflow > 0 {
		s.findings = append([]Finding(nil), s.findings[overflow:]...)
	}
}

// Recent returns the retained findings, oldest first.
func (s *Sink) Recent() []Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Finding, len(s.findings))
	copy(out, s.findings)
	return out
}
