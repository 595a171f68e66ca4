package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

type schedulerConfig struct {
	redisURL string
	queue    string
}

func (c schedulerConfig) GetRedisURL() string      { return c.redisURL }
func (c schedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c schedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c schedulerConfig) GetAsynqConcurrency() int  { return 1 }
func (c schedulerConfig) GetDailyScanHour() int     { return 7 }

func TestScanDatePayloadRoundTrip(t *testing.T) {
	task, err := NewScanDateTask(ScanDatePayload{Date: "2026-08-30", Select: "attribution"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskScanDate {
		t.Fatalf("unexpected task type %q", task.Type())
	}

	payload, err := ParseScanDatePayload(task)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.Date != "2026-08-30" || payload.Select != "attribution" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(schedulerConfig{}); err == nil {
		t.Fatal("expected missing redis url to be rejected")
	}
}

func TestEnqueueScanDateReachesRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(schedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "boampwatch"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	payload := ScanDatePayload{Date: "2026-08-30"}
	if err := client.EnqueueScanDate(context.Background(), payload); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if len(mr.Keys()) == 0 {
		t.Fatal("expected the task to be written to redis")
	}
}
