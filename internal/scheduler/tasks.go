package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskScanDaily is the recurring scan of the previous day's bulletin.
const TaskScanDaily = "scan.daily"

// TaskScanDate is an ad hoc scan of one specific date, enqueued through the
// admin API.
const TaskScanDate = "scan.date"

type ScanDatePayload struct {
	Date   string `json:"date"`
	Select string `json:"select,omitempty"`
}

func NewScanDailyTask() *asynq.Task {
	return asynq.NewTask(TaskScanDaily, nil)
}

func NewScanDateTask(payload ScanDatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScanDate, data), nil
}

func ParseScanDatePayload(task *asynq.Task) (ScanDatePayload, error) {
	var payload ScanDatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ScanDatePayload{}, err
	}
	return payload, nil
}
