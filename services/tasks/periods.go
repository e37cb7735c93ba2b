package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeMigrateLegacy = "periods:migrate"
	TypeClosePrevious = "periods:close-previous"

	QueuePeriods = "periods"

	// Overlapping triggers inside this window collapse to one task.
	uniqueWindow = 10 * time.Minute
)

// TriggerPayload records who asked for a background period job.
type TriggerPayload struct {
	RequestedBy string    `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewMigrateTask(payload TriggerPayload) (*asynq.Task, []asynq.Option, error) {
	return newPeriodTask(TypeMigrateLegacy, payload)
}

func NewClosePreviousTask(payload TriggerPayload) (*asynq.Task, []asynq.Option, error) {
	return newPeriodTask(TypeClosePrevious, payload)
}

// ParsePayload decodes a task payload. An empty payload is allowed.
func ParsePayload(task *asynq.Task) (TriggerPayload, error) {
	var p TriggerPayload
	if len(task.Payload()) == 0 {
		return p, nil
	}
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}

func newPeriodTask(typename string, payload TriggerPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(typename, b)
	opts := []asynq.Option{
		asynq.Queue(QueuePeriods),
		asynq.Unique(uniqueWindow),
		asynq.MaxRetry(5),
		asynq.Timeout(5 * time.Minute),
	}
	return task, opts, nil
}
