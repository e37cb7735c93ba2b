package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
)

// ErrAlreadyQueued means an identical task is still pending.
var ErrAlreadyQueued = errors.New("task already queued")

// Enqueuer hands period jobs to the background worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (string, error)
	Close() error
}

type asynqEnqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(redisOpt asynq.RedisClientOpt) Enqueuer {
	return &asynqEnqueuer{client: asynq.NewClient(redisOpt)}
}

// Enqueue returns the task id.
func (e *asynqEnqueuer) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (string, error) {
	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return "", ErrAlreadyQueued
	}
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return info.ID, nil
}

func (e *asynqEnqueuer) Close() error {
	return e.client.Close()
}
