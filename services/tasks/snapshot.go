package tasks

import (
	"encoding/json"
	"time"

	"timeslice/models"

	"github.com/hibiken/asynq"
)

const (
	TypeSnapshotWrite      = "analytics:snapshot"
	TypeSnapshotInvalidate = "analytics:snapshot:invalidate"

	SnapshotQueue = "analytics"
)

// NewSnapshotTask builds the write-behind job for a computed bundle.
func NewSnapshotTask(payload models.SnapshotPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSnapshotWrite, b)
	opts := []asynq.Option{
		asynq.Queue(SnapshotQueue),
		asynq.MaxRetry(3),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

// NewSnapshotInvalidationTask builds the job that marks a user's snapshots stale.
func NewSnapshotInvalidationTask(userID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(models.SnapshotInvalidationPayload{UserID: userID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSnapshotInvalidate, b)
	opts := []asynq.Option{
		asynq.Queue(SnapshotQueue),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}
