package analytics

import (
	"context"

	"timeslice/models"
	"timeslice/services/tasks"

	"github.com/hibiken/asynq"
)

// SnapshotWriter persists computed bundles behind the in-process cache.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, bundle *models.AnalyticsBundle) error
	InvalidateUser(ctx context.Context, userID string) error
}

// Enqueuer is the subset of *asynq.Client used by AsynqSnapshotWriter.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqSnapshotWriter hands snapshots to the background worker.
type AsynqSnapshotWriter struct {
	client Enqueuer
}

func NewAsynqSnapshotWriter(client Enqueuer) *AsynqSnapshotWriter {
	return &AsynqSnapshotWriter{client: client}
}

func (w *AsynqSnapshotWriter) WriteSnapshot(ctx context.Context, bundle *models.AnalyticsBundle) error {
	task, opts, err := tasks.NewSnapshotTask(models.SnapshotPayload{
		UserID:      bundle.UserID,
		TimeRange:   bundle.TimeRange,
		Period:      bundle.Period,
		Metrics:     bundle.Metrics,
		Changes:     bundle.Changes,
		GeneratedAt: bundle.GeneratedAt,
	})
	if err != nil {
		return err
	}
	_, err = w.client.EnqueueContext(ctx, task, opts...)
	return err
}

func (w *AsynqSnapshotWriter) InvalidateUser(ctx context.Context, userID string) error {
	task, opts, err := tasks.NewSnapshotInvalidationTask(userID)
	if err != nil {
		return err
	}
	_, err = w.client.EnqueueContext(ctx, task, opts...)
	return err
}
