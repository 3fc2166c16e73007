package taskRepo

import (
	"context"
	"time"

	"timeslice/models"
)

// TaskRepository defines read access to tasks.
type TaskRepository interface {
	// FindByUserAndRange returns tasks the user owns or was selected for, created in [start, end).
	FindByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error)
	// FindByIDs returns the tasks with the given IDs. Unknown IDs are ignored.
	FindByIDs(ctx context.Context, ids []string) ([]models.Task, error)
	// CountActiveByProvider counts open, assigned and in-progress tasks owned by the user.
	CountActiveByProvider(ctx context.Context, userID string) (int, error)
}
