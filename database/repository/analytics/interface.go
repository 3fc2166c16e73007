package analyticsRepo

import (
	"context"
	"fmt"

	"timeslice/database"
	"timeslice/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SnapshotRepository persists write-behind analytics snapshots.
type SnapshotRepository interface {
	// UpsertSnapshot stores the snapshot for (userId, timeRange), bumping its cache version.
	// It reports false when a newer valid snapshot is already stored.
	UpsertSnapshot(ctx context.Context, snapshot models.AnalyticsSnapshot) (bool, error)
	// InvalidateUser flags every snapshot of the user as invalidated.
	InvalidateUser(ctx context.Context, userID string) (int, error)
}

type mongoSnapshotRepo struct {
	coll *mongo.Collection
}

// NewMongoSnapshotRepo returns a SnapshotRepository backed by the "analytics" collection.
func NewMongoSnapshotRepo() SnapshotRepository {
	repo := &mongoSnapshotRepo{coll: database.Database().Collection("analytics")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create analytics indexes: %v\n", err)
	}
	return repo
}
