package analyticsRepo

import (
	"context"
	"fmt"
	"time"

	"timeslice/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoSnapshotRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "timeRange", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Expired snapshots are dropped by MongoDB itself.
			Keys:    bson.D{{Key: "cache.expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	return err
}

// upsertFilter matches the stored snapshot only when it is not newer than snapshot,
// or when it was invalidated.
func upsertFilter(snapshot models.AnalyticsSnapshot) bson.M {
	return bson.M{
		"userId":    snapshot.UserID,
		"timeRange": snapshot.TimeRange,
		"$or": bson.A{
			bson.M{"generatedAt": bson.M{"$lte": snapshot.GeneratedAt}},
			bson.M{"cache.invalidated": true},
		},
	}
}

// UpsertSnapshot replaces the stored metrics and increments cache.version. A newer valid
// snapshot fails the filter, the upsert then collides with the unique (userId, timeRange)
// index, and the write is reported as skipped.
func (r *mongoSnapshotRepo) UpsertSnapshot(ctx context.Context, snapshot models.AnalyticsSnapshot) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if snapshot.ID == "" {
		snapshot.ID = uuid.New().String()
	}
	now := time.Now()

	update := bson.M{
		"$set": bson.M{
			"period":            snapshot.Period,
			"metrics":           snapshot.Metrics,
			"changes":           snapshot.Changes,
			"generatedAt":       snapshot.GeneratedAt,
			"cache.expiresAt":   snapshot.Cache.ExpiresAt,
			"cache.invalidated": false,
			"updatedAt":         now,
		},
		"$inc": bson.M{"cache.version": 1},
		"$setOnInsert": bson.M{
			"id":        snapshot.ID,
			"createdAt": now,
		},
	}
	_, err := r.coll.UpdateOne(ctx, upsertFilter(snapshot), update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error upserting analytics snapshot for %s: %w", snapshot.UserID, err)
	}
	return true, nil
}

func (r *mongoSnapshotRepo) InvalidateUser(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateMany(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"cache.invalidated": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, fmt.Errorf("error invalidating analytics snapshots for %s: %w", userID, err)
	}
	return int(res.ModifiedCount), nil
}
