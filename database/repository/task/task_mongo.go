package taskRepo

import (
	"context"
	"fmt"
	"time"

	"timeslice/database"
	"timeslice/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTaskRepo struct {
	coll *mongo.Collection
}

// NewMongoTaskRepo returns a TaskRepository backed by the "tasks" collection.
func NewMongoTaskRepo() TaskRepository {
	repo := &mongoTaskRepo{coll: database.Database().Collection("tasks")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create task indexes: %v\n", err)
	}
	return repo
}

func (r *mongoTaskRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "taskProviderId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "selectedHelper", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	return err
}

func (r *mongoTaskRepo) FindByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"$or": []bson.M{
			{"taskProviderId": userID},
			{"selectedHelper": userID},
		},
		"createdAt": bson.M{"$gte": start, "$lt": end},
	}
	return r.find(ctx, filter)
}

func (r *mongoTaskRepo) FindByIDs(ctx context.Context, ids []string) ([]models.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.find(ctx, bson.M{"id": bson.M{"$in": ids}})
}

func (r *mongoTaskRepo) CountActiveByProvider(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"taskProviderId": userID,
		"status": bson.M{"$in": []string{
			models.TaskStatusOpen,
			models.TaskStatusAssigned,
			models.TaskStatusInProgress,
		}},
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("error counting active tasks for %s: %w", userID, err)
	}
	return int(n), nil
}

func (r *mongoTaskRepo) find(ctx context.Context, filter bson.M) ([]models.Task, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("error decoding tasks: %w", err)
	}
	return tasks, nil
}
