package applicationRepo

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

type mongoApplicationRepo struct {
	coll *mongo.Collection
}

// NewMongoApplicationRepo returns an ApplicationRepository backed by the "applications" collection.
func NewMongoApplicationRepo() ApplicationRepository {
	repo := &mongoApplicationRepo{coll: database.Database().Collection("applications")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create application indexes: %v\n", err)
	}
	return repo
}

func (r *mongoApplicationRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "applicantId", Value: 1}, {Key: "taskId", Value: 1}}},
		{Keys: bson.D{{Key: "taskProviderId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	})
	return err
}

func (r *mongoApplicationRepo) FindByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"$or": []bson.M{
			{"applicantId": userID},
			{"taskProviderId": userID},
		},
		"createdAt": bson.M{"$gte": start, "$lt": end},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching applications for %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var apps []models.Application
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("error decoding applications: %w", err)
	}
	return apps, nil
}

// AggregateByApplicant counts submitted and accepted applications per applicant.
func (r *mongoApplicationRepo) AggregateByApplicant(ctx context.Context, start, end time.Time) ([]ApplicantStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"createdAt": bson.M{"$gte": start, "$lt": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$applicantId",
			"submitted": bson.M{"$sum": 1},
			"accepted": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.ApplicationAccepted}}, 1, 0},
			}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregation error: %w", err)
	}
	defer cursor.Close(ctx)

	var results []ApplicantStats
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("error decoding aggregation result: %w", err)
	}
	return results, nil
}

func (r *mongoApplicationRepo) CountPendingReceived(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{
		"taskProviderId": userID,
		"status":         models.ApplicationPending,
	})
	if err != nil {
		return 0, fmt.Errorf("error counting pending applications for %s: %w", userID, err)
	}
	return int(n), nil
}
