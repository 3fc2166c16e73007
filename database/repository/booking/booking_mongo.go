package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() BookingRepository {
	repo := &MongoBookingRepo{bookingColl: database.Database().Collection("bookings")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

func (repo *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.bookingColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "helper", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "taskProvider", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	return err
}

// FindByUserAndRange fetches the user's bookings on either side of the contract.
func (repo *MongoBookingRepo) FindByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"$or": []bson.M{
			{"helper": userID},
			{"taskProvider": userID},
		},
		"createdAt": bson.M{"$gte": start, "$lt": end},
	}
	return repo.find(ctx, filter)
}

// AggregateCompletedByHelper sums completed booking counts and agreed credits per helper.
func (repo *MongoBookingRepo) AggregateCompletedByHelper(ctx context.Context, start, end time.Time) ([]HelperEarnings, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":    models.BookingCompleted,
			"createdAt": bson.M{"$gte": start, "$lt": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$helper",
			"completed": bson.M{"$sum": 1},
			"credits":   bson.M{"$sum": "$agreedCredits"},
		}}},
	}
	cursor, err := repo.bookingColl.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregation error: %w", err)
	}
	defer cursor.Close(ctx)

	var results []HelperEarnings
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("error decoding aggregation result: %w", err)
	}
	return results, nil
}

// FindActiveByUser fetches bookings that are still being worked on.
func (repo *MongoBookingRepo) FindActiveByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"$or": []bson.M{
			{"helper": userID},
			{"taskProvider": userID},
		},
		"status": bson.M{"$in": []string{
			models.BookingConfirmed,
			models.BookingInProgress,
			models.BookingWorkSubmitted,
		}},
	}
	return repo.find(ctx, filter)
}

func (repo *MongoBookingRepo) find(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	cursor, err := repo.bookingColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}
