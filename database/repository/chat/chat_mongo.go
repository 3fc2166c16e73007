package chatRepo

import (
	"context"
	"fmt"
	"time"

	"timeslice/database"
	"timeslice/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoChatRepo struct {
	coll *mongo.Collection
}

// NewMongoChatRepo returns a ChatRepository backed by the "chats" collection.
func NewMongoChatRepo() ChatRepository {
	repo := &mongoChatRepo{coll: database.Database().Collection("chats")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create chat indexes: %v\n", err)
	}
	return repo
}

func (r *mongoChatRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "participants", Value: 1}, {Key: "lastMessageAt", Value: -1}},
	})
	return err
}

func (r *mongoChatRepo) FindByParticipantAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"participants": userID,
		"messages": bson.M{"$elemMatch": bson.M{
			"sentAt": bson.M{"$gte": start, "$lt": end},
		}},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching chats for %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var chats []models.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("error decoding chats: %w", err)
	}
	return chats, nil
}

// CountUnreadMessages unwinds the user's chats and counts unread messages from other participants.
func (r *mongoChatRepo) CountUnreadMessages(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"participants": userID}}},
		{{Key: "$unwind", Value: "$messages"}},
		{{Key: "$match", Value: bson.M{
			"messages.senderId":      bson.M{"$ne": userID},
			"messages.readBy.userId": bson.M{"$ne": userID},
		}}},
		{{Key: "$count", Value: "unread"}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregation error: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Unread int `bson:"unread"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("error decoding aggregation result: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Unread, nil
}
