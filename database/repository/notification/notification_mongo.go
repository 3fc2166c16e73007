package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"timeslice/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoNotificationRepo struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepo() NotificationRepository {
	return &mongoNotificationRepo{coll: database.Database().Collection("notifications")}
}

func (r *mongoNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"userId": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("error counting unread notifications for %s: %w", userID, err)
	}
	return int(n), nil
}
