package notificationRepo

import "context"

// NotificationRepository defines read access to stored notifications.
type NotificationRepository interface {
	CountUnread(ctx context.Context, userID string) (int, error)
}
