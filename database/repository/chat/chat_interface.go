package chatRepo

import (
	"context"
	"time"

	"timeslice/models"
)

// ChatRepository defines read access to chats and their embedded messages.
type ChatRepository interface {
	// FindByParticipantAndRange returns the user's chats that carry at least one message sent in [start, end).
	// Messages are returned in full so reply delays can be measured across the window boundary.
	FindByParticipantAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.Chat, error)
	// CountUnreadMessages counts messages sent by others that the user has not read.
	CountUnreadMessages(ctx context.Context, userID string) (int, error)
}
