package models

import "time"

// Chat is a conversation between task participants.
type Chat struct {
	ID            string    `bson:"id" json:"id"`
	TaskID        string    `bson:"taskId,omitempty" json:"taskId,omitempty"`
	Participants  []string  `bson:"participants" json:"participants"`
	Messages      []Message `bson:"messages" json:"messages"`
	LastMessageAt time.Time `bson:"lastMessageAt" json:"lastMessageAt"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// Message is a single chat entry.
type Message struct {
	ID       string        `bson:"id" json:"id"`
	SenderID string        `bson:"senderId" json:"senderId"`
	Content  string        `bson:"content" json:"content"`
	SentAt   time.Time     `bson:"sentAt" json:"sentAt"`
	ReadBy   []ReadReceipt `bson:"readBy,omitempty" json:"readBy,omitempty"`
}

type ReadReceipt struct {
	UserID string    `bson:"userId" json:"userId"`
	ReadAt time.Time `bson:"readAt" json:"readAt"`
}

// IsReadBy reports whether userID has a read receipt on the message.
func (m Message) IsReadBy(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
