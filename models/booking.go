package models

import "time"

const (
	BookingConfirmed     = "confirmed"
	BookingInProgress    = "in-progress"
	BookingWorkSubmitted = "work-submitted"
	BookingCompleted     = "completed"
	BookingCancelled     = "cancelled"
)

const (
	ReviewOfHelper       = "helper"
	ReviewOfTaskProvider = "taskProvider"
)

// Booking is the contract created when a task provider accepts an application.
type Booking struct {
	ID                 string        `bson:"id" json:"id"`
	TaskID             string        `bson:"taskId" json:"taskId"`
	ApplicationID      string        `bson:"applicationId" json:"applicationId"`
	Helper             string        `bson:"helper" json:"helper"`
	TaskProvider       string        `bson:"taskProvider" json:"taskProvider"`
	AgreedCredits      int           `bson:"agreedCredits" json:"agreedCredits"`
	Status             string        `bson:"status" json:"status"`
	HelperReview       *Review       `bson:"helperReview,omitempty" json:"helperReview,omitempty"`             // Review of the helper, written by the task provider
	TaskProviderReview *Review       `bson:"taskProviderReview,omitempty" json:"taskProviderReview,omitempty"` // Review of the task provider, written by the helper
	ReviewedBy         []ReviewMark  `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	Deliverables       []Deliverable `bson:"deliverables,omitempty" json:"deliverables,omitempty"`
	StartedAt          *time.Time    `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt        *time.Time    `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt          time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Review is a single rating left on a booking.
type Review struct {
	Rating    int       `bson:"rating" json:"rating"` // 1-5
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// ReviewMark records who already reviewed a booking and in which direction.
type ReviewMark struct {
	UserID     string `bson:"userId" json:"userId"`
	ReviewType string `bson:"reviewType" json:"reviewType"`
}

// Deliverable is a file or link submitted by the helper.
type Deliverable struct {
	Kind string `bson:"kind" json:"kind"` // "file" or "link"
	Name string `bson:"name,omitempty" json:"name,omitempty"`
	URL  string `bson:"url" json:"url"`
}

// IsActive reports whether work on the booking is still ongoing.
func (b Booking) IsActive() bool {
	switch b.Status {
	case BookingConfirmed, BookingInProgress, BookingWorkSubmitted:
		return true
	}
	return false
}

// ReviewReceivedBy returns the review written about userID on this booking, if any.
func (b Booking) ReviewReceivedBy(userID string) *Review {
	switch userID {
	case b.Helper:
		return b.HelperReview
	case b.TaskProvider:
		return b.TaskProviderReview
	}
	return nil
}

// SettledAt returns the completion time, falling back to the creation time.
func (b Booking) SettledAt() time.Time {
	if b.CompletedAt != nil {
		return *b.CompletedAt
	}
	return b.CreatedAt
}
