package models

import "time"

const (
	ApplicationPending   = "pending"
	ApplicationAccepted  = "accepted"
	ApplicationRejected  = "rejected"
	ApplicationWithdrawn = "withdrawn"
)

// Application is a helper's bid on a task.
type Application struct {
	ID              string     `bson:"id" json:"id"`
	TaskID          string     `bson:"taskId" json:"taskId"`
	ApplicantID     string     `bson:"applicantId" json:"applicantId"`
	TaskProviderID  string     `bson:"taskProviderId" json:"taskProviderId"`
	Status          string     `bson:"status" json:"status"`
	ProposedCredits int        `bson:"proposedCredits" json:"proposedCredits"`
	Message         string     `bson:"message,omitempty" json:"message,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
	RespondedAt     *time.Time `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
}
