package models

import "time"

const (
	TaskStatusOpen       = "open"
	TaskStatusAssigned   = "assigned"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// Task is a unit of work posted by a task provider.
type Task struct {
	ID             string     `bson:"id" json:"id"`
	Title          string     `bson:"title" json:"title"`
	Description    string     `bson:"description,omitempty" json:"description,omitempty"`
	Category       string     `bson:"category" json:"category"`
	SkillsRequired []string   `bson:"skillsRequired,omitempty" json:"skillsRequired,omitempty"`
	Credits        int        `bson:"credits" json:"credits"` // Price offered by the provider
	Status         string     `bson:"status" json:"status"`
	TaskProviderID string     `bson:"taskProviderId" json:"taskProviderId"`
	SelectedHelper string     `bson:"selectedHelper,omitempty" json:"selectedHelper,omitempty"`
	Deadline       *time.Time `bson:"deadline,omitempty" json:"deadline,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// IsActive reports whether the task still needs attention from its provider.
func (t Task) IsActive() bool {
	switch t.Status {
	case TaskStatusOpen, TaskStatusAssigned, TaskStatusInProgress:
		return true
	}
	return false
}
