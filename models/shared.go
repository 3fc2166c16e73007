package models

import "time"

// SnapshotPayload is the background job payload that persists a computed analytics bundle.
type SnapshotPayload struct {
	UserID      string         `json:"userId"`
	TimeRange   string         `json:"timeRange"`
	Period      Period         `json:"period"`
	Metrics     Metrics        `json:"metrics"`
	Changes     map[string]int `json:"changes,omitempty"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// SnapshotInvalidationPayload flags every persisted snapshot of a user as stale.
type SnapshotInvalidationPayload struct {
	UserID string `json:"userId"`
}
