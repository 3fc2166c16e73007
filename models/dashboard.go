package models

import "time"

// DashboardOverview is the at-a-glance summary shown on a user's dashboard.
type DashboardOverview struct {
	UserID              string    `json:"userId"`
	Credits             int       `json:"credits"`
	Rating              float64   `json:"rating"`
	TotalRatings        int       `json:"totalRatings"`
	ActiveTasks         int       `json:"activeTasks"`
	PendingApplications int       `json:"pendingApplications"`
	ActiveBookings      int       `json:"activeBookings"`
	AwaitingReview      int       `json:"awaitingReview"`
	UnreadMessages      int       `json:"unreadMessages"`
	UnreadNotifications int       `json:"unreadNotifications"`
	GeneratedAt         time.Time `json:"generatedAt"`
}
