// File: models/analytics.go
package models

import "time"

const (
	InsightImprovement    = "improvement"
	InsightAchievement    = "achievement"
	InsightRecommendation = "recommendation"
	InsightWarning        = "warning"

	ImpactLow    = "low"
	ImpactMedium = "medium"
	ImpactHigh   = "high"

	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Period is the resolved absolute window of a time range token.
type Period struct {
	StartDate time.Time `bson:"startDate" json:"startDate"`
	EndDate   time.Time `bson:"endDate" json:"endDate"`
}

// Metrics holds the flat counters and rates computed for one user and one period.
type Metrics struct {
	TasksCreated           int     `bson:"tasksCreated" json:"tasksCreated"`
	TasksAssigned          int     `bson:"tasksAssigned" json:"tasksAssigned"`
	TasksCompleted         int     `bson:"tasksCompleted" json:"tasksCompleted"`
	ApplicationsSubmitted  int     `bson:"applicationsSubmitted" json:"applicationsSubmitted"`
	ApplicationsReceived   int     `bson:"applicationsReceived" json:"applicationsReceived"`
	ApplicationsAccepted   int     `bson:"applicationsAccepted" json:"applicationsAccepted"`
	BookingsCompleted      int     `bson:"bookingsCompleted" json:"bookingsCompleted"`
	ActiveBookings         int     `bson:"activeBookings" json:"activeBookings"`
	ReviewsReceived        int     `bson:"reviewsReceived" json:"reviewsReceived"`
	MessagesSent           int     `bson:"messagesSent" json:"messagesSent"`
	CreditsEarned          int     `bson:"creditsEarned" json:"creditsEarned"`
	CreditsSpent           int     `bson:"creditsSpent" json:"creditsSpent"`
	NetCredits             int     `bson:"netCredits" json:"netCredits"`
	ApplicationSuccessRate float64 `bson:"applicationSuccessRate" json:"applicationSuccessRate"`
	TaskCompletionRate     float64 `bson:"taskCompletionRate" json:"taskCompletionRate"`
	AverageTaskValue       float64 `bson:"averageTaskValue" json:"averageTaskValue"`
	AverageRating          float64 `bson:"averageRating" json:"averageRating"`
	AverageResponseMinutes float64 `bson:"averageResponseMinutes" json:"averageResponseMinutes"`
}

// Values exposes the metrics as a name -> value mapping, keyed by their JSON names.
func (m Metrics) Values() map[string]float64 {
	return map[string]float64{
		"tasksCreated":           float64(m.TasksCreated),
		"tasksAssigned":          float64(m.TasksAssigned),
		"tasksCompleted":         float64(m.TasksCompleted),
		"applicationsSubmitted":  float64(m.ApplicationsSubmitted),
		"applicationsReceived":   float64(m.ApplicationsReceived),
		"applicationsAccepted":   float64(m.ApplicationsAccepted),
		"bookingsCompleted":      float64(m.BookingsCompleted),
		"activeBookings":         float64(m.ActiveBookings),
		"reviewsReceived":        float64(m.ReviewsReceived),
		"messagesSent":           float64(m.MessagesSent),
		"creditsEarned":          float64(m.CreditsEarned),
		"creditsSpent":           float64(m.CreditsSpent),
		"netCredits":             float64(m.NetCredits),
		"applicationSuccessRate": m.ApplicationSuccessRate,
		"taskCompletionRate":     m.TaskCompletionRate,
		"averageTaskValue":       m.AverageTaskValue,
		"averageRating":          m.AverageRating,
		"averageResponseMinutes": m.AverageResponseMinutes,
	}
}

// TimelinePoint is one bucket of the activity timeline.
type TimelinePoint struct {
	Date                 string    `json:"date"`
	Start                time.Time `json:"start"`
	End                  time.Time `json:"end"`
	CompletedTasks       int       `json:"completedTasks"`
	Applications         int       `json:"applications"`
	AcceptedApplications int       `json:"acceptedApplications"`
	Earnings             int       `json:"earnings"`
	SuccessRate          float64   `json:"successRate"`
	Rating               float64   `json:"rating"`
	Outlier              bool      `json:"outlier,omitempty"`
}

// Trend is the least-squares classification of a series.
type Trend struct {
	Direction string  `json:"direction"`
	Slope     float64 `json:"slope"`
	Change    float64 `json:"change"`
}

// Performance carries derived quality indicators for a user.
type Performance struct {
	Rating                 float64     `json:"rating"`
	TotalRatings           int         `json:"totalRatings"`
	CompletedTasksOverall  int         `json:"completedTasksOverall"`
	RatingDistribution     map[int]int `json:"ratingDistribution"`
	AverageCompletionHours float64     `json:"averageCompletionHours"`
	OnTimeCompletionRate   float64     `json:"onTimeCompletionRate"`
	RepeatClients          int         `json:"repeatClients"`
	CurrentStreakDays      int         `json:"currentStreakDays"`
	LongestStreakDays      int         `json:"longestStreakDays"`
	AverageResponseMinutes float64     `json:"averageResponseMinutes"`
	EarningsTrend          Trend       `json:"earningsTrend"`
	ActivityTrend          Trend       `json:"activityTrend"`
}

// EarningTransaction is one settled booking seen from the requesting user.
type EarningTransaction struct {
	BookingID string    `json:"bookingId"`
	TaskID    string    `json:"taskId"`
	TaskTitle string    `json:"taskTitle,omitempty"`
	Category  string    `json:"category,omitempty"`
	Credits   int       `json:"credits"`
	Type      string    `json:"type"` // "earn" or "spend"
	At        time.Time `json:"at"`
}

// Earnings summarises the credits a user earned in the period.
type Earnings struct {
	Total        int                  `json:"total"`
	Average      float64              `json:"average"`
	ByCategory   map[string]int       `json:"byCategory"`
	Transactions []EarningTransaction `json:"transactions,omitempty"`
}

// BenchmarkBundle holds platform-wide averages for a period.
type BenchmarkBundle struct {
	TimeRange             string    `json:"timeRange"`
	Period                Period    `json:"period"`
	AvgRating             float64   `json:"avgRating"`
	AvgSuccessRate        float64   `json:"avgSuccessRate"`
	AvgTaskValue          float64   `json:"avgTaskValue"`
	TotalUsers            int       `json:"totalUsers"`
	RatedUsers            int       `json:"ratedUsers"`
	ActiveApplicants      int       `json:"activeApplicants"`
	ActiveHelpers         int       `json:"activeHelpers"`
	TotalApplications     int       `json:"totalApplications"`
	AcceptedApplications  int       `json:"acceptedApplications"`
	CompletedBookings     int       `json:"completedBookings"`
	TotalCreditsExchanged int       `json:"totalCreditsExchanged"`
	GeneratedAt           time.Time `json:"generatedAt"`
}

// Comparative places a user's metrics against the platform benchmarks.
type Comparative struct {
	Platform    BenchmarkBundle    `json:"platform"`
	Percentiles map[string]int     `json:"percentiles"`
	Differences map[string]float64 `json:"differences"`
}

// Insight is a typed advisory record derived from metrics and benchmarks.
type Insight struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Impact         string         `json:"impact"`
	ActionRequired bool           `json:"actionRequired"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// AnalyticsBundle is the full analytics response for one user and time range.
type AnalyticsBundle struct {
	UserID      string          `json:"userId"`
	TimeRange   string          `json:"timeRange"`
	Period      Period          `json:"period"`
	Metrics     Metrics         `json:"metrics"`
	Changes     map[string]int  `json:"changes"`
	Timeline    []TimelinePoint `json:"timeline"`
	Performance Performance     `json:"performance"`
	Comparative Comparative     `json:"comparative"`
	Insights    []Insight       `json:"insights"`
	Earnings    Earnings        `json:"earnings"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// ComparisonBundle compares one metric of a user against the platform.
type ComparisonBundle struct {
	UserID            string    `json:"userId"`
	TimeRange         string    `json:"timeRange"`
	Metric            string    `json:"metric"`
	UserValue         float64   `json:"userValue"`
	PlatformAverage   float64   `json:"platformAverage"`
	Difference        float64   `json:"difference"`
	DifferencePercent int       `json:"differencePercent"`
	Percentile        int       `json:"percentile"`
	PopulationSize    int       `json:"populationSize"`
	Standing          string    `json:"standing"` // "above", "below" or "average"
	GeneratedAt       time.Time `json:"generatedAt"`
}

// AnalyticsSnapshot is the persisted write-behind copy of a computed bundle.
type AnalyticsSnapshot struct {
	ID          string         `bson:"id" json:"id"`
	UserID      string         `bson:"userId" json:"userId"`
	TimeRange   string         `bson:"timeRange" json:"timeRange"`
	Period      Period         `bson:"period" json:"period"`
	Metrics     Metrics        `bson:"metrics" json:"metrics"`
	Changes     map[string]int `bson:"changes,omitempty" json:"changes,omitempty"`
	GeneratedAt time.Time      `bson:"generatedAt" json:"generatedAt"`
	Cache       SnapshotCache  `bson:"cache" json:"cache"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt"`
}

type SnapshotCache struct {
	Version     int       `bson:"version" json:"version"`
	ExpiresAt   time.Time `bson:"expiresAt" json:"expiresAt"`
	Invalidated bool      `bson:"invalidated" json:"invalidated"`
}
