package analytics

import (
	"fmt"
	"time"

	"timeslice/models"

	"github.com/google/uuid"
)

const (
	recentWindow        = 7 * day
	completionThreshold = 90.0
	minAssignedForRate  = 3
	slowResponseMinutes = 24 * 60.0
)

// insightInput is everything the rules look at.
type insightInput struct {
	Metrics            models.Metrics
	Platform           models.BenchmarkBundle
	Rating             float64
	TotalRatings       int
	RecentApplications int
	EarningsTrend      models.Trend
}

// generateInsights evaluates the rules in order. Rules never suppress each other.
func generateInsights(in insightInput) []models.Insight {
	insights := []models.Insight{}
	m := in.Metrics

	if m.ApplicationsSubmitted > 0 && m.ApplicationSuccessRate < in.Platform.AvgSuccessRate {
		insights = append(insights, newInsight(models.InsightImprovement, models.ImpactHigh, true,
			"Application success rate below average",
			fmt.Sprintf("%.1f%% of your applications were accepted against a platform average of %.1f%%. Tailor proposals to each task's required skills.",
				m.ApplicationSuccessRate, in.Platform.AvgSuccessRate),
			map[string]any{"userValue": m.ApplicationSuccessRate, "platformAverage": in.Platform.AvgSuccessRate}))
	}

	if in.TotalRatings > 0 && in.Rating > in.Platform.AvgRating {
		insights = append(insights, newInsight(models.InsightAchievement, models.ImpactMedium, false,
			"Rated above the platform average",
			fmt.Sprintf("Your rating of %.2f is above the platform average of %.2f.", in.Rating, in.Platform.AvgRating),
			map[string]any{"userValue": in.Rating, "platformAverage": in.Platform.AvgRating}))
	}

	if in.RecentApplications == 0 {
		insights = append(insights, newInsight(models.InsightRecommendation, models.ImpactMedium, true,
			"No applications this week",
			"You have not applied to any task in the last 7 days. Browse open tasks that match your skills.",
			nil))
	}

	if in.EarningsTrend.Direction == models.TrendDecreasing {
		insights = append(insights, newInsight(models.InsightWarning, models.ImpactHigh, true,
			"Earnings are declining",
			"Credits earned per period have been trending down.",
			map[string]any{"slope": in.EarningsTrend.Slope, "change": in.EarningsTrend.Change}))
	}

	if m.TasksAssigned >= minAssignedForRate && m.TaskCompletionRate >= completionThreshold {
		insights = append(insights, newInsight(models.InsightAchievement, models.ImpactLow, false,
			"Reliable task completion",
			fmt.Sprintf("You completed %d of %d assigned tasks.", m.TasksCompleted, m.TasksAssigned),
			map[string]any{"completionRate": m.TaskCompletionRate}))
	}

	if m.AverageResponseMinutes > slowResponseMinutes {
		insights = append(insights, newInsight(models.InsightRecommendation, models.ImpactLow, true,
			"Slow message replies",
			fmt.Sprintf("You take %.1f hours on average to reply to messages. Faster replies help win tasks.", m.AverageResponseMinutes/60),
			map[string]any{"averageResponseMinutes": m.AverageResponseMinutes}))
	}

	return insights
}

func newInsight(kind, impact string, action bool, title, description string, metadata map[string]any) models.Insight {
	return models.Insight{
		ID:             uuid.New().String(),
		Type:           kind,
		Title:          title,
		Description:    description,
		Impact:         impact,
		ActionRequired: action,
		Metadata:       metadata,
	}
}

// recentApplications counts applications the user submitted in the last 7 days before end.
func recentApplications(userID string, apps []models.Application, end time.Time) int {
	n := 0
	for _, app := range apps {
		if app.ApplicantID == userID && inRange(app.CreatedAt, end.Add(-recentWindow), end) {
			n++
		}
	}
	return n
}
