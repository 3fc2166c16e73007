package analytics

import (
	"timeslice/models"
)

const (
	seriesCompleted    = "completedTasks"
	seriesApplications = "applications"
	seriesAccepted     = "accepted"
	seriesEarnings     = "earnings"
	seriesRating       = "rating"
)

// timelineRecords flattens the user's activity into aggregator records, filtered by role.
func timelineRecords(userID string, a *activity) []Record {
	var records []Record
	for _, t := range a.tasks {
		if t.SelectedHelper == userID && t.Status == models.TaskStatusCompleted {
			records = append(records, Record{At: t.CreatedAt, Values: map[string]float64{seriesCompleted: 1}})
		}
	}
	for _, app := range a.applications {
		if app.ApplicantID != userID {
			continue
		}
		accepted := 0.0
		if app.Status == models.ApplicationAccepted {
			accepted = 1
		}
		records = append(records, Record{At: app.CreatedAt, Values: map[string]float64{
			seriesApplications: 1,
			seriesAccepted:     accepted,
		}})
	}
	for _, b := range a.bookings {
		if b.Status != models.BookingCompleted {
			continue
		}
		values := make(map[string]float64, 2)
		if b.Helper == userID {
			values[seriesEarnings] = float64(b.AgreedCredits)
		}
		if r := b.ReviewReceivedBy(userID); r != nil {
			values[seriesRating] = float64(r.Rating)
		}
		if len(values) > 0 {
			records = append(records, Record{At: b.CreatedAt, Values: values})
		}
	}
	return records
}

// buildTimeline buckets the activity by spec and flags earnings outliers.
func buildTimeline(userID string, a *activity, spec BucketSpec) []models.TimelinePoint {
	buckets := Aggregate(timelineRecords(userID, a), spec,
		seriesCompleted, seriesApplications, seriesAccepted, seriesEarnings, seriesRating)

	points := make([]models.TimelinePoint, len(buckets))
	for i, b := range buckets {
		applications := int(b.Value(seriesApplications, "sum"))
		accepted := int(b.Value(seriesAccepted, "sum"))
		points[i] = models.TimelinePoint{
			Date:                 b.Label(),
			Start:                b.Start,
			End:                  b.End,
			CompletedTasks:       int(b.Value(seriesCompleted, "sum")),
			Applications:         applications,
			AcceptedApplications: accepted,
			Earnings:             int(b.Value(seriesEarnings, "sum")),
			SuccessRate:          rate(accepted, applications),
			Rating:               round2(b.Value(seriesRating, "average")),
		}
	}

	for _, o := range DetectOutliers(earningsSeries(points), DefaultOutlierThreshold) {
		points[o.Index].Outlier = true
	}
	return points
}

func earningsSeries(points []models.TimelinePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = float64(p.Earnings)
	}
	return out
}

func activitySeries(points []models.TimelinePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = float64(p.Applications + p.CompletedTasks)
	}
	return out
}
