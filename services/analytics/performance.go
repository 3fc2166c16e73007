package analytics

import (
	"sort"
	"time"

	"timeslice/models"
)

// buildPerformance derives quality indicators from the user record and the window's bookings.
func buildPerformance(user *models.User, a *activity, tasks map[string]models.Task, metrics models.Metrics, timeline []models.TimelinePoint, start, end time.Time) models.Performance {
	perf := models.Performance{
		Rating:                 user.Rating,
		TotalRatings:           user.TotalRatings,
		CompletedTasksOverall:  user.CompletedTasks,
		RatingDistribution:     map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		AverageResponseMinutes: metrics.AverageResponseMinutes,
		EarningsTrend:          ClassifyTrend(earningsSeries(timeline)),
		ActivityTrend:          ClassifyTrend(activitySeries(timeline)),
	}

	var (
		completionHours      float64
		timed                int
		withDeadline, onTime int
		perClient            = make(map[string]int)
		days                 = make(map[time.Time]struct{})
	)
	for _, b := range a.bookings {
		if b.Status != models.BookingCompleted || !inRange(b.CreatedAt, start, end) {
			continue
		}
		if r := b.ReviewReceivedBy(user.ID); r != nil && r.Rating >= 1 && r.Rating <= 5 {
			perf.RatingDistribution[r.Rating]++
		}
		if b.Helper != user.ID {
			continue
		}
		perClient[b.TaskProvider]++
		days[b.SettledAt().UTC().Truncate(day)] = struct{}{}

		if b.StartedAt != nil && b.CompletedAt != nil && !b.CompletedAt.Before(*b.StartedAt) {
			completionHours += b.CompletedAt.Sub(*b.StartedAt).Hours()
			timed++
		}
		if task, ok := tasks[b.TaskID]; ok && task.Deadline != nil {
			withDeadline++
			if !b.SettledAt().After(*task.Deadline) {
				onTime++
			}
		}
	}

	if timed > 0 {
		perf.AverageCompletionHours = round2(completionHours / float64(timed))
	}
	perf.OnTimeCompletionRate = rate(onTime, withDeadline)
	for _, n := range perClient {
		if n > 1 {
			perf.RepeatClients++
		}
	}
	perf.CurrentStreakDays, perf.LongestStreakDays = streaks(days, end.UTC().Truncate(day))
	return perf
}

// streaks returns the run of consecutive active days ending today (or yesterday, when today
// has no activity yet) and the longest run overall.
func streaks(days map[time.Time]struct{}, today time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}
	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	run := 0
	for i, d := range sorted {
		if i > 0 && d.Sub(sorted[i-1]) == day {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	cursor := today
	if _, ok := days[cursor]; !ok {
		cursor = cursor.Add(-day)
	}
	for {
		if _, ok := days[cursor]; !ok {
			break
		}
		current++
		cursor = cursor.Add(-day)
	}
	return current, longest
}
