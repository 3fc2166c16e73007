package analytics

import (
	"context"

	applicationRepo "timeslice/database/repository/application"
	bookingRepo "timeslice/database/repository/booking"
	"timeslice/models"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// Comparable metric names.
const (
	MetricRating           = "rating"
	MetricSuccessRate      = "successRate"
	MetricCreditsEarned    = "creditsEarned"
	MetricAverageTaskValue = "averageTaskValue"
	MetricTasksCompleted   = "tasksCompleted"
)

// ComparableMetrics lists the metrics accepted by GetUserComparison, in report order.
var ComparableMetrics = []string{
	MetricRating,
	MetricSuccessRate,
	MetricCreditsEarned,
	MetricAverageTaskValue,
	MetricTasksCompleted,
}

func isComparable(metric string) bool {
	for _, m := range ComparableMetrics {
		if m == metric {
			return true
		}
	}
	return false
}

// PlatformSnapshot is the cached form of the platform benchmarks. Distributions keep the
// per-user populations needed for percentile ranks, keyed by comparable metric.
type PlatformSnapshot struct {
	Bundle        models.BenchmarkBundle `json:"bundle"`
	Distributions map[string][]float64   `json:"distributions"`
}

// average returns the platform mean of a comparable metric.
func (p *PlatformSnapshot) average(metric string) float64 {
	switch metric {
	case MetricRating:
		return p.Bundle.AvgRating
	case MetricSuccessRate:
		return p.Bundle.AvgSuccessRate
	case MetricAverageTaskValue:
		return p.Bundle.AvgTaskValue
	}
	mean, err := stats.Mean(p.Distributions[metric])
	if err != nil {
		return 0
	}
	return round2(mean)
}

// computeBenchmarks aggregates every user, applicant and helper in the period.
func (s *Service) computeBenchmarks(ctx context.Context, timeRange string, period models.Period) (*PlatformSnapshot, error) {
	var (
		rated      []models.User
		totalUsers int
		applicants []applicationRepo.ApplicantStats
		helpers    []bookingRepo.HelperEarnings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.users.GetRated(gctx)
		rated = users
		return upstream("findRatedUsers", err)
	})
	g.Go(func() error {
		n, err := s.users.CountAll(gctx)
		totalUsers = n
		return upstream("countUsers", err)
	})
	g.Go(func() error {
		rows, err := s.applications.AggregateByApplicant(gctx, period.StartDate, period.EndDate)
		applicants = rows
		return upstream("aggregateApplicationsByApplicant", err)
	})
	g.Go(func() error {
		rows, err := s.bookings.AggregateCompletedByHelper(gctx, period.StartDate, period.EndDate)
		helpers = rows
		return upstream("aggregateCompletedBookingsByHelper", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &PlatformSnapshot{
		Bundle: models.BenchmarkBundle{
			TimeRange:   timeRange,
			Period:      period,
			TotalUsers:  totalUsers,
			GeneratedAt: s.now(),
		},
		Distributions: make(map[string][]float64, len(ComparableMetrics)),
	}
	b := &snap.Bundle

	ratings := make([]float64, 0, len(rated))
	for _, u := range rated {
		if u.TotalRatings > 0 {
			ratings = append(ratings, u.Rating)
		}
	}
	b.RatedUsers = len(ratings)
	if mean, err := stats.Mean(ratings); err == nil {
		b.AvgRating = round2(mean)
	}
	snap.Distributions[MetricRating] = ratings

	successRates := make([]float64, 0, len(applicants))
	for _, a := range applicants {
		if a.Submitted == 0 {
			continue
		}
		b.TotalApplications += a.Submitted
		b.AcceptedApplications += a.Accepted
		successRates = append(successRates, rate(a.Accepted, a.Submitted))
	}
	b.ActiveApplicants = len(successRates)
	b.AvgSuccessRate = rate(b.AcceptedApplications, b.TotalApplications)
	snap.Distributions[MetricSuccessRate] = successRates

	var earned, values, completed []float64
	for _, h := range helpers {
		if h.Completed == 0 {
			continue
		}
		b.CompletedBookings += h.Completed
		b.TotalCreditsExchanged += h.Credits
		earned = append(earned, float64(h.Credits))
		values = append(values, averageCredits(h.Credits, h.Completed))
		completed = append(completed, float64(h.Completed))
	}
	b.ActiveHelpers = len(earned)
	b.AvgTaskValue = averageCredits(b.TotalCreditsExchanged, b.CompletedBookings)
	snap.Distributions[MetricCreditsEarned] = earned
	snap.Distributions[MetricAverageTaskValue] = values
	snap.Distributions[MetricTasksCompleted] = completed

	return snap, nil
}

// comparableValues extracts the user's value for every comparable metric. Ratings use the
// user's overall rating, matching the population they are ranked against.
func comparableValues(user *models.User, metrics models.Metrics, helperCompleted int) map[string]float64 {
	return map[string]float64{
		MetricRating:           user.Rating,
		MetricSuccessRate:      metrics.ApplicationSuccessRate,
		MetricCreditsEarned:    float64(metrics.CreditsEarned),
		MetricAverageTaskValue: metrics.AverageTaskValue,
		MetricTasksCompleted:   float64(helperCompleted),
	}
}

// buildComparative ranks the user's values against the platform populations.
func buildComparative(snap *PlatformSnapshot, values map[string]float64) models.Comparative {
	c := models.Comparative{
		Platform:    snap.Bundle,
		Percentiles: make(map[string]int, len(ComparableMetrics)),
		Differences: make(map[string]float64, len(ComparableMetrics)),
	}
	for _, m := range ComparableMetrics {
		c.Percentiles[m] = Percentile(values[m], snap.Distributions[m])
		c.Differences[m] = round2(values[m] - snap.average(m))
	}
	return c
}

func standing(diff float64) string {
	switch {
	case diff > 0:
		return "above"
	case diff < 0:
		return "below"
	}
	return "average"
}
