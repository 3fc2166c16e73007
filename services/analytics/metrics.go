package analytics

import (
	"context"
	"sort"
	"time"

	"timeslice/models"

	"golang.org/x/sync/errgroup"
)

// activity holds every record a user touched inside a fetched window.
type activity struct {
	tasks        []models.Task
	applications []models.Application
	bookings     []models.Booking
	chats        []models.Chat
}

// MetricsResult is the output of ComputeMetrics.
type MetricsResult struct {
	Period   models.Period  `json:"period"`
	Current  models.Metrics `json:"current"`
	Previous models.Metrics `json:"previous"`
	Changes  map[string]int `json:"changes"`
}

// fetchActivity schedules the per-entity range queries on g. Any failure cancels the group.
func (s *Service) fetchActivity(ctx context.Context, g *errgroup.Group, userID string, start, end time.Time, into *activity) {
	g.Go(func() error {
		tasks, err := s.tasks.FindByUserAndRange(ctx, userID, start, end)
		into.tasks = tasks
		return upstream("findTasksByUserAndRange", err)
	})
	g.Go(func() error {
		apps, err := s.applications.FindByUserAndRange(ctx, userID, start, end)
		into.applications = apps
		return upstream("findApplicationsByUserAndRange", err)
	})
	g.Go(func() error {
		bookings, err := s.bookings.FindByUserAndRange(ctx, userID, start, end)
		into.bookings = bookings
		return upstream("findBookingsByUserAndRange", err)
	})
	g.Go(func() error {
		chats, err := s.chats.FindByParticipantAndRange(ctx, userID, start, end)
		into.chats = chats
		return upstream("findChatsByParticipantAndRange", err)
	})
}

// fetchUser schedules the user lookup on g, failing with NotFoundError for unknown ids.
func (s *Service) fetchUser(ctx context.Context, g *errgroup.Group, userID string, into **models.User) {
	g.Go(func() error {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return upstream("findUser", err)
		}
		if user == nil {
			return &NotFoundError{Resource: "user", ID: userID}
		}
		*into = user
		return nil
	})
}

// ComputeMetrics computes the user's metrics over [start, end) together with the
// preceding period of equal length and the percentage change of every metric.
// The range is half-open: a record created exactly at end belongs to the next period.
func (s *Service) ComputeMetrics(ctx context.Context, userID string, start, end time.Time) (*MetricsResult, error) {
	if err := validatePeriod(start, end); err != nil {
		return nil, err
	}
	period := models.Period{StartDate: start, EndDate: end}
	prevPeriod := PreviousPeriod(period)

	var (
		user      *models.User
		cur, prev activity
	)
	g, gctx := errgroup.WithContext(ctx)
	s.fetchUser(gctx, g, userID, &user)
	s.fetchActivity(gctx, g, userID, start, end, &cur)
	s.fetchActivity(gctx, g, userID, prevPeriod.StartDate, prevPeriod.EndDate, &prev)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	current := computeMetrics(userID, &cur, start, end)
	previous := computeMetrics(userID, &prev, prevPeriod.StartDate, prevPeriod.EndDate)
	return &MetricsResult{
		Period:   period,
		Current:  current,
		Previous: previous,
		Changes:  computeChanges(current, previous),
	}, nil
}

// computeMetrics partitions the activity by role and status and reduces it over [start, end).
func computeMetrics(userID string, a *activity, start, end time.Time) models.Metrics {
	var m models.Metrics

	for _, t := range a.tasks {
		if !inRange(t.CreatedAt, start, end) {
			continue
		}
		if t.TaskProviderID == userID {
			m.TasksCreated++
		}
		if t.SelectedHelper == userID {
			m.TasksAssigned++
			if t.Status == models.TaskStatusCompleted {
				m.TasksCompleted++
			}
		}
	}

	for _, app := range a.applications {
		if !inRange(app.CreatedAt, start, end) {
			continue
		}
		if app.ApplicantID == userID {
			m.ApplicationsSubmitted++
			if app.Status == models.ApplicationAccepted {
				m.ApplicationsAccepted++
			}
		}
		if app.TaskProviderID == userID {
			m.ApplicationsReceived++
		}
	}

	helperCompleted := 0
	ratingSum := 0
	for _, b := range a.bookings {
		if !inRange(b.CreatedAt, start, end) {
			continue
		}
		if b.IsActive() {
			m.ActiveBookings++
		}
		if b.Status != models.BookingCompleted {
			continue
		}
		m.BookingsCompleted++
		if b.Helper == userID {
			helperCompleted++
			m.CreditsEarned += b.AgreedCredits
		}
		if b.TaskProvider == userID {
			m.CreditsSpent += b.AgreedCredits
		}
		if r := b.ReviewReceivedBy(userID); r != nil {
			m.ReviewsReceived++
			ratingSum += r.Rating
		}
	}

	m.NetCredits = m.CreditsEarned - m.CreditsSpent
	m.ApplicationSuccessRate = rate(m.ApplicationsAccepted, m.ApplicationsSubmitted)
	m.TaskCompletionRate = rate(m.TasksCompleted, m.TasksAssigned)
	m.AverageTaskValue = averageCredits(m.CreditsEarned, helperCompleted)
	if m.ReviewsReceived > 0 {
		m.AverageRating = round2(float64(ratingSum) / float64(m.ReviewsReceived))
	}

	var delays []time.Duration
	for _, c := range a.chats {
		for _, msg := range c.Messages {
			if msg.SenderID == userID && inRange(msg.SentAt, start, end) {
				m.MessagesSent++
			}
		}
		delays = append(delays, replyDelays(userID, c.Messages, start, end)...)
	}
	if len(delays) > 0 {
		var total time.Duration
		for _, d := range delays {
			total += d
		}
		m.AverageResponseMinutes = round2(total.Minutes() / float64(len(delays)))
	}
	return m
}

// replyDelays measures, for every reply of userID sent in [start, end), the time since the
// earliest unanswered message from another participant.
func replyDelays(userID string, messages []models.Message, start, end time.Time) []time.Duration {
	sorted := make([]models.Message, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SentAt.Before(sorted[j].SentAt) })

	var (
		delays  []time.Duration
		pending *time.Time
	)
	for i := range sorted {
		msg := sorted[i]
		if msg.SenderID != userID {
			if pending == nil {
				pending = &sorted[i].SentAt
			}
			continue
		}
		if pending != nil && inRange(msg.SentAt, start, end) {
			delays = append(delays, msg.SentAt.Sub(*pending))
		}
		pending = nil
	}
	return delays
}

// helperCompletedCount counts completed bookings in [start, end) where the user was the helper.
func helperCompletedCount(userID string, bookings []models.Booking, start, end time.Time) int {
	n := 0
	for _, b := range bookings {
		if b.Helper == userID && b.Status == models.BookingCompleted && inRange(b.CreatedAt, start, end) {
			n++
		}
	}
	return n
}

func computeChanges(current, previous models.Metrics) map[string]int {
	cur := current.Values()
	prev := previous.Values()
	changes := make(map[string]int, len(cur))
	for name, v := range cur {
		changes[name+"Change"] = CalculateChange(v, prev[name])
	}
	return changes
}
