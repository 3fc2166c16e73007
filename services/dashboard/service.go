package dashboard

import (
	"context"
	"time"

	applicationRepo "timeslice/database/repository/application"
	bookingRepo "timeslice/database/repository/booking"
	chatRepo "timeslice/database/repository/chat"
	notificationRepo "timeslice/database/repository/notification"
	taskRepo "timeslice/database/repository/task"
	userRepo "timeslice/database/repository/user"
	"timeslice/models"
	"timeslice/services/analytics"
	"timeslice/services/cache"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const opDashboard = "dashboard"

// DashboardService serves the at-a-glance counters shown on a user's home screen.
type DashboardService interface {
	GetOverview(ctx context.Context, userID string) (*models.DashboardOverview, error)
}

// Deps are the collaborators of the dashboard service. Now is optional.
type Deps struct {
	Cache         *cache.Cache
	Users         userRepo.UserRepository
	Tasks         taskRepo.TaskRepository
	Applications  applicationRepo.ApplicationRepository
	Bookings      bookingRepo.BookingRepository
	Chats         chatRepo.ChatRepository
	Notifications notificationRepo.NotificationRepository
	Now           func() time.Time
}

// Service implements DashboardService on top of the shared result cache.
type Service struct {
	deps   Deps
	ttl    time.Duration
	logger *zap.Logger
}

var _ DashboardService = (*Service)(nil)

func NewService(deps Deps, ttl time.Duration, logger *zap.Logger) *Service {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.Cache == nil {
		deps.Cache = cache.New(cache.DefaultCapacity, cache.WithClock(deps.Now))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{deps: deps, ttl: ttl, logger: logger}
}

// GetOverview returns the user's live counters. Results are cached under the user's id so
// clearing the user's analytics cache also refreshes the dashboard.
func (s *Service) GetOverview(ctx context.Context, userID string) (*models.DashboardOverview, error) {
	key := cache.Key{Op: opDashboard, UserID: userID}
	if v, ok := s.deps.Cache.Get(key); ok {
		if overview, ok := v.(*models.DashboardOverview); ok {
			return overview, nil
		}
	}

	var (
		user     *models.User
		bookings []models.Booking
		overview = &models.DashboardOverview{UserID: userID}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.deps.Users.GetByID(gctx, userID)
		if err != nil {
			return &analytics.UpstreamFetchError{Op: "findUser", Err: err}
		}
		if u == nil {
			return &analytics.NotFoundError{Resource: "user", ID: userID}
		}
		user = u
		return nil
	})
	g.Go(func() error {
		n, err := s.deps.Tasks.CountActiveByProvider(gctx, userID)
		overview.ActiveTasks = n
		return wrap("countActiveTasks", err)
	})
	g.Go(func() error {
		n, err := s.deps.Applications.CountPendingReceived(gctx, userID)
		overview.PendingApplications = n
		return wrap("countPendingApplications", err)
	})
	g.Go(func() error {
		b, err := s.deps.Bookings.FindActiveByUser(gctx, userID)
		bookings = b
		return wrap("findActiveBookings", err)
	})
	g.Go(func() error {
		n, err := s.deps.Chats.CountUnreadMessages(gctx, userID)
		overview.UnreadMessages = n
		return wrap("countUnreadMessages", err)
	})
	g.Go(func() error {
		n, err := s.deps.Notifications.CountUnread(gctx, userID)
		overview.UnreadNotifications = n
		return wrap("countUnreadNotifications", err)
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("dashboard overview failed", zap.String("userId", userID), zap.Error(err))
		return nil, err
	}

	overview.Credits = user.Credits
	overview.Rating = user.Rating
	overview.TotalRatings = user.TotalRatings
	overview.ActiveBookings = len(bookings)
	for _, b := range bookings {
		if b.Status == models.BookingWorkSubmitted && b.TaskProvider == userID {
			overview.AwaitingReview++
		}
	}
	overview.GeneratedAt = s.deps.Now()

	s.deps.Cache.Set(key, overview, s.ttl)
	return overview, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &analytics.UpstreamFetchError{Op: op, Err: err}
}
