package analytics

import (
	"context"
	"fmt"
	"time"

	applicationRepo "timeslice/database/repository/application"
	bookingRepo "timeslice/database/repository/booking"
	chatRepo "timeslice/database/repository/chat"
	taskRepo "timeslice/database/repository/task"
	userRepo "timeslice/database/repository/user"
	"timeslice/models"
	"timeslice/services/cache"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	opAnalytics  = "analytics"
	opComparison = "comparison"
	opBenchmarks = "benchmarks"
)

// AnalyticsService exposes per-user analytics, platform benchmarks and cache control.
type AnalyticsService interface {
	GetUserAnalytics(ctx context.Context, userID, timeRange string, opts Options) (*models.AnalyticsBundle, error)
	GetPlatformBenchmarks(ctx context.Context, timeRange string) (*models.BenchmarkBundle, error)
	GenerateUserInsights(ctx context.Context, userID, timeRange string) ([]models.Insight, error)
	GetUserComparison(ctx context.Context, userID, timeRange, metric string) (*models.ComparisonBundle, error)
	RecalculateUserAnalytics(ctx context.Context, userID string) (*models.AnalyticsBundle, error)
	ClearUserCache(ctx context.Context, userID string) int
	ClearAllCache(ctx context.Context)
}

// Options tune a single GetUserAnalytics call.
type Options struct {
	Detailed     bool
	ForceRefresh bool
}

// Deps are the collaborators of the analytics service. Benchmarks, Snapshots and Now are optional.
type Deps struct {
	Cache        *cache.Cache
	Users        userRepo.UserRepository
	Tasks        taskRepo.TaskRepository
	Applications applicationRepo.ApplicationRepository
	Bookings     bookingRepo.BookingRepository
	Chats        chatRepo.ChatRepository
	Benchmarks   BenchmarkStore
	Snapshots    SnapshotWriter
	Now          func() time.Time
}

// Config holds the cache lifetimes of computed results.
type Config struct {
	AnalyticsTTL time.Duration
	BenchmarkTTL time.Duration
}

// Service computes analytics bundles from the marketplace records and memoizes them.
type Service struct {
	cache        *cache.Cache
	users        userRepo.UserRepository
	tasks        taskRepo.TaskRepository
	applications applicationRepo.ApplicationRepository
	bookings     bookingRepo.BookingRepository
	chats        chatRepo.ChatRepository
	benchmarks   BenchmarkStore
	snapshots    SnapshotWriter
	now          func() time.Time
	cfg          Config
	logger       *zap.Logger
}

var _ AnalyticsService = (*Service)(nil)

func NewService(deps Deps, cfg Config, logger *zap.Logger) *Service {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	c := deps.Cache
	if c == nil {
		c = cache.New(cache.DefaultCapacity, cache.WithClock(now))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cache:        c,
		users:        deps.Users,
		tasks:        deps.Tasks,
		applications: deps.Applications,
		bookings:     deps.Bookings,
		chats:        deps.Chats,
		benchmarks:   deps.Benchmarks,
		snapshots:    deps.Snapshots,
		now:          now,
		cfg:          cfg,
		logger:       logger,
	}
}

func normalizeRange(timeRange string) string {
	if timeRange == "" {
		return DefaultRange
	}
	return timeRange
}

// GetUserAnalytics returns the full analytics bundle of a user, served from cache unless
// opts.ForceRefresh is set.
func (s *Service) GetUserAnalytics(ctx context.Context, userID, timeRange string, opts Options) (*models.AnalyticsBundle, error) {
	timeRange = normalizeRange(timeRange)
	period, err := ResolvePeriod(timeRange, s.now())
	if err != nil {
		return nil, err
	}

	key := cache.Key{Op: opAnalytics, UserID: userID, TimeRange: timeRange, Options: fmt.Sprintf("detailed=%t", opts.Detailed)}
	if !opts.ForceRefresh {
		if v, ok := s.cache.Get(key); ok {
			if bundle, ok := v.(*models.AnalyticsBundle); ok {
				s.logger.Debug("analytics cache hit", zap.String("key", key.String()))
				return bundle, nil
			}
		}
	}

	started := time.Now()
	bundle, err := s.computeBundle(ctx, userID, timeRange, period, opts.Detailed)
	if err != nil {
		s.logger.Warn("analytics computation failed", zap.String("userId", userID), zap.String("timeRange", timeRange), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("analytics computed",
		zap.String("key", key.String()),
		zap.Bool("forceRefresh", opts.ForceRefresh),
		zap.Duration("took", time.Since(started)))

	s.cache.Set(key, bundle, s.cfg.AnalyticsTTL)
	s.writeSnapshot(ctx, bundle)
	return bundle, nil
}

func (s *Service) computeBundle(ctx context.Context, userID, timeRange string, period models.Period, detailed bool) (*models.AnalyticsBundle, error) {
	spec, err := BucketSpecFor(timeRange, period.EndDate)
	if err != nil {
		return nil, err
	}
	spanStart := spec.Start()
	if period.StartDate.Before(spanStart) {
		spanStart = period.StartDate
	}
	// Recent applications are counted over a full week even for shorter ranges.
	if recent := period.EndDate.Add(-recentWindow); recent.Before(spanStart) {
		spanStart = recent
	}
	prevPeriod := PreviousPeriod(period)

	var (
		user      *models.User
		cur, prev activity
		platform  *PlatformSnapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	s.fetchUser(gctx, g, userID, &user)
	s.fetchActivity(gctx, g, userID, spanStart, period.EndDate, &cur)
	s.fetchActivity(gctx, g, userID, prevPeriod.StartDate, prevPeriod.EndDate, &prev)
	g.Go(func() error {
		snap, err := s.platformSnapshot(gctx, timeRange, period)
		platform = snap
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	start, end := period.StartDate, period.EndDate
	taskIndex, err := s.taskIndex(ctx, cur.tasks, completedTaskIDs(cur.bookings, start, end))
	if err != nil {
		return nil, err
	}

	metrics := computeMetrics(userID, &cur, start, end)
	previous := computeMetrics(userID, &prev, prevPeriod.StartDate, prevPeriod.EndDate)
	timeline := buildTimeline(userID, &cur, spec)
	performance := buildPerformance(user, &cur, taskIndex, metrics, timeline, start, end)
	values := comparableValues(user, metrics, helperCompletedCount(userID, cur.bookings, start, end))

	return &models.AnalyticsBundle{
		UserID:      userID,
		TimeRange:   timeRange,
		Period:      period,
		Metrics:     metrics,
		Changes:     computeChanges(metrics, previous),
		Timeline:    timeline,
		Performance: performance,
		Comparative: buildComparative(platform, values),
		Insights: generateInsights(insightInput{
			Metrics:            metrics,
			Platform:           platform.Bundle,
			Rating:             user.Rating,
			TotalRatings:       user.TotalRatings,
			RecentApplications: recentApplications(userID, cur.applications, end),
			EarningsTrend:      performance.EarningsTrend,
		}),
		Earnings:    buildEarnings(userID, cur.bookings, taskIndex, start, end, detailed),
		GeneratedAt: s.now(),
	}, nil
}

// taskIndex maps task ids to tasks, loading the ones not already fetched.
func (s *Service) taskIndex(ctx context.Context, known []models.Task, ids []string) (map[string]models.Task, error) {
	index := make(map[string]models.Task, len(known)+len(ids))
	for _, t := range known {
		index[t.ID] = t
	}
	var missing []string
	for _, id := range ids {
		if _, ok := index[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return index, nil
	}
	tasks, err := s.tasks.FindByIDs(ctx, missing)
	if err != nil {
		return nil, upstream("findTasksByIDs", err)
	}
	for _, t := range tasks {
		index[t.ID] = t
	}
	return index, nil
}

// platformSnapshot resolves benchmarks from the local cache, then the shared store, then the database.
func (s *Service) platformSnapshot(ctx context.Context, timeRange string, period models.Period) (*PlatformSnapshot, error) {
	key := cache.Key{Op: opBenchmarks, TimeRange: timeRange}
	if v, ok := s.cache.Get(key); ok {
		if snap, ok := v.(*PlatformSnapshot); ok {
			return snap, nil
		}
	}

	if s.benchmarks != nil {
		snap, err := s.benchmarks.Get(ctx, timeRange)
		switch {
		case err != nil:
			s.logger.Warn("benchmark store read failed", zap.String("timeRange", timeRange), zap.Error(err))
		case snap != nil:
			s.cache.Set(key, snap, s.cfg.BenchmarkTTL)
			return snap, nil
		}
	}

	snap, err := s.computeBenchmarks(ctx, timeRange, period)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, snap, s.cfg.BenchmarkTTL)
	if s.benchmarks != nil {
		if err := s.benchmarks.Set(ctx, timeRange, snap); err != nil {
			s.logger.Warn("benchmark store write failed", zap.String("timeRange", timeRange), zap.Error(err))
		}
	}
	return snap, nil
}

// GetPlatformBenchmarks returns the platform-wide averages for a time range.
func (s *Service) GetPlatformBenchmarks(ctx context.Context, timeRange string) (*models.BenchmarkBundle, error) {
	timeRange = normalizeRange(timeRange)
	period, err := ResolvePeriod(timeRange, s.now())
	if err != nil {
		return nil, err
	}
	snap, err := s.platformSnapshot(ctx, timeRange, period)
	if err != nil {
		return nil, err
	}
	bundle := snap.Bundle
	return &bundle, nil
}

// GenerateUserInsights returns the insights of the user's analytics bundle.
func (s *Service) GenerateUserInsights(ctx context.Context, userID, timeRange string) ([]models.Insight, error) {
	bundle, err := s.GetUserAnalytics(ctx, userID, timeRange, Options{})
	if err != nil {
		return nil, err
	}
	return bundle.Insights, nil
}

// GetUserComparison ranks one metric of the user against the platform population.
func (s *Service) GetUserComparison(ctx context.Context, userID, timeRange, metric string) (*models.ComparisonBundle, error) {
	if !isComparable(metric) {
		return nil, &InvalidRangeError{Reason: fmt.Sprintf("unsupported comparison metric %q", metric)}
	}
	timeRange = normalizeRange(timeRange)
	period, err := ResolvePeriod(timeRange, s.now())
	if err != nil {
		return nil, err
	}

	key := cache.Key{Op: opComparison, UserID: userID, TimeRange: timeRange, Options: "metric=" + metric}
	if v, ok := s.cache.Get(key); ok {
		if bundle, ok := v.(*models.ComparisonBundle); ok {
			return bundle, nil
		}
	}

	var (
		user     *models.User
		cur      activity
		platform *PlatformSnapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	s.fetchUser(gctx, g, userID, &user)
	s.fetchActivity(gctx, g, userID, period.StartDate, period.EndDate, &cur)
	g.Go(func() error {
		snap, err := s.platformSnapshot(gctx, timeRange, period)
		platform = snap
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics := computeMetrics(userID, &cur, period.StartDate, period.EndDate)
	values := comparableValues(user, metrics, helperCompletedCount(userID, cur.bookings, period.StartDate, period.EndDate))
	value := values[metric]
	avg := platform.average(metric)
	population := platform.Distributions[metric]
	diff := round2(value - avg)

	bundle := &models.ComparisonBundle{
		UserID:            userID,
		TimeRange:         timeRange,
		Metric:            metric,
		UserValue:         value,
		PlatformAverage:   avg,
		Difference:        diff,
		DifferencePercent: CalculateChange(value, avg),
		Percentile:        Percentile(value, population),
		PopulationSize:    len(population),
		Standing:          standing(diff),
		GeneratedAt:       s.now(),
	}
	s.cache.Set(key, bundle, s.cfg.AnalyticsTTL)
	return bundle, nil
}

// RecalculateUserAnalytics drops the user's cached results and recomputes the default range.
func (s *Service) RecalculateUserAnalytics(ctx context.Context, userID string) (*models.AnalyticsBundle, error) {
	s.cache.InvalidateUser(userID)
	return s.GetUserAnalytics(ctx, userID, DefaultRange, Options{ForceRefresh: true})
}

// ClearUserCache removes every cached result of the user and flags their persisted snapshots.
// It returns the number of cache entries removed.
func (s *Service) ClearUserCache(ctx context.Context, userID string) int {
	n := s.cache.InvalidateUser(userID)
	if s.snapshots != nil {
		if err := s.snapshots.InvalidateUser(ctx, userID); err != nil {
			s.logger.Warn("snapshot invalidation enqueue failed", zap.String("userId", userID), zap.Error(err))
		}
	}
	s.logger.Info("user analytics cache cleared", zap.String("userId", userID), zap.Int("entries", n))
	return n
}

// ClearAllCache empties the local cache and the shared benchmark store.
func (s *Service) ClearAllCache(ctx context.Context) {
	s.cache.Clear()
	if s.benchmarks != nil {
		if err := s.benchmarks.Clear(ctx); err != nil {
			s.logger.Warn("benchmark store clear failed", zap.Error(err))
		}
	}
	s.logger.Info("analytics cache cleared")
}

func (s *Service) writeSnapshot(ctx context.Context, bundle *models.AnalyticsBundle) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.WriteSnapshot(ctx, bundle); err != nil {
		s.logger.Warn("snapshot enqueue failed",
			zap.String("userId", bundle.UserID),
			zap.String("timeRange", bundle.TimeRange),
			zap.Error(err))
	}
}
