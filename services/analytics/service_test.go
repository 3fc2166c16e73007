package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"timeslice/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedApplicant(data *memoryData, userID string, submitted, accepted int) {
	data.addUser(models.User{ID: userID, Name: userID, Role: models.RoleUser})
	for i := 0; i < submitted; i++ {
		status := models.ApplicationRejected
		if i < accepted {
			status = models.ApplicationAccepted
		}
		data.addApplications(application(userID+"-app-"+string(rune('a'+i)), userID, "provider", status, daysAgo(float64(i)+1)))
	}
}

func TestComputeMetrics_SubmittedAcceptedWithoutBookings(t *testing.T) {
	data := newMemoryData()
	seedApplicant(data, "u1", 10, 4)
	svc := newTestService(data)

	res, err := svc.ComputeMetrics(context.Background(), "u1", daysAgo(30), testNow)
	require.NoError(t, err)

	assert.Equal(t, 10, res.Current.ApplicationsSubmitted)
	assert.Equal(t, 4, res.Current.ApplicationsAccepted)
	assert.Equal(t, 40.0, res.Current.ApplicationSuccessRate)
	assert.Zero(t, res.Current.AverageTaskValue)
	assert.Zero(t, res.Current.CreditsEarned)
	assert.Equal(t, 100, res.Changes["applicationsSubmittedChange"])
	assert.Equal(t, 0, res.Changes["creditsEarnedChange"])
}

func TestComputeMetrics_HalfOpenRange(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "u1"})
	data.addApplications(
		application("a1", "u1", "p1", models.ApplicationPending, daysAgo(1)),
		application("a2", "u1", "p1", models.ApplicationPending, testNow),
	)
	svc := newTestService(data)

	res, err := svc.ComputeMetrics(context.Background(), "u1", daysAgo(1), testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Current.ApplicationsSubmitted, "start is inclusive, end is exclusive")

	res, err = svc.ComputeMetrics(context.Background(), "u1", testNow, testNow.Add(day))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Current.ApplicationsSubmitted)
	assert.Equal(t, 1, res.Previous.ApplicationsSubmitted)
}

func TestComputeMetrics_RolesCreditsAndReviews(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "u1"})

	earned := completedBooking("b1", "u1", "p1", 100, daysAgo(3))
	earned.HelperReview = &models.Review{Rating: 5}
	spent := completedBooking("b3", "p2", "u1", 30, daysAgo(2))
	spent.TaskProviderReview = &models.Review{Rating: 3}
	cancelled := completedBooking("b4", "u1", "p1", 999, daysAgo(2))
	cancelled.Status = models.BookingCancelled
	active := models.Booking{ID: "b5", Helper: "u1", TaskProvider: "p3", Status: models.BookingInProgress, CreatedAt: daysAgo(1)}
	data.addBookings(
		earned,
		completedBooking("b2", "u1", "p1", 50, daysAgo(1)),
		spent,
		cancelled,
		active,
		completedBooking("old", "u1", "p1", 50, daysAgo(40)),
	)
	data.addTasks(
		models.Task{ID: "t1", TaskProviderID: "u1", Status: models.TaskStatusOpen, CreatedAt: daysAgo(5)},
		models.Task{ID: "t2", TaskProviderID: "u1", Status: models.TaskStatusOpen, CreatedAt: daysAgo(4)},
		models.Task{ID: "t3", TaskProviderID: "p1", SelectedHelper: "u1", Status: models.TaskStatusCompleted, CreatedAt: daysAgo(4)},
		models.Task{ID: "t4", TaskProviderID: "p1", SelectedHelper: "u1", Status: models.TaskStatusCompleted, CreatedAt: daysAgo(4)},
		models.Task{ID: "t5", TaskProviderID: "p1", SelectedHelper: "u1", Status: models.TaskStatusCompleted, CreatedAt: daysAgo(4)},
		models.Task{ID: "t6", TaskProviderID: "p1", SelectedHelper: "u1", Status: models.TaskStatusInProgress, CreatedAt: daysAgo(4)},
	)
	svc := newTestService(data)

	res, err := svc.ComputeMetrics(context.Background(), "u1", daysAgo(30), testNow)
	require.NoError(t, err)
	m := res.Current

	assert.Equal(t, 150, m.CreditsEarned)
	assert.Equal(t, 30, m.CreditsSpent)
	assert.Equal(t, m.CreditsEarned-m.CreditsSpent, m.NetCredits)
	assert.Equal(t, 75.0, m.AverageTaskValue)
	assert.Equal(t, 3, m.BookingsCompleted)
	assert.Equal(t, 1, m.ActiveBookings)
	assert.Equal(t, 2, m.ReviewsReceived)
	assert.Equal(t, 4.0, m.AverageRating)

	assert.Equal(t, 2, m.TasksCreated)
	assert.Equal(t, 4, m.TasksAssigned)
	assert.Equal(t, 3, m.TasksCompleted)
	assert.Equal(t, 75.0, m.TaskCompletionRate)

	assert.Equal(t, 50, res.Previous.CreditsEarned)
	assert.Equal(t, 200, res.Changes["creditsEarnedChange"])
}

func TestComputeMetrics_ResponseTime(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "u1"})
	base := daysAgo(1)
	data.addChats(models.Chat{
		ID:           "c1",
		Participants: []string{"u1", "u2"},
		Messages: []models.Message{
			{SenderID: "u1", SentAt: base.Add(40 * time.Minute)},
			{SenderID: "u2", SentAt: base},
			{SenderID: "u2", SentAt: base.Add(10 * time.Minute)},
			{SenderID: "u1", SentAt: base.Add(30 * time.Minute)},
			{SenderID: "u2", SentAt: base.Add(60 * time.Minute)},
			{SenderID: "u1", SentAt: base.Add(120 * time.Minute)},
		},
	})
	svc := newTestService(data)

	res, err := svc.ComputeMetrics(context.Background(), "u1", daysAgo(7), testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Current.MessagesSent)
	assert.Equal(t, 45.0, res.Current.AverageResponseMinutes)
}

func TestComputeMetrics_Errors(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "u1"})
	svc := newTestService(data)
	ctx := context.Background()

	_, err := svc.ComputeMetrics(ctx, "u1", testNow, daysAgo(1))
	var rangeErr *InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)

	_, err = svc.ComputeMetrics(ctx, "ghost", daysAgo(7), testNow)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.ID)

	data.failOps["findBookingsByUserAndRange"] = true
	_, err = svc.ComputeMetrics(ctx, "u1", daysAgo(7), testNow)
	var upstreamErr *UpstreamFetchError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "findBookingsByUserAndRange", upstreamErr.Op)
	assert.True(t, errors.Is(err, errStoreDown))
}

func TestGetUserAnalytics_SuccessRateBounds(t *testing.T) {
	data := newMemoryData()
	seedApplicant(data, "u1", 5, 5)
	data.addUser(models.User{ID: "idle"})
	svc := newTestService(data)

	for _, token := range []string{Range1Day, Range7Days, Range30Days, Range90Days, Range1Year} {
		for _, user := range []string{"u1", "idle"} {
			bundle, err := svc.GetUserAnalytics(context.Background(), user, token, Options{})
			require.NoError(t, err)
			rate := bundle.Metrics.ApplicationSuccessRate
			assert.GreaterOrEqual(t, rate, 0.0)
			assert.LessOrEqual(t, rate, 100.0)
			if bundle.Metrics.ApplicationsSubmitted == 0 {
				assert.Zero(t, rate)
			}
			assert.Equal(t, bundle.Metrics.CreditsEarned-bundle.Metrics.CreditsSpent, bundle.Metrics.NetCredits)
		}
	}
}

func TestGetUserAnalytics_CachedReadIsIdempotent(t *testing.T) {
	data := newMemoryData()
	seedApplicant(data, "u1", 3, 1)
	data.addBookings(completedBooking("b1", "u1", "p1", 40, daysAgo(2)))
	svc := newTestService(data)
	ctx := context.Background()

	first, err := svc.GetUserAnalytics(ctx, "u1", Range30Days, Options{Detailed: true})
	require.NoError(t, err)
	calls := data.Calls()
	require.Positive(t, calls)

	second, err := svc.GetUserAnalytics(ctx, "u1", Range30Days, Options{Detailed: true})
	require.NoError(t, err)
	assert.Equal(t, calls, data.Calls(), "warm read must not query the store")

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRecalculateUserAnalytics_BypassesCache(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "u1"})
	svc := newTestService(data)
	ctx := context.Background()

	before, err := svc.GetUserAnalytics(ctx, "u1", Range30Days, Options{})
	require.NoError(t, err)
	assert.Zero(t, before.Metrics.CreditsEarned)

	data.addBookings(completedBooking("b1", "u1", "p1", 60, daysAgo(1)))

	stale, err := svc.GetUserAnalytics(ctx, "u1", Range30Days, Options{})
	require.NoError(t, err)
	assert.Zero(t, stale.Metrics.CreditsEarned)

	fresh, err := svc.RecalculateUserAnalytics(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, Range30Days, fresh.TimeRange)
	assert.Equal(t, 60, fresh.Metrics.CreditsEarned)

	cached, err := svc.GetUserAnalytics(ctx, "u1", Range30Days, Options{})
	require.NoError(t, err)
	assert.Equal(t, 60, cached.Metrics.CreditsEarned, "recalculation re-caches the fresh result")
}

func TestGetUserAnalytics_ForceRefresh(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "u1"})
	svc := newTestService(data)
	ctx := context.Background()

	_, err := svc.GetUserAnalytics(ctx, "u1", Range7Days, Options{})
	require.NoError(t, err)
	calls := data.Calls()

	_, err = svc.GetUserAnalytics(ctx, "u1", Range7Days, Options{ForceRefresh: true})
	require.NoError(t, err)
	assert.Greater(t, data.Calls(), calls)
}

func TestClearUserCache_OnlyAffectsThatUser(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "u1"})
	data.addUser(models.User{ID: "u2"})
	writer := &recordingWriter{}
	svc := newTestService(data, withSnapshotWriter(writer))
	ctx := context.Background()

	for _, id := range []string{"u1", "u2"} {
		_, err := svc.GetUserAnalytics(ctx, id, Range7Days, Options{})
		require.NoError(t, err)
	}

	removed := svc.ClearUserCache(ctx, "u1")
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"u1"}, writer.invalidated)

	calls := data.Calls()
	_, err := svc.GetUserAnalytics(ctx, "u2", Range7Days, Options{})
	require.NoError(t, err)
	assert.Equal(t, calls, data.Calls(), "other users stay cached")

	_, err = svc.GetUserAnalytics(ctx, "u1", Range7Days, Options{})
	require.NoError(t, err)
	assert.Greater(t, data.Calls(), calls, "cleared user is recomputed")
}

func TestClearAllCache(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "u1"})
	store := &memoryBenchmarkStore{}
	svc := newTestService(data, withBenchmarkStore(store))
	ctx := context.Background()

	_, err := svc.GetUserAnalytics(ctx, "u1", Range7Days, Options{})
	require.NoError(t, err)
	require.NotEmpty(t, store.snaps)

	svc.ClearAllCache(ctx)
	assert.Zero(t, svc.cache.Len())
	assert.Empty(t, store.snaps)
}

func TestGetUserAnalytics_TimelineSevenDays(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "u1"})
	data.addApplications(application("a1", "u1", "p1", models.ApplicationAccepted, daysAgo(1.5)))
	svc := newTestService(data)

	bundle, err := svc.GetUserAnalytics(context.Background(), "u1", Range7Days, Options{})
	require.NoError(t, err)
	require.Len(t, bundle.Timeline, 7)

	for i, p := range bundle.Timeline {
		if i == 5 {
			assert.Equal(t, 1, p.Applications)
			assert.Equal(t, 100.0, p.SuccessRate)
			continue
		}
		assert.Zero(t, p.Applications, "bucket %d", i)
		assert.Zero(t, p.SuccessRate, "bucket %d", i)
		assert.Zero(t, p.Earnings, "bucket %d", i)
	}
	assert.Equal(t, bundle.Period.StartDate, bundle.Timeline[0].Start)
	assert.Equal(t, bundle.Period.EndDate, bundle.Timeline[6].End)
}

func TestGetUserAnalytics_EmptyUserTimelineIsZeroFilled(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "idle"})
	svc := newTestService(data)

	bundle, err := svc.GetUserAnalytics(context.Background(), "idle", Range7Days, Options{})
	require.NoError(t, err)
	require.Len(t, bundle.Timeline, 7)
	for _, p := range bundle.Timeline {
		assert.Zero(t, p.SuccessRate)
		assert.Zero(t, p.Earnings)
		assert.False(t, p.Outlier)
	}
	assert.Equal(t, models.TrendStable, bundle.Performance.EarningsTrend.Direction)
}

func TestGetUserAnalytics_Errors(t *testing.T) {
	data := newMemoryData()
	svc := newTestService(data)
	ctx := context.Background()

	_, err := svc.GetUserAnalytics(ctx, "ghost", "6w", Options{})
	var rangeErr *InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Zero(t, data.Calls(), "range is validated before fetching")

	_, err = svc.GetUserAnalytics(ctx, "ghost", Range7Days, Options{})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "user", notFound.Resource)
}

func TestGetUserAnalytics_DetailedEarnings(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "u1"})
	data.addTasks(models.Task{ID: "task-b1", Title: "Logo", Category: "design", TaskProviderID: "p1", CreatedAt: daysAgo(60)})
	data.addBookings(
		completedBooking("b1", "u1", "p1", 100, daysAgo(3)),
		completedBooking("b2", "p1", "u1", 20, daysAgo(2)),
	)
	svc := newTestService(data)
	ctx := context.Background()

	detailed, err := svc.GetUserAnalytics(ctx, "u1", Range30Days, Options{Detailed: true})
	require.NoError(t, err)
	assert.Equal(t, 100, detailed.Earnings.Total)
	assert.Equal(t, map[string]int{"design": 100}, detailed.Earnings.ByCategory)
	require.Len(t, detailed.Earnings.Transactions, 2)
	assert.Equal(t, "spend", detailed.Earnings.Transactions[0].Type)
	assert.Equal(t, "Logo", detailed.Earnings.Transactions[1].TaskTitle)

	plain, err := svc.GetUserAnalytics(ctx, "u1", Range30Days, Options{})
	require.NoError(t, err)
	assert.Empty(t, plain.Earnings.Transactions)
}

func TestGetUserAnalytics_WritesSnapshotOnCompute(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "u1"})
	writer := &recordingWriter{}
	svc := newTestService(data, withSnapshotWriter(writer))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.GetUserAnalytics(ctx, "u1", Range30Days, Options{})
		require.NoError(t, err)
	}
	require.Len(t, writer.written, 1)
	assert.Equal(t, "u1", writer.written[0].UserID)
}

func TestGetPlatformBenchmarks(t *testing.T) {
	data := newMemoryData()
	seedApplicant(data, "u1", 10, 4)
	seedApplicant(data, "u2", 2, 2)
	data.addUser(models.User{ID: "r1", Rating: 4, TotalRatings: 2})
	data.addUser(models.User{ID: "r2", Rating: 5, TotalRatings: 1})
	data.addBookings(
		completedBooking("b1", "u1", "p1", 100, daysAgo(2)),
		completedBooking("b2", "u1", "p1", 50, daysAgo(3)),
		completedBooking("b3", "u2", "p1", 30, daysAgo(4)),
	)
	svc := newTestService(data)

	b, err := svc.GetPlatformBenchmarks(context.Background(), Range30Days)
	require.NoError(t, err)
	assert.Equal(t, 4, b.TotalUsers)
	assert.Equal(t, 2, b.RatedUsers)
	assert.Equal(t, 4.5, b.AvgRating)
	assert.Equal(t, 12, b.TotalApplications)
	assert.Equal(t, 6, b.AcceptedApplications)
	assert.Equal(t, 50.0, b.AvgSuccessRate)
	assert.Equal(t, 2, b.ActiveApplicants)
	assert.Equal(t, 2, b.ActiveHelpers)
	assert.Equal(t, 3, b.CompletedBookings)
	assert.Equal(t, 180, b.TotalCreditsExchanged)
	assert.Equal(t, 60.0, b.AvgTaskValue)

	calls := data.Calls()
	_, err = svc.GetPlatformBenchmarks(context.Background(), Range30Days)
	require.NoError(t, err)
	assert.Equal(t, calls, data.Calls())
}

func TestGetPlatformBenchmarks_SharedStore(t *testing.T) {
	data := newMemoryData()
	store := &memoryBenchmarkStore{snaps: map[string]*PlatformSnapshot{
		Range7Days: {Bundle: models.BenchmarkBundle{TimeRange: Range7Days, AvgRating: 3.3}},
	}}
	svc := newTestService(data, withBenchmarkStore(store))

	b, err := svc.GetPlatformBenchmarks(context.Background(), Range7Days)
	require.NoError(t, err)
	assert.Equal(t, 3.3, b.AvgRating)
	assert.Zero(t, data.Calls())

	store.failGet = true
	_, err = svc.GetPlatformBenchmarks(context.Background(), Range30Days)
	require.NoError(t, err, "store failures count as a miss")
	assert.Positive(t, data.Calls())
	assert.Equal(t, 1, store.sets)
}

func TestGetUserComparison(t *testing.T) {
	data := newMemoryData()
	seedApplicant(data, "u1", 10, 4)
	seedApplicant(data, "u2", 2, 2)
	svc := newTestService(data)
	ctx := context.Background()

	cmp, err := svc.GetUserComparison(ctx, "u1", Range30Days, MetricSuccessRate)
	require.NoError(t, err)
	assert.Equal(t, 40.0, cmp.UserValue)
	assert.Equal(t, 50.0, cmp.PlatformAverage)
	assert.Equal(t, -10.0, cmp.Difference)
	assert.Equal(t, -20, cmp.DifferencePercent)
	assert.Equal(t, 0, cmp.Percentile)
	assert.Equal(t, 2, cmp.PopulationSize)
	assert.Equal(t, "below", cmp.Standing)

	top, err := svc.GetUserComparison(ctx, "u2", Range30Days, MetricSuccessRate)
	require.NoError(t, err)
	assert.Equal(t, 50, top.Percentile)
	assert.Equal(t, "above", top.Standing)
}

func TestGetUserComparison_Rating(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "u1", Rating: 4.8, TotalRatings: 3})
	data.addUser(models.User{ID: "r1", Rating: 4, TotalRatings: 2})
	data.addUser(models.User{ID: "r2", Rating: 5, TotalRatings: 1})
	svc := newTestService(data)

	cmp, err := svc.GetUserComparison(context.Background(), "u1", Range30Days, MetricRating)
	require.NoError(t, err)
	assert.Equal(t, 4.6, cmp.PlatformAverage)
	assert.Equal(t, 0.2, cmp.Difference)
	assert.Equal(t, 4, cmp.DifferencePercent)
	assert.Equal(t, 33, cmp.Percentile)
	assert.Equal(t, "above", cmp.Standing)
}

func TestGetUserComparison_EmptyPopulation(t *testing.T) {
	data := newMemoryData()
	data.addUser(models.User{ID: "u1"})
	svc := newTestService(data)

	cmp, err := svc.GetUserComparison(context.Background(), "u1", Range7Days, MetricCreditsEarned)
	require.NoError(t, err)
	assert.Equal(t, 50, cmp.Percentile)
	assert.Zero(t, cmp.PopulationSize)
	assert.Equal(t, "average", cmp.Standing)
}

func TestGetUserComparison_UnknownMetric(t *testing.T) {
	svc := newTestService(newMemoryData())
	_, err := svc.GetUserComparison(context.Background(), "u1", Range7Days, "karma")
	var rangeErr *InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Contains(t, rangeErr.Reason, "karma")
}

func TestGenerateUserInsights_UsesCachedBundle(t *testing.T) {
	data := newMemoryData()
	seedApplicant(data, "u1", 10, 4)
	seedApplicant(data, "u2", 2, 2)
	svc := newTestService(data)
	ctx := context.Background()

	bundle, err := svc.GetUserAnalytics(ctx, "u1", Range30Days, Options{})
	require.NoError(t, err)
	calls := data.Calls()

	insights, err := svc.GenerateUserInsights(ctx, "u1", Range30Days)
	require.NoError(t, err)
	assert.Equal(t, calls, data.Calls())
	assert.Equal(t, bundle.Insights, insights)
	require.NotEmpty(t, insights)
	assert.Equal(t, models.InsightImprovement, insights[0].Type)
}
