package analytics

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	applicationRepo "timeslice/database/repository/application"
	bookingRepo "timeslice/database/repository/booking"
	"timeslice/models"
	"timeslice/services/cache"

	"go.uber.org/zap"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var errStoreDown = errors.New("store unavailable")

// memoryData is an in-memory stand-in for the collections. Every query bumps calls.
type memoryData struct {
	mu           sync.RWMutex
	users        map[string]*models.User
	tasks        []models.Task
	applications []models.Application
	bookings     []models.Booking
	chats        []models.Chat
	failOps      map[string]bool
	calls        int64
}

func newMemoryData() *memoryData {
	return &memoryData{users: map[string]*models.User{}, failOps: map[string]bool{}}
}

func (d *memoryData) hit(op string) error {
	atomic.AddInt64(&d.calls, 1)
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.failOps[op] {
		return errStoreDown
	}
	return nil
}

func (d *memoryData) Calls() int64 { return atomic.LoadInt64(&d.calls) }

func (d *memoryData) addUser(u models.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = &u
}

func (d *memoryData) addApplications(apps ...models.Application) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applications = append(d.applications, apps...)
}

func (d *memoryData) addBookings(bookings ...models.Booking) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bookings = append(d.bookings, bookings...)
}

func (d *memoryData) addTasks(tasks ...models.Task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, tasks...)
}

func (d *memoryData) addChats(chats ...models.Chat) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chats = append(d.chats, chats...)
}

func within(t, start, end time.Time) bool { return !t.Before(start) && t.Before(end) }

type memoryUsers struct{ *memoryData }

func (r memoryUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if err := r.hit("findUser"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r memoryUsers) GetRated(_ context.Context) ([]models.User, error) {
	if err := r.hit("findRatedUsers"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.User
	for _, u := range r.users {
		if u.TotalRatings > 0 {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r memoryUsers) CountAll(_ context.Context) (int, error) {
	if err := r.hit("countUsers"); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

type memoryTasks struct{ *memoryData }

func (r memoryTasks) FindByUserAndRange(_ context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	if err := r.hit("findTasksByUserAndRange"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Task
	for _, t := range r.tasks {
		if (t.TaskProviderID == userID || t.SelectedHelper == userID) && within(t.CreatedAt, start, end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r memoryTasks) FindByIDs(_ context.Context, ids []string) ([]models.Task, error) {
	if err := r.hit("findTasksByIDs"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Task
	for _, t := range r.tasks {
		if want[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r memoryTasks) CountActiveByProvider(_ context.Context, userID string) (int, error) {
	if err := r.hit("countActiveTasks"); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, t := range r.tasks {
		if t.TaskProviderID == userID && t.IsActive() {
			n++
		}
	}
	return n, nil
}

type memoryApplications struct{ *memoryData }

func (r memoryApplications) FindByUserAndRange(_ context.Context, userID string, start, end time.Time) ([]models.Application, error) {
	if err := r.hit("findApplicationsByUserAndRange"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Application
	for _, a := range r.applications {
		if (a.ApplicantID == userID || a.TaskProviderID == userID) && within(a.CreatedAt, start, end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memoryApplications) AggregateByApplicant(_ context.Context, start, end time.Time) ([]applicationRepo.ApplicantStats, error) {
	if err := r.hit("aggregateApplicationsByApplicant"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	byID := map[string]*applicationRepo.ApplicantStats{}
	var order []string
	for _, a := range r.applications {
		if !within(a.CreatedAt, start, end) {
			continue
		}
		st, ok := byID[a.ApplicantID]
		if !ok {
			st = &applicationRepo.ApplicantStats{ApplicantID: a.ApplicantID}
			byID[a.ApplicantID] = st
			order = append(order, a.ApplicantID)
		}
		st.Submitted++
		if a.Status == models.ApplicationAccepted {
			st.Accepted++
		}
	}
	out := make([]applicationRepo.ApplicantStats, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

func (r memoryApplications) CountPendingReceived(_ context.Context, userID string) (int, error) {
	if err := r.hit("countPendingApplications"); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, a := range r.applications {
		if a.TaskProviderID == userID && a.Status == models.ApplicationPending {
			n++
		}
	}
	return n, nil
}

type memoryBookings struct{ *memoryData }

func (r memoryBookings) FindByUserAndRange(_ context.Context, userID string, start, end time.Time) ([]models.Booking, error) {
	if err := r.hit("findBookingsByUserAndRange"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if (b.Helper == userID || b.TaskProvider == userID) && within(b.CreatedAt, start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r memoryBookings) AggregateCompletedByHelper(_ context.Context, start, end time.Time) ([]bookingRepo.HelperEarnings, error) {
	if err := r.hit("aggregateCompletedBookingsByHelper"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	byID := map[string]*bookingRepo.HelperEarnings{}
	var order []string
	for _, b := range r.bookings {
		if b.Status != models.BookingCompleted || !within(b.CreatedAt, start, end) {
			continue
		}
		h, ok := byID[b.Helper]
		if !ok {
			h = &bookingRepo.HelperEarnings{HelperID: b.Helper}
			byID[b.Helper] = h
			order = append(order, b.Helper)
		}
		h.Completed++
		h.Credits += b.AgreedCredits
	}
	out := make([]bookingRepo.HelperEarnings, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

func (r memoryBookings) FindActiveByUser(_ context.Context, userID string) ([]models.Booking, error) {
	if err := r.hit("findActiveBookings"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if (b.Helper == userID || b.TaskProvider == userID) && b.IsActive() {
			out = append(out, b)
		}
	}
	return out, nil
}

type memoryChats struct{ *memoryData }

func (r memoryChats) FindByParticipantAndRange(_ context.Context, userID string, start, end time.Time) ([]models.Chat, error) {
	if err := r.hit("findChatsByParticipantAndRange"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Chat
	for _, c := range r.chats {
		member := false
		for _, p := range c.Participants {
			if p == userID {
				member = true
			}
		}
		if !member {
			continue
		}
		for _, m := range c.Messages {
			if within(m.SentAt, start, end) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (r memoryChats) CountUnreadMessages(_ context.Context, userID string) (int, error) {
	if err := r.hit("countUnreadMessages"); err != nil {
		return 0, err
	}
	return 0, nil
}

// memoryBenchmarkStore is a BenchmarkStore held in a map.
type memoryBenchmarkStore struct {
	mu      sync.Mutex
	snaps   map[string]*PlatformSnapshot
	failGet bool
	sets    int
}

func (m *memoryBenchmarkStore) Get(_ context.Context, timeRange string) (*PlatformSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errStoreDown
	}
	return m.snaps[timeRange], nil
}

func (m *memoryBenchmarkStore) Set(_ context.Context, timeRange string, snap *PlatformSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snaps == nil {
		m.snaps = map[string]*PlatformSnapshot{}
	}
	m.snaps[timeRange] = snap
	m.sets++
	return nil
}

func (m *memoryBenchmarkStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = nil
	return nil
}

// recordingWriter is a SnapshotWriter that remembers what it was given.
type recordingWriter struct {
	mu          sync.Mutex
	written     []*models.AnalyticsBundle
	invalidated []string
}

func (w *recordingWriter) WriteSnapshot(_ context.Context, bundle *models.AnalyticsBundle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, bundle)
	return nil
}

func (w *recordingWriter) InvalidateUser(_ context.Context, userID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.invalidated = append(w.invalidated, userID)
	return nil
}

type serviceOption func(*Deps)

func withBenchmarkStore(store BenchmarkStore) serviceOption {
	return func(d *Deps) { d.Benchmarks = store }
}

func withSnapshotWriter(w SnapshotWriter) serviceOption {
	return func(d *Deps) { d.Snapshots = w }
}

func newTestService(data *memoryData, opts ...serviceOption) *Service {
	clock := func() time.Time { return testNow }
	deps := Deps{
		Cache:        cache.New(100, cache.WithClock(clock)),
		Users:        memoryUsers{data},
		Tasks:        memoryTasks{data},
		Applications: memoryApplications{data},
		Bookings:     memoryBookings{data},
		Chats:        memoryChats{data},
		Now:          clock,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return NewService(deps, Config{AnalyticsTTL: 5 * time.Minute, BenchmarkTTL: 30 * time.Minute}, zap.NewNop())
}

func daysAgo(n float64) time.Time {
	return testNow.Add(-time.Duration(n * float64(day)))
}

func completedBooking(id, helper, provider string, credits int, at time.Time) models.Booking {
	done := at.Add(3 * time.Hour)
	started := at.Add(time.Hour)
	return models.Booking{
		ID:            id,
		TaskID:        "task-" + id,
		Helper:        helper,
		TaskProvider:  provider,
		AgreedCredits: credits,
		Status:        models.BookingCompleted,
		StartedAt:     &started,
		CompletedAt:   &done,
		CreatedAt:     at,
	}
}

func application(id, applicant, provider, status string, at time.Time) models.Application {
	return models.Application{
		ID:             id,
		TaskID:         "task-" + id,
		ApplicantID:    applicant,
		TaskProviderID: provider,
		Status:         status,
		CreatedAt:      at,
	}
}
