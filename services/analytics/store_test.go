package analytics

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"timeslice/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements the handful of commands the benchmark store issues.
type fakeRedis struct {
	redis.Cmdable
	values  map[string]string
	ttls    map[string]time.Duration
	deleted []string
	getErr  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		f.deleted = append(f.deleted, k)
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisBenchmarkStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	store := NewRedisBenchmarkStore(client, 30*time.Minute)

	snap := &PlatformSnapshot{
		Bundle: models.BenchmarkBundle{
			TimeRange:      Range7Days,
			Period:         models.Period{StartDate: daysAgo(7), EndDate: testNow},
			AvgRating:      4.25,
			AvgSuccessRate: 37.5,
			TotalUsers:     12,
		},
		Distributions: map[string][]float64{MetricRating: {3.5, 4, 5}},
	}
	require.NoError(t, store.Set(ctx, Range7Days, snap))
	assert.Equal(t, 30*time.Minute, client.ttls[benchmarkPrefix+Range7Days])

	got, err := store.Get(ctx, Range7Days)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap, got)
}

func TestRedisBenchmarkStore_MissAndErrors(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	store := NewRedisBenchmarkStore(client, time.Minute)

	got, err := store.Get(ctx, Range30Days)
	require.NoError(t, err, "a missing key is not an error")
	assert.Nil(t, got)

	client.values[benchmarkPrefix+Range30Days] = "{not json"
	_, err = store.Get(ctx, Range30Days)
	assert.Error(t, err)

	boom := errors.New("connection refused")
	client.getErr = boom
	_, err = store.Get(ctx, Range30Days)
	assert.ErrorIs(t, err, boom)
}

func TestRedisBenchmarkStore_Clear(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	store := NewRedisBenchmarkStore(client, time.Minute)
	require.NoError(t, store.Set(ctx, Range1Day, &PlatformSnapshot{}))
	require.NoError(t, store.Set(ctx, Range1Year, &PlatformSnapshot{}))
	client.values["unrelated"] = "keep"

	require.NoError(t, store.Clear(ctx))

	assert.Equal(t, map[string]string{"unrelated": "keep"}, client.values)
	want := []string{}
	for token := range rangeDurations {
		want = append(want, benchmarkPrefix+token)
	}
	sort.Strings(want)
	sort.Strings(client.deleted)
	assert.Equal(t, want, client.deleted)
}
