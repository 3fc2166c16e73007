package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const benchmarkPrefix = "analytics:benchmarks:"

// BenchmarkStore shares computed platform benchmarks between replicas.
type BenchmarkStore interface {
	// Get returns the stored snapshot for timeRange, or nil when absent.
	Get(ctx context.Context, timeRange string) (*PlatformSnapshot, error)
	Set(ctx context.Context, timeRange string, snap *PlatformSnapshot) error
	Clear(ctx context.Context) error
}

// RedisBenchmarkStore keeps benchmark snapshots as JSON strings with a TTL.
type RedisBenchmarkStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisBenchmarkStore(client redis.Cmdable, ttl time.Duration) *RedisBenchmarkStore {
	return &RedisBenchmarkStore{client: client, ttl: ttl}
}

func (s *RedisBenchmarkStore) Get(ctx context.Context, timeRange string) (*PlatformSnapshot, error) {
	data, err := s.client.Get(ctx, benchmarkPrefix+timeRange).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap PlatformSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *RedisBenchmarkStore) Set(ctx context.Context, timeRange string, snap *PlatformSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, benchmarkPrefix+timeRange, b, s.ttl).Err()
}

func (s *RedisBenchmarkStore) Clear(ctx context.Context) error {
	keys := make([]string, 0, len(rangeDurations))
	for token := range rangeDurations {
		keys = append(keys, benchmarkPrefix+token)
	}
	return s.client.Del(ctx, keys...).Err()
}
