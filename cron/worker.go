package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	analyticsRepo "timeslice/database/repository/analytics"
	"timeslice/models"
	"timeslice/services/tasks"
	"timeslice/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitSnapshotWorker runs the analytics snapshot worker in background.
func InitSnapshotWorker(repo analyticsRepo.SnapshotRepository, ttl time.Duration, concurrency int) *asynq.Server {
	logger := utils.GetLogger()
	if concurrency <= 0 {
		concurrency = 5
	}

	srv := asynq.NewServer(
		utils.QueueRedisOpt(),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.SnapshotQueue: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSnapshotWrite, handleSnapshotWrite(repo, ttl, time.Now))
	mux.HandleFunc(tasks.TypeSnapshotInvalidate, handleSnapshotInvalidate(repo))

	// Start async worker with retry logic
	go func() {
		logger.Info("[SnapshotWorker] starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				break
			}
			logger.Error("[SnapshotWorker] failed to start worker",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("[SnapshotWorker] max retry attempts reached")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	return srv
}

func handleSnapshotWrite(repo analyticsRepo.SnapshotRepository, ttl time.Duration, now func() time.Time) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.SnapshotPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("[SnapshotHandler] invalid payload", zap.Error(err))
			return fmt.Errorf("decode snapshot payload: %v: %w", err, asynq.SkipRetry)
		}

		snapshot := models.AnalyticsSnapshot{
			UserID:      p.UserID,
			TimeRange:   p.TimeRange,
			Period:      p.Period,
			Metrics:     p.Metrics,
			Changes:     p.Changes,
			GeneratedAt: p.GeneratedAt,
			Cache:       models.SnapshotCache{ExpiresAt: now().Add(ttl)},
		}
		written, err := repo.UpsertSnapshot(ctx, snapshot)
		if err != nil {
			utils.GetLogger().Error("[SnapshotHandler] failed to persist snapshot",
				zap.String("userId", p.UserID), zap.String("timeRange", p.TimeRange), zap.Error(err))
			return err
		}
		if !written {
			utils.GetLogger().Debug("[SnapshotHandler] skipping stale snapshot",
				zap.String("userId", p.UserID), zap.String("timeRange", p.TimeRange))
		}
		return nil
	}
}

func handleSnapshotInvalidate(repo analyticsRepo.SnapshotRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.SnapshotInvalidationPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("[SnapshotHandler] invalid invalidation payload", zap.Error(err))
			return fmt.Errorf("decode invalidation payload: %v: %w", err, asynq.SkipRetry)
		}

		n, err := repo.InvalidateUser(ctx, p.UserID)
		if err != nil {
			return err
		}
		utils.GetLogger().Debug("[SnapshotHandler] invalidated snapshots",
			zap.String("userId", p.UserID), zap.Int("count", n))
		return nil
	}
}
