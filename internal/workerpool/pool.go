package workerpool

import (
	"bananaprep/internal/logger"
	"bananaprep/internal/repositories"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SolvePublisher emits one event per genuine first solve. The progress
// layer guards against duplicates; consumers trust the stream.
type SolvePublisher interface {
	PublishSolve(ctx context.Context, userID int, difficulty string) error
}

type streamPublisher struct {
	rdb    *redis.Client
	stream string
}

func NewSolvePublisher(rdb *redis.Client, stream string) SolvePublisher {
	return &streamPublisher{rdb: rdb, stream: stream}
}

func (p *streamPublisher) PublishSolve(ctx context.Context, userID int, difficulty string) error {
	err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		ID:     "*",
		Values: map[string]interface{}{
			"user_id":    userID,
			"difficulty": difficulty,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish solve event: %w", err)
	}
	return nil
}

// StatsWorker consumes solve events and applies them to the per-user
// solved counters.
type StatsWorker struct {
	id     string
	quit   chan bool
	rdb    *redis.Client
	stream string
	group  string
	stats  repositories.StatsRepository
}

func NewStatsWorker(id string, rdb *redis.Client, stream, group string,
	stats repositories.StatsRepository) *StatsWorker {
	return &StatsWorker{
		id:     id,
		quit:   make(chan bool),
		rdb:    rdb,
		stream: stream,
		group:  group,
		stats:  stats,
	}
}

// Start begins processing solve events from the stream.
func (w *StatsWorker) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-w.quit:
				return
			default:
				entries, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
					Group:    w.group,
					Consumer: w.id,
					Streams:  []string{w.stream, ">"},
					Count:    1,
					Block:    5 * time.Second,
				}).Result()

				if err != nil {
					if err != redis.Nil {
						logger.Log.Error("Redis operation failed",
							zap.String("worker_id", w.id),
							zap.Error(err))
					}
					continue
				}

				for _, stream := range entries {
					for _, msg := range stream.Messages {
						w.processSolveEvent(ctx, msg)
					}
				}
			}
		}
	}()
}

func (w *StatsWorker) Stop() {
	logger.Log.Info("Closing stats worker",
		zap.String("worker_id", w.id))
	w.quit <- true
	close(w.quit)
}

func (w *StatsWorker) processSolveEvent(ctx context.Context, msg redis.XMessage) {
	logger.Log.Info("Processing solve event",
		zap.String("worker_id", w.id),
		zap.String("event_id", msg.ID))

	if err := w.rdb.XAck(ctx, w.stream, w.group, msg.ID).Err(); err != nil {
		logger.Log.Error("Failed to acknowledge solve event",
			zap.String("worker_id", w.id),
			zap.Error(err))
	}

	if err := ApplySolveEvent(ctx, msg.Values, w.stats); err != nil {
		logger.Log.Error("Failed to apply solve event",
			zap.String("worker_id", w.id),
			zap.String("event_id", msg.ID),
			zap.Error(err))
		return
	}

	logger.Log.Info("Finished processing solve event",
		zap.String("worker_id", w.id),
		zap.String("event_id", msg.ID))
}

// ApplySolveEvent parses one stream entry and increments the matching
// solved counter.
func ApplySolveEvent(ctx context.Context, values map[string]interface{}, stats repositories.StatsRepository) error {
	userIDStr, ok := values["user_id"].(string)
	if !ok {
		return fmt.Errorf("invalid user_id in solve event: %v", values)
	}

	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		return fmt.Errorf("failed to parse user_id %q: %w", userIDStr, err)
	}

	difficulty, ok := values["difficulty"].(string)
	if !ok {
		return fmt.Errorf("invalid difficulty in solve event: %v", values)
	}

	return stats.IncrementSolved(ctx, userID, difficulty)
}

type StatsWorkerPool struct {
	workers    []*StatsWorker
	numWorkers int
	rdb        *redis.Client
	stream     string
	group      string
	stats      repositories.StatsRepository
}

func NewStatsWorkerPool(numWorkers int, rdb *redis.Client, stream, group string,
	stats repositories.StatsRepository) *StatsWorkerPool {
	return &StatsWorkerPool{
		workers:    make([]*StatsWorker, numWorkers),
		numWorkers: numWorkers,
		rdb:        rdb,
		stream:     stream,
		group:      group,
		stats:      stats,
	}
}

func (p *StatsWorkerPool) Start(ctx context.Context) error {
	// Create consumer group if it doesn't exist
	_, err := p.rdb.XGroupCreateMkStream(ctx, p.stream, p.group, "$").Result()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for i := 0; i < p.numWorkers; i++ {
		worker := NewStatsWorker(
			fmt.Sprintf("StatsWorker-%d", i+1),
			p.rdb,
			p.stream,
			p.group,
			p.stats,
		)

		worker.Start(ctx)
		p.workers[i] = worker

		logger.Log.Info("Starting stats worker",
			zap.String("worker_id", worker.id))
	}

	logger.Log.Info("Stats worker pool started",
		zap.Int("num_workers", p.numWorkers))

	return nil
}

// Stop terminates all workers in the pool.
func (p *StatsWorkerPool) Stop() {
	for _, worker := range p.workers {
		worker.Stop()
	}
}
