package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

// KeyJobs is the Redis list holding pending jobs.
const KeyJobs = "boardwatch:jobs"

// defaultPollTimeout bounds each BRPOP so cancellation is noticed.
const defaultPollTimeout = time.Second

// Redis is a list-backed queue shared by every replica (LPUSH / BRPOP).
type Redis struct {
	client      *redis.Client
	key         string
	pollTimeout time.Duration
}

// NewRedis returns a queue on KeyJobs.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, key: KeyJobs, pollTimeout: defaultPollTimeout}
}

func (q *Redis) Enqueue(ctx context.Context, job domain.DeferredJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("%w: enqueue job: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (q *Redis) Dequeue(ctx context.Context) (domain.DeferredJob, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.DeferredJob{}, err
		}

		res, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return domain.DeferredJob{}, ctx.Err()
			}
			if errors.Is(err, redis.ErrClosed) {
				return domain.DeferredJob{}, domain.ErrQueueClosed
			}
			return domain.DeferredJob{}, fmt.Errorf("%w: dequeue job: %w", domain.ErrPersistence, err)
		}

		// res is [key, value]
		var job domain.DeferredJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return domain.DeferredJob{}, fmt.Errorf("failed to unmarshal job: %w", err)
		}
		return job, nil
	}
}

// Len returns the number of pending jobs.
func (q *Redis) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
