package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

// Memory is a buffered channel queue for single-process deployments.
type Memory struct {
	jobs      chan domain.DeferredJob
	closed    chan struct{}
	closeOnce sync.Once
}

// NewMemory returns a queue holding up to size pending jobs.
func NewMemory(size int) *Memory {
	if size < 1 {
		size = 1
	}
	return &Memory{
		jobs:   make(chan domain.DeferredJob, size),
		closed: make(chan struct{}),
	}
}

// Enqueue never waits: a full buffer fails fast with domain.ErrQueueFull
// so the caller can answer right away.
func (q *Memory) Enqueue(_ context.Context, job domain.DeferredJob) error {
	select {
	case <-q.closed:
		return domain.ErrQueueClosed
	default:
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%w: %d jobs pending", domain.ErrQueueFull, len(q.jobs))
	}
}

func (q *Memory) Dequeue(ctx context.Context) (domain.DeferredJob, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-q.closed:
		return domain.DeferredJob{}, domain.ErrQueueClosed
	case <-ctx.Done():
		return domain.DeferredJob{}, ctx.Err()
	}
}

// Len returns the number of pending jobs.
func (q *Memory) Len() int { return len(q.jobs) }

// Close stops delivery. Pending jobs are dropped.
func (q *Memory) Close() {
	q.closeOnce.Do(func() { close(q.closed) })
}
