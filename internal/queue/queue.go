// Package queue decouples the interaction coordinator from the async worker.
// The coordinator enqueues and returns; workers dequeue out of band.
package queue

import (
	"context"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

// Queue hands deferred jobs to workers.
type Queue interface {
	// Enqueue must not wait for the job to be processed.
	Enqueue(ctx context.Context, job domain.DeferredJob) error
	// Dequeue blocks until a job is available, ctx is done, or the queue
	// is closed (domain.ErrQueueClosed).
	Dequeue(ctx context.Context) (domain.DeferredJob, error)
}
