package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
)

// Dequeuer blocks until a job is available.
type Dequeuer interface {
	Dequeue(ctx context.Context) (domain.DeferredJob, error)
}

// errorBackoff spaces out retries when the queue itself fails.
const errorBackoff = time.Second

// Pool runs N consumers over a queue.
type Pool struct {
	queue       Dequeuer
	worker      *Worker
	concurrency int
	jobTimeout  time.Duration
	logger      logger.Logger
}

func NewPool(q Dequeuer, w *Worker, concurrency int, jobTimeout time.Duration, log logger.Logger) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{
		queue:       q,
		worker:      w,
		concurrency: concurrency,
		jobTimeout:  jobTimeout,
		logger:      log,
	}
}

// Run consumes jobs until ctx is done or the queue is closed, then waits
// for in-flight jobs. A dispatched job is never cancelled by shutdown; it
// only obeys its own timeout.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.consume(ctx, id)
		}(i)
	}
	p.logger.Info("worker pool started", logger.Int("concurrency", p.concurrency))
	wg.Wait()
	p.logger.Info("worker pool stopped")
}

func (p *Pool) consume(ctx context.Context, id int) {
	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, domain.ErrQueueClosed) {
				return
			}
			p.logger.Error("failed to dequeue job", logger.Int("consumer", id), logger.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(errorBackoff):
			}
			continue
		}
		p.runJob(ctx, job)
	}
}

func (p *Pool) runJob(parent context.Context, job domain.DeferredJob) {
	ctx := context.WithoutCancel(parent)
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}
	p.worker.Process(ctx, job)
}
