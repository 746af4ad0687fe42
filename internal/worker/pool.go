package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/tsago2003/gpt/internal/logger"
)

var (
	ErrQueueFull = errors.New("worker queue is full")
	ErrStopped   = errors.New("worker pool is stopped")
)

// Job is one background unit of work for a task.
type Job struct {
	TaskID string
	Run    func(ctx context.Context)
}

// Claimer grants a task to exactly one runner. cache.TaskCache implements it with redis SETNX.
type Claimer interface {
	Claim(ctx context.Context, taskID string) (bool, error)
}

// Pool runs jobs on maxConcurrent goroutines fed by a bounded queue.
// With maxConcurrent <= 0 every job gets its own goroutine and nothing is queued.
type Pool struct {
	maxConcurrent int
	queue         chan Job
	claimer       Claimer
	logger        logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// New creates a pool. claimer may be nil.
func New(maxConcurrent, queueSize int, claimer Claimer, log logger.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		maxConcurrent: maxConcurrent,
		claimer:       claimer,
		logger:        log,
		ctx:           ctx,
		cancel:        cancel,
	}
	if maxConcurrent > 0 {
		p.queue = make(chan Job, queueSize)
	}
	return p
}

// Start launches the workers. Calling it twice is a no-op.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	if p.maxConcurrent <= 0 {
		p.logger.Info(p.ctx, "Worker pool started (unbounded)")
		return
	}
	for i := 0; i < p.maxConcurrent; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.queue {
				p.run(job)
			}
		}()
	}
	p.logger.Info(p.ctx, "Worker pool started (max concurrent: %d, queue size: %d)", p.maxConcurrent, cap(p.queue))
}

// Submit hands job to the pool without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}

	if p.queue == nil {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(job)
		}()
		return nil
	}

	select {
	case p.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops intake, lets queued and in-flight jobs finish, and waits for them until ctx
// expires. On expiry the jobs' context is cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		if p.queue != nil {
			close(p.queue)
		}
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info(p.ctx, "Worker pool stopped")
		return nil
	case <-ctx.Done():
		p.cancel()
		p.logger.Warn(p.ctx, "Worker pool shutdown timed out, cancelling running jobs")
		return ctx.Err()
	}
}

func (p *Pool) run(job Job) {
	ctx := logger.WithTaskID(p.ctx, job.TaskID)

	if p.claimer != nil {
		ok, err := p.claimer.Claim(ctx, job.TaskID)
		switch {
		case err != nil:
			p.logger.Warn(ctx, "Claim check failed, running anyway: %v", err)
		case !ok:
			p.logger.Info(ctx, "Task already claimed, skipping")
			return
		}
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(ctx, "Background task panicked: %v", r)
		}
	}()
	job.Run(ctx)
}
