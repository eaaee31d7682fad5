// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"reelstitch/internal/domain"
	"reelstitch/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// A small bounded worker pool. Submit never blocks: when the queue is full
// the task is refused with domain.ErrQueueFull and the caller decides what
// to tell its client.

type Task func(ctx context.Context) error

type Pool struct {
	wg   sync.WaitGroup
	jobs chan Task
	quit chan struct{}
	stop sync.Once
	n    int
	log  *zerolog.Logger
}

// NewPool creates a pool of workers goroutines (NumCPU when <= 0) fed by a
// queue holding up to queueSize waiting tasks (4 per worker when <= 0).
func NewPool(workers, queueSize int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = workers * 4
	}
	l := logger.With().Str("component", "WorkerPool").Logger()
	return &Pool{
		jobs: make(chan Task, queueSize),
		quit: make(chan struct{}),
		n:    workers,
		log:  &l,
	}
}

// Start launches the workers. Tasks receive ctx; once it is done, workers
// hand every task still queued a canceled context so the task can report
// failure to whoever waits on it, then exit.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					p.drain(ctx, id)
					return
				case <-p.quit:
					p.drain(ctx, id)
					return
				case task := <-p.jobs:
					metrics.SetQueueDepth(len(p.jobs))
					p.run(ctx, id, task)
				}
			}
		}(i)
	}
	p.log.Info().Int("workers", p.n).Int("queue", cap(p.jobs)).Msg("worker pool started")
}

// Run starts the pool and blocks until ctx is done and every worker has
// exited.
func (p *Pool) Run(ctx context.Context) error {
	p.Start(ctx)
	<-ctx.Done()
	p.wg.Wait()
	p.log.Info().Msg("worker pool stopped")
	return nil
}

func (p *Pool) Stop() {
	p.stop.Do(func() { close(p.quit) })
	p.wg.Wait()
}

func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case <-p.quit:
		return errors.New("worker pool stopped")
	default:
	}
	select {
	case p.jobs <- task:
		metrics.SetQueueDepth(len(p.jobs))
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// QueueDepth is the number of tasks waiting for a worker.
func (p *Pool) QueueDepth() int { return len(p.jobs) }

func (p *Pool) run(ctx context.Context, id int, task Task) {
	if task == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Int("worker", id).Interface("panic", r).Msg("task panicked")
		}
	}()
	if err := task(ctx); err != nil {
		p.log.Debug().Int("worker", id).Err(err).Msg("task error")
	}
}

func (p *Pool) drain(ctx context.Context, id int) {
	if ctx.Err() == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		cancel()
	}
	for {
		select {
		case task := <-p.jobs:
			p.run(ctx, id, task)
		default:
			metrics.SetQueueDepth(0)
			return
		}
	}
}
