package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reelstitch/internal/domain"
	"reelstitch/internal/domain/model"
	"reelstitch/internal/domain/ports/repository"
	"reelstitch/internal/infra/logging"
	"reelstitch/internal/infra/metrics"
	"reelstitch/internal/infra/worker"

	"github.com/rs/zerolog"
)

// TaskSubmitter is the part of worker.Pool the job use case needs.
type TaskSubmitter interface {
	Submit(task worker.Task) error
}

// Ticket tracks one admitted job until it finishes.
type Ticket struct {
	Job *model.Job

	done  chan struct{}
	entry model.ResultEntry
	err   error
}

// Done is closed once the job has published its result or failed.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Result is only meaningful after Done is closed.
func (t *Ticket) Result() (model.ResultEntry, error) { return t.entry, t.err }

// JobUseCase admits jobs onto the worker pool and reports their status.
type JobUseCase interface {
	// Submit validates req and queues the job. It fails fast with a
	// ValidationError or domain.ErrQueueFull; nothing is allocated then.
	Submit(ctx context.Context, req model.JobRequest) (*Ticket, error)

	// Wait blocks until the ticket's job finishes, ctx is done, or wait
	// elapses (wait == 0 means no limit). domain.ErrStillRunning is returned
	// when wait elapses first.
	Wait(ctx context.Context, t *Ticket, wait time.Duration) (model.ResultEntry, error)

	// Status returns the state record of a job; domain.ErrNotFound when the
	// id is unknown or its record expired.
	Status(ctx context.Context, id string) (*model.JobRecord, error)
}

var _ JobUseCase = (*jobUC)(nil)

type jobUC struct {
	stitch StitchUseCase
	pool   TaskSubmitter
	states repository.JobStateRepository
	ttl    time.Duration
	now    func() time.Time
	log    *zerolog.Logger
}

// NewJobUseCase wires admission. ttl bounds how long job records stay
// visible and should match the result horizon.
func NewJobUseCase(stitch StitchUseCase, pool TaskSubmitter, states repository.JobStateRepository, ttl time.Duration, logger *zerolog.Logger) JobUseCase {
	l := logger.With().Str("component", "JobUseCase").Logger()
	return &jobUC{
		stitch: stitch,
		pool:   pool,
		states: states,
		ttl:    ttl,
		now:    time.Now,
		log:    &l,
	}
}

func (u *jobUC) Submit(ctx context.Context, req model.JobRequest) (*Ticket, error) {
	job, err := u.stitch.NewJob(req)
	if err != nil {
		metrics.IncJob("rejected")
		return nil, err
	}
	log := logging.With(logging.WithJobID(ctx, job.ID), u.log)

	now := u.now()
	rec := &model.JobRecord{
		ID:        job.ID,
		Status:    model.JobStatusQueued,
		Stage:     job.Stage,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.states.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save job state: %w", err)
	}

	t := &Ticket{Job: job, done: make(chan struct{})}
	// Trace id survives into the worker; cancellation does not.
	traceID := logging.TraceIDFrom(ctx)

	task := func(poolCtx context.Context) error {
		defer close(t.done)
		runCtx := logging.WithJobID(logging.WithTraceID(poolCtx, traceID), job.ID)

		cur := *rec
		cur.Status = model.JobStatusRunning
		onStage := func(stage model.Stage) {
			cur.Stage = stage
			cur.UpdatedAt = u.now()
			if stage == model.StageFailed {
				cur.Status = model.JobStatusFailed
			}
			u.save(runCtx, &cur)
		}

		t.entry, t.err = u.stitch.Run(runCtx, job, onStage)
		if t.err == nil {
			cur.Status = model.JobStatusSucceeded
			cur.ExpiresAt = t.entry.ExpiresAt
		} else {
			cur.Status = model.JobStatusFailed
			cur.Error = domain.PublicMessage(t.err)
		}
		cur.UpdatedAt = u.now()
		u.save(context.WithoutCancel(runCtx), &cur)
		return t.err
	}

	if err := u.pool.Submit(task); err != nil {
		metrics.IncJob("rejected")
		rec.Status = model.JobStatusFailed
		rec.Error = domain.PublicMessage(err)
		rec.UpdatedAt = u.now()
		u.save(ctx, rec)
		return nil, err
	}
	log.Info().Msg("job queued")
	return t, nil
}

func (u *jobUC) Wait(ctx context.Context, t *Ticket, wait time.Duration) (model.ResultEntry, error) {
	var timeout <-chan time.Time
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case <-t.done:
		return t.Result()
	case <-timeout:
		return model.ResultEntry{}, domain.ErrStillRunning
	case <-ctx.Done():
		return model.ResultEntry{}, ctx.Err()
	}
}

func (u *jobUC) Status(ctx context.Context, id string) (*model.JobRecord, error) {
	rec, err := u.states.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (u *jobUC) save(ctx context.Context, rec *model.JobRecord) {
	if err := u.states.Save(ctx, rec); err != nil && !errors.Is(err, context.Canceled) {
		logging.With(ctx, u.log).Warn().Err(err).Str("status", string(rec.Status)).Msg("failed to save job state")
	}
}
