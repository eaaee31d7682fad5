package usecase

import (
	"context"
	"fmt"
	"time"

	"reelstitch/internal/domain"
	"reelstitch/internal/domain/model"
	"reelstitch/internal/domain/ports/adapter"
	"reelstitch/internal/domain/ports/repository"
	"reelstitch/internal/infra/logging"
	"reelstitch/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StageFunc is notified on every stage transition of a running job.
type StageFunc func(stage model.Stage)

// StitchUseCase runs one job end to end: fetch the narration and three
// clips, build the normalized base clip, loop it under the narration and
// publish the result.
type StitchUseCase interface {
	// NewJob validates req and assigns a fresh job id.
	NewJob(req model.JobRequest) (*model.Job, error)

	// Run executes the pipeline. Stages run strictly in order; the first
	// failure aborts the job, removes every scratch file it created and is
	// returned as is. On success the artifact is published in the result
	// store and its entry returned.
	Run(ctx context.Context, job *model.Job, onStage StageFunc) (model.ResultEntry, error)
}

// StitchConfig carries the output defaults and publication horizon.
type StitchConfig struct {
	Width     int
	Height    int
	FPS       int
	ResultTTL time.Duration
}

var _ StitchUseCase = (*stitchUC)(nil)

type stitchUC struct {
	cfg        StitchConfig
	fetcher    adapter.Fetcher
	transcoder adapter.Transcoder
	scratch    adapter.WorkspaceProvider
	results    repository.ResultStore
	now        func() time.Time
	log        *zerolog.Logger
}

func NewStitchUseCase(
	cfg StitchConfig,
	fetcher adapter.Fetcher,
	transcoder adapter.Transcoder,
	scratch adapter.WorkspaceProvider,
	results repository.ResultStore,
	logger *zerolog.Logger,
) StitchUseCase {
	l := logger.With().Str("component", "StitchUseCase").Logger()
	return &stitchUC{
		cfg:        cfg,
		fetcher:    fetcher,
		transcoder: transcoder,
		scratch:    scratch,
		results:    results,
		now:        time.Now,
		log:        &l,
	}
}

func (s *stitchUC) NewJob(req model.JobRequest) (*model.Job, error) {
	req = normalizeRequest(req)
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return &model.Job{
		ID:        uuid.NewString(),
		Request:   req,
		Stage:     model.StageStart,
		CreatedAt: s.now(),
	}, nil
}

// stageTimer tracks the current stage and observes how long each one took.
type stageTimer struct {
	job     *model.Job
	started time.Time
	onStage StageFunc
	log     *zerolog.Logger
}

func (t *stageTimer) enter(stage model.Stage) {
	now := time.Now()
	if t.job.Stage != "" && !t.started.IsZero() {
		d := now.Sub(t.started)
		metrics.ObserveStage(string(t.job.Stage), d)
		t.log.Debug().Str("stage", string(t.job.Stage)).Dur("duration", d).Msg("stage finished")
	}
	t.job.Stage = stage
	t.started = now
	if t.onStage != nil {
		t.onStage(stage)
	}
}

func (s *stitchUC) Run(ctx context.Context, job *model.Job, onStage StageFunc) (entry model.ResultEntry, err error) {
	ctx = logging.WithJobID(ctx, job.ID)
	log := logging.With(ctx, s.log)
	timer := &stageTimer{job: job, onStage: onStage, log: log}
	start := time.Now()

	timer.enter(model.StageStart)
	defer func() {
		if err != nil {
			metrics.IncJob("failed")
			log.Warn().Err(err).Str("stage", string(job.Stage)).Str("class", domain.Classify(err)).Msg("job failed")
			timer.enter(model.StageFailed)
			return
		}
		metrics.IncJob("succeeded")
		log.Info().Dur("duration", time.Since(start)).Time("expires_at", entry.ExpiresAt).Msg("job published")
	}()

	if err = ValidateRequest(job.Request); err != nil {
		return model.ResultEntry{}, err
	}
	if err = ctx.Err(); err != nil {
		return model.ResultEntry{}, err
	}

	ws, err := s.scratch.Open(job.ID)
	if err != nil {
		return model.ResultEntry{}, fmt.Errorf("allocate scratch: %w", err)
	}
	defer func() {
		if err != nil {
			ws.Cleanup()
		}
	}()

	// ---- Fetching ----
	timer.enter(model.StageFetching)
	req := job.Request
	narration := ws.Path(model.RoleNarration, inputExt(req.NarrationURL))
	if err = s.fetch(ctx, log, req.NarrationURL, narration); err != nil {
		return model.ResultEntry{}, err
	}
	clips := make([]string, 0, len(model.VideoRoles))
	for i, role := range model.VideoRoles {
		p := ws.Path(role, inputExt(req.VideoURLs[i]))
		if err = s.fetch(ctx, log, req.VideoURLs[i], p); err != nil {
			return model.ResultEntry{}, err
		}
		clips = append(clips, p)
	}

	// ---- Base build ----
	timer.enter(model.StageBaseBuild)
	w, h := req.Width, req.Height
	if w == 0 || h == 0 {
		w, h = s.cfg.Width, s.cfg.Height
	}
	list := ws.Path(model.RoleConcat, ".txt")
	base := ws.Path(model.RoleBase, ".mp4")
	if err = s.transcoder.BuildBase(ctx, adapter.BaseSpec{
		Inputs:     clips,
		ListPath:   list,
		OutputPath: base,
		Width:      w,
		Height:     h,
		FPS:        s.cfg.FPS,
	}); err != nil {
		return model.ResultEntry{}, err
	}

	// ---- Final mux ----
	timer.enter(model.StageFinalMux)
	final := ws.Path(model.RoleFinal, ".mp4")
	if err = s.transcoder.Mux(ctx, adapter.FinalSpec{
		BasePath:      base,
		NarrationPath: narration,
		OutputPath:    final,
	}); err != nil {
		return model.ResultEntry{}, err
	}

	// ---- Cleanup: intermediates only, never fatal ----
	timer.enter(model.StageCleanup)
	intermediates := append([]string{narration, list, base}, clips...)
	if failed := ws.Discard(intermediates...); failed > 0 {
		log.Warn().Int("failed", failed).Msg("some intermediates were not removed")
	}

	// ---- Publish ----
	published, err := ws.Promote(final)
	if err != nil {
		return model.ResultEntry{}, err
	}
	ws.Cleanup()
	entry = s.results.Put(job.ID, published, s.cfg.ResultTTL)
	timer.enter(model.StagePublished)
	return entry, nil
}

func (s *stitchUC) fetch(ctx context.Context, log *zerolog.Logger, rawURL, dest string) error {
	n, err := s.fetcher.Fetch(ctx, rawURL, dest)
	if err != nil {
		return err
	}
	log.Debug().Str("url", logging.RedactURL(rawURL)).Int64("bytes", n).Msg("input fetched")
	return nil
}
