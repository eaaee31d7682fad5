package main

import (
	"context"
	"fmt"

	"reelstitch/internal/config"
	"reelstitch/internal/domain/ports/repository"
	"reelstitch/internal/infra/api"
	"reelstitch/internal/infra/deps"
	"reelstitch/internal/infra/jobstate"
	"reelstitch/internal/infra/metrics"
	red "reelstitch/internal/infra/redis"
	"reelstitch/internal/infra/sched"
	"reelstitch/internal/infra/worker"
	"reelstitch/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, ctx.logger())
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Preflight ----
	for _, s := range deps.Missing(deps.CheckBinaries(deps.Requirements(cfg.Pipeline.FFmpegPath))) {
		// jobs fail with a spawn error until this is fixed; the service still starts
		logger.Warn().Str("command", s.Command).Msg(s.Detail)
	}

	// ---- Pipeline & scratch ----
	p := newPipeline(cfg, cfg.Scratch.Root, logger)
	if err := p.scratch.Acquire(); err != nil {
		return fmt.Errorf("scratch %s: %w", cfg.Scratch.Root, err)
	}
	defer p.scratch.Release()
	if _, err := p.scratch.PurgeOrphans(); err != nil {
		logger.Warn().Err(err).Msg("orphan purge incomplete")
	}

	// ---- Job state ----
	sweepers := map[string]sched.Sweeper{"results": p.results}
	var states repository.JobStateRepository
	if cfg.Redis.URL != "" {
		client, err := red.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()
		states = red.NewJobStateRepo(client, cfg.Results.TTL)
		logger.Info().Msg("job state: redis")
	} else {
		mem := jobstate.NewMemoryRepo(cfg.Results.TTL)
		sweepers["jobs"] = mem
		states = mem
	}

	// ---- Use cases ----
	pool := worker.NewPool(cfg.Worker.Count, cfg.Worker.QueueSize, logger)
	jobUC := usecase.NewJobUseCase(p.stitch, pool, states, cfg.Results.TTL, logger)

	// ---- Run ----
	srv := api.NewServer(jobUC, p.results, cfg.Server, cfg.Worker.SubmitWait, logger)
	sweeper := sched.NewSweepWorker(cfg.Results.SweepInterval, sweepers, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return pool.Run(gctx) })
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })

	err := g.Wait()
	logger.Info().Msg("service stopped")
	return err
}
