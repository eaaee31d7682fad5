package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"reelstitch/internal/config"
	"reelstitch/internal/domain/ports/repository"
	"reelstitch/internal/infra/metrics"
	"reelstitch/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Server exposes job submission, job status and artifact retrieval.
type Server struct {
	jobs       usecase.JobUseCase
	results    repository.ResultStore
	cfg        config.ServerConfig
	submitWait time.Duration
	log        *zerolog.Logger
}

// NewServer builds the HTTP layer. submitWait bounds how long POST
// /api/v1/jobs holds the connection before answering 202; zero waits for
// the job to finish.
func NewServer(jobs usecase.JobUseCase, results repository.ResultStore, cfg config.ServerConfig, submitWait time.Duration, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "api").Logger()
	return &Server{
		jobs:       jobs,
		results:    results,
		cfg:        cfg,
		submitWait: submitWait,
		log:        &l,
	}
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1/jobs", func(r chi.Router) {
		r.With(APIKey(s.cfg.APIKey)).Post("/", s.createJob)
		r.With(APIKey(s.cfg.APIKey), Timeout(10*time.Second)).Get("/{id}", s.getJob)
		r.Get("/{id}/video", s.getVideo)
	})

	return Chain(r, Recover(s.log), TraceID(), RequestLog(s.log))
}

// Run serves on cfg.Port until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Int("port", s.cfg.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.log.Info().Msg("HTTP server stopped")
	return nil
}
