package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper evicts expired state and reports how much it removed.
type Sweeper interface {
	Sweep() int
}

// SweepWorker periodically evicts expired results and job records.
type SweepWorker struct {
	interval time.Duration
	targets  map[string]Sweeper
	log      *zerolog.Logger
}

func NewSweepWorker(interval time.Duration, targets map[string]Sweeper, logger *zerolog.Logger) *SweepWorker {
	sweepLog := logger.With().Str("component", "SweepWorker").Logger()
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweepWorker{
		interval: interval,
		targets:  targets,
		log:      &sweepLog,
	}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting sweep worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping sweep worker")
			return nil
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce sweeps every target and returns the total evicted.
func (w *SweepWorker) RunOnce() int {
	total := 0
	for name, t := range w.targets {
		if t == nil {
			continue
		}
		if n := t.Sweep(); n > 0 {
			total += n
			w.log.Info().Str("target", name).Int("count", n).Msg("expired entries evicted")
		}
	}
	return total
}
