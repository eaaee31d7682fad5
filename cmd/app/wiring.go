package main

import (
	"reelstitch/internal/config"
	"reelstitch/internal/domain/ports/adapter"
	"reelstitch/internal/infra/fetch"
	"reelstitch/internal/infra/ffmpeg"
	"reelstitch/internal/infra/procexec"
	"reelstitch/internal/infra/resultstore"
	"reelstitch/internal/infra/scratch"
	"reelstitch/internal/usecase"

	"github.com/rs/zerolog"
)

// pipeline bundles the pieces shared by serve and render.
type pipeline struct {
	runner  adapter.CommandRunner
	scratch *scratch.Manager
	results *resultstore.MemoryStore
	stitch  usecase.StitchUseCase
}

func newPipeline(cfg *config.Config, scratchRoot string, logger *zerolog.Logger) *pipeline {
	p := cfg.Pipeline
	runner := procexec.NewRunner(p.OutputLimitBytes, p.TranscodeTimeout, logger)
	fetcher := fetch.New(cfg.Fetch.Mode, cfg.Fetch.Timeout, cfg.Fetch.UserAgent, p.FFmpegPath, runner, logger)
	transcoder := ffmpeg.NewTranscoder(p.FFmpegPath, ffmpeg.Encoding{
		VideoCodec:   p.VideoCodec,
		Preset:       p.Preset,
		BaseCRF:      p.BaseCRF,
		FinalCRF:     p.FinalCRF,
		AudioCodec:   p.AudioCodec,
		AudioBitrate: p.AudioBitrate,
	}, runner, logger)

	mgr := scratch.NewManager(scratchRoot, logger)
	results := resultstore.NewMemoryStore(logger)
	stitch := usecase.NewStitchUseCase(usecase.StitchConfig{
		Width:     p.Width,
		Height:    p.Height,
		FPS:       p.FPS,
		ResultTTL: cfg.Results.TTL,
	}, fetcher, transcoder, mgr, results, logger)

	return &pipeline{runner: runner, scratch: mgr, results: results, stitch: stitch}
}
