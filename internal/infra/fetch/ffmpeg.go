package fetch

import (
	"context"
	"fmt"
	"os"

	"reelstitch/internal/domain"
	"reelstitch/internal/domain/ports/adapter"
	"reelstitch/internal/infra/ffmpeg"
	"reelstitch/internal/infra/logging"
	"reelstitch/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ adapter.Fetcher = (*FFmpegFetcher)(nil)

// FFmpegFetcher lets ffmpeg pull the remote input and remux it, stream
// copied, into a local Matroska file.
type FFmpegFetcher struct {
	bin    string
	runner adapter.CommandRunner
	log    *zerolog.Logger
}

func NewFFmpegFetcher(bin string, runner adapter.CommandRunner, logger *zerolog.Logger) *FFmpegFetcher {
	if bin == "" {
		bin = "ffmpeg"
	}
	l := logger.With().Str("component", "fetch").Str("mode", "ffmpeg").Logger()
	return &FFmpegFetcher{bin: bin, runner: runner, log: &l}
}

// Fetch wraps every invoker failure in a FetchError; the cause stays
// reachable through errors.As.
func (f *FFmpegFetcher) Fetch(ctx context.Context, rawURL, destPath string) (int64, error) {
	safeURL := logging.RedactURL(rawURL)

	if _, err := f.runner.Run(ctx, f.bin, ffmpeg.FetchArgs(rawURL, destPath)...); err != nil {
		return 0, &domain.FetchError{URL: safeURL, Reason: "download failed", Err: err}
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", destPath, err)
	}
	if info.Size() == 0 {
		return 0, &domain.FetchError{URL: safeURL, Reason: "no body"}
	}
	metrics.AddFetchBytes(info.Size())
	f.log.Debug().Str("url", safeURL).Int64("bytes", info.Size()).Msg("fetched")
	return info.Size(), nil
}
