package fetch

import (
	"time"

	"reelstitch/internal/config"
	"reelstitch/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// New selects the fetcher implementation for mode. Unknown modes fall back
// to HTTP; config validation rejects them before this point.
func New(mode string, timeout time.Duration, userAgent, ffmpegBin string, runner adapter.CommandRunner, logger *zerolog.Logger) adapter.Fetcher {
	if mode == config.FetchModeFFmpeg {
		return NewFFmpegFetcher(ffmpegBin, runner, logger)
	}
	return NewHTTPFetcher(timeout, userAgent, logger)
}
