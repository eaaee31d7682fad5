// Package fetch retrieves remote job inputs into scratch files.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"reelstitch/internal/domain"
	"reelstitch/internal/domain/ports/adapter"
	"reelstitch/internal/infra/logging"
	"reelstitch/internal/infra/metrics"

	"github.com/rs/zerolog"
)

const maxRedirects = 10

var _ adapter.Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher streams a resource over HTTP(S) straight to disk.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	log       *zerolog.Logger
}

// NewHTTPFetcher creates an HTTPFetcher. timeout bounds a whole download,
// zero means none; cancellation still comes from the caller's context.
func NewHTTPFetcher(timeout time.Duration, userAgent string, logger *zerolog.Logger) *HTTPFetcher {
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	return NewHTTPFetcherWithClient(client, userAgent, logger)
}

// NewHTTPFetcherWithClient uses the given client as is.
func NewHTTPFetcherWithClient(client *http.Client, userAgent string, logger *zerolog.Logger) *HTTPFetcher {
	l := logger.With().Str("component", "fetch").Str("mode", "http").Logger()
	return &HTTPFetcher{client: client, userAgent: userAgent, log: &l}
}

// Fetch downloads rawURL into destPath. A redirect chain is followed; the
// final response must be 2xx and carry a complete, non-empty body.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL, destPath string) (int64, error) {
	safeURL := logging.RedactURL(rawURL)
	defer logging.TraceDuration(f.log, "HTTPFetcher.Fetch")()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, &domain.FetchError{URL: safeURL, Reason: "invalid request", Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, &domain.FetchError{URL: safeURL, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &domain.FetchError{URL: safeURL, StatusCode: resp.StatusCode, Reason: "unexpected status"}
	}
	if resp.StatusCode == http.StatusNoContent || resp.ContentLength == 0 {
		return 0, &domain.FetchError{URL: safeURL, StatusCode: resp.StatusCode, Reason: "no body"}
	}

	file, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", destPath, err)
	}

	n, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	metrics.AddFetchBytes(n)

	switch {
	case errors.Is(copyErr, io.ErrUnexpectedEOF):
		return n, &domain.FetchError{URL: safeURL, Reason: "truncated body", Err: copyErr}
	case copyErr != nil:
		return n, &domain.FetchError{URL: safeURL, Reason: "read body", Err: copyErr}
	case closeErr != nil:
		return n, fmt.Errorf("close %s: %w", destPath, closeErr)
	case n == 0:
		return 0, &domain.FetchError{URL: safeURL, StatusCode: resp.StatusCode, Reason: "no body"}
	case resp.ContentLength > 0 && n < resp.ContentLength:
		return n, &domain.FetchError{
			URL:    safeURL,
			Reason: fmt.Sprintf("truncated body: got %d of %d bytes", n, resp.ContentLength),
		}
	}

	f.log.Debug().Str("url", safeURL).Int64("bytes", n).Msg("fetched")
	return n, nil
}
