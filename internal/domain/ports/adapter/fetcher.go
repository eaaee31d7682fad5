package adapter

import "context"

// Fetcher retrieves a remote resource into a local file.
type Fetcher interface {
	// Fetch downloads rawURL into destPath and returns the number of bytes
	// written. It returns only after the resource has been retrieved in
	// full. On failure destPath may hold a partial file which the caller
	// must treat as invalid.
	Fetch(ctx context.Context, rawURL, destPath string) (int64, error)
}
