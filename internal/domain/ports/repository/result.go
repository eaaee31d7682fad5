package repository

import (
	"time"

	"reelstitch/internal/domain/model"
)

// ResultStore maps job ids to finished artifacts for a limited time.
type ResultStore interface {
	// Put registers path under id until now+ttl.
	Put(id, path string, ttl time.Duration) model.ResultEntry
	// Get returns the live entry for id. Expired entries and entries whose
	// file no longer exists are reported as absent.
	Get(id string) (model.ResultEntry, bool)
	// Sweep evicts expired entries, deleting their files, and returns the
	// number of entries removed.
	Sweep() int
	Len() int
}
