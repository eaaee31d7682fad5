// Package resultstore keeps finished artifacts retrievable for a bounded
// time after their job completes.
package resultstore

import (
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"reelstitch/internal/domain/model"
	"reelstitch/internal/domain/ports/repository"
	"reelstitch/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ repository.ResultStore = (*MemoryStore)(nil)

// MemoryStore is a process-local ResultStore. Entries do not survive a
// restart; scratch.Manager.PurgeOrphans removes their files on the next
// start.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]model.ResultEntry

	now    func() time.Time
	stat   func(string) (os.FileInfo, error)
	remove func(string) error
	log    *zerolog.Logger
}

type Option func(*MemoryStore)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// WithFS overrides the file probes used for liveness and eviction.
func WithFS(stat func(string) (os.FileInfo, error), remove func(string) error) Option {
	return func(s *MemoryStore) {
		if stat != nil {
			s.stat = stat
		}
		if remove != nil {
			s.remove = remove
		}
	}
}

func NewMemoryStore(logger *zerolog.Logger, opts ...Option) *MemoryStore {
	l := logger.With().Str("component", "result_store").Logger()
	s := &MemoryStore{
		entries: make(map[string]model.ResultEntry),
		now:     time.Now,
		stat:    os.Stat,
		remove:  os.Remove,
		log:     &l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put registers path under id, replacing any previous entry.
func (s *MemoryStore) Put(id, path string, ttl time.Duration) model.ResultEntry {
	e := model.ResultEntry{ID: id, FilePath: path, ExpiresAt: s.now().Add(ttl)}
	s.mu.Lock()
	s.entries[id] = e
	n := len(s.entries)
	s.mu.Unlock()
	metrics.SetResultEntries(n)
	return e
}

// Get never returns an entry at or past its expiry, nor one whose file has
// disappeared, whether or not a sweep has run yet.
func (s *MemoryStore) Get(id string) (model.ResultEntry, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || e.Expired(s.now()) {
		return model.ResultEntry{}, false
	}
	if _, err := s.stat(e.FilePath); err != nil {
		return model.ResultEntry{}, false
	}
	return e, true
}

// Sweep evicts expired entries and entries whose file vanished, deleting
// their files. Removal failures are logged; a missing file is not a failure.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	var evicted []model.ResultEntry
	for id, e := range s.entries {
		if e.Expired(now) {
			evicted = append(evicted, e)
			delete(s.entries, id)
			continue
		}
		if _, err := s.stat(e.FilePath); errors.Is(err, fs.ErrNotExist) {
			evicted = append(evicted, e)
			delete(s.entries, id)
		}
	}
	n := len(s.entries)
	s.mu.Unlock()

	for _, e := range evicted {
		if err := s.remove(e.FilePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Str("job_id", e.ID).Str("path", e.FilePath).Msg("failed to delete expired artifact")
		}
	}
	metrics.SetResultEntries(n)
	metrics.AddSweepEvictions(len(evicted))
	if len(evicted) > 0 {
		s.log.Debug().Int("evicted", len(evicted)).Int("remaining", n).Msg("result sweep")
	}
	return len(evicted)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
