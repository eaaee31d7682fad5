// Package jobstate holds job status records for a single process.
package jobstate

import (
	"context"
	"sync"
	"time"

	"reelstitch/internal/domain"
	"reelstitch/internal/domain/model"
	"reelstitch/internal/domain/ports/repository"
)

var _ repository.JobStateRepository = (*MemoryRepo)(nil)

type record struct {
	rec     model.JobRecord
	expires time.Time
}

// MemoryRepo keeps records for ttl after their last save. Expired records
// are dropped lazily on Get and in bulk by Sweep.
type MemoryRepo struct {
	mu   sync.RWMutex
	recs map[string]record
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryRepo(ttl time.Duration) *MemoryRepo {
	return &MemoryRepo{recs: make(map[string]record), ttl: ttl, now: time.Now}
}

func (r *MemoryRepo) Save(_ context.Context, rec *model.JobRecord) error {
	r.mu.Lock()
	r.recs[rec.ID] = record{rec: *rec, expires: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepo) Get(_ context.Context, id string) (*model.JobRecord, error) {
	r.mu.RLock()
	v, ok := r.recs[id]
	r.mu.RUnlock()
	if !ok || !r.now().Before(v.expires) {
		return nil, domain.ErrNotFound
	}
	rec := v.rec
	return &rec, nil
}

// Sweep drops expired records and returns how many were removed.
func (r *MemoryRepo) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, v := range r.recs {
		if !now.Before(v.expires) {
			delete(r.recs, id)
			n++
		}
	}
	return n
}
