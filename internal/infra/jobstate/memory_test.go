package jobstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"reelstitch/internal/domain"
	"reelstitch/internal/domain/model"
)

func TestMemoryRepo(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewMemoryRepo(time.Minute)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	rec := &model.JobRecord{ID: "a", Status: model.JobStatusQueued}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.Status = model.JobStatusFailed // caller mutation must not leak in

	got, err := repo.Get(ctx, "a")
	if err != nil || got.Status != model.JobStatusQueued {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	if _, err := repo.Get(ctx, "b"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown id: %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := repo.Get(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expired record: %v", err)
	}
	if n := repo.Sweep(); n != 1 {
		t.Fatalf("Sweep = %d", n)
	}
}
