package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reelstitch/internal/domain"
	"reelstitch/internal/domain/model"
	"reelstitch/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.JobStateRepository = (*JobStateRepo)(nil)

// JobStateRepo shares job status records between replicas. Records expire
// on their own; nothing outlives the ttl.
type JobStateRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewJobStateRepo(client RedisClient, ttl time.Duration) *JobStateRepo {
	return &JobStateRepo{client: client, ttl: ttl}
}

func (r *JobStateRepo) key(id string) string {
	return "reelstitch:job:" + id
}

func (r *JobStateRepo) Save(ctx context.Context, rec *model.JobRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(rec.ID), data, r.ttl); err != nil {
		return fmt.Errorf("save job %s: %w", rec.ID, err)
	}
	return nil
}

func (r *JobStateRepo) Get(ctx context.Context, id string) (*model.JobRecord, error) {
	data, err := r.client.Get(ctx, r.key(id))
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}

	var rec model.JobRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &rec, nil
}
