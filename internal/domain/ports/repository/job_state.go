package repository

import (
	"context"

	"reelstitch/internal/domain/model"
)

// JobStateRepository keeps the status record of submitted jobs.
// Get returns domain.ErrNotFound for unknown or expired ids.
type JobStateRepository interface {
	Save(ctx context.Context, rec *model.JobRecord) error
	Get(ctx context.Context, id string) (*model.JobRecord, error)
}
