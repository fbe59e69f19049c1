package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
)

// ProcessingJobRepository defines durable background job operations.
type ProcessingJobRepository interface {
	Create(ctx context.Context, job *entities.ProcessingJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ProcessingJob, error)

	// ClaimNextPending atomically claims the oldest pending job for the given
	// names. Returns (nil, nil) when no job is available.
	ClaimNextPending(ctx context.Context, names []string) (*entities.ProcessingJob, error)

	// UpdateCheckpoints persists step results so a retried job can skip
	// already-completed steps.
	UpdateCheckpoints(ctx context.Context, id uuid.UUID, checkpoints datatypes.JSONMap) error

	MarkCompleted(ctx context.Context, id uuid.UUID) error

	// MarkFailed records the error. Retryable jobs go back to pending with an
	// incremented retry count; exhausted jobs stay failed.
	MarkFailed(ctx context.Context, id uuid.UUID, jobErr string, retryable bool) error

	// ResetStuck returns jobs claimed longer than maxAge ago to pending.
	ResetStuck(ctx context.Context, maxAge time.Duration) (int64, error)
}
