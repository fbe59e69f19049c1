package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
)

type processingJobRepository struct {
	db *gorm.DB
}

// NewProcessingJobRepository creates a new processing job repository
func NewProcessingJobRepository(db *gorm.DB) repositories.ProcessingJobRepository {
	return &processingJobRepository{db: db}
}

func (r *processingJobRepository) Create(ctx context.Context, job *entities.ProcessingJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *processingJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ProcessingJob, error) {
	var job entities.ProcessingJob
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *processingJobRepository) ClaimNextPending(ctx context.Context, names []string) (*entities.ProcessingJob, error) {
	for attempts := 0; attempts < 3; attempts++ {
		var job entities.ProcessingJob
		err := r.db.WithContext(ctx).
			Where("name IN ? AND status = ?", names, entities.ProcessingJobStatusPending).
			Order("created_at ASC").
			First(&job).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, nil
			}
			return nil, err
		}

		now := time.Now()
		result := r.db.WithContext(ctx).
			Model(&entities.ProcessingJob{}).
			Where("id = ? AND status = ?", job.ID, entities.ProcessingJobStatusPending).
			Updates(map[string]interface{}{
				"status":     entities.ProcessingJobStatusRunning,
				"claimed_at": now,
				"updated_at": now,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			// Another worker claimed it first, look for the next one.
			continue
		}

		job.Status = entities.ProcessingJobStatusRunning
		job.ClaimedAt = &now
		return &job, nil
	}
	return nil, nil
}

func (r *processingJobRepository) UpdateCheckpoints(ctx context.Context, id uuid.UUID, checkpoints datatypes.JSONMap) error {
	return r.db.WithContext(ctx).
		Model(&entities.ProcessingJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"checkpoints": checkpoints,
			"updated_at":  time.Now(),
		}).Error
}

func (r *processingJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.ProcessingJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      entities.ProcessingJobStatusCompleted,
			"finished_at": now,
			"updated_at":  now,
		}).Error
}

func (r *processingJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, jobErr string, retryable bool) error {
	now := time.Now()
	updates := map[string]interface{}{
		"last_error":  jobErr,
		"retry_count": gorm.Expr("retry_count + 1"),
		"updated_at":  now,
	}
	if retryable {
		updates["status"] = entities.ProcessingJobStatusPending
		updates["claimed_at"] = nil
	} else {
		updates["status"] = entities.ProcessingJobStatusFailed
		updates["finished_at"] = now
	}
	return r.db.WithContext(ctx).
		Model(&entities.ProcessingJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *processingJobRepository) ResetStuck(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	result := r.db.WithContext(ctx).
		Model(&entities.ProcessingJob{}).
		Where("status = ? AND claimed_at < ?", entities.ProcessingJobStatusRunning, cutoff).
		Updates(map[string]interface{}{
			"status":     entities.ProcessingJobStatusPending,
			"claimed_at": nil,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
