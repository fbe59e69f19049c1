package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
)

// StepRunner executes named steps with durable checkpoints. A step that
// already has a checkpoint from a previous attempt is skipped and its stored
// result returned, so completed side effects never run twice.
type StepRunner struct {
	job         *entities.ProcessingJob
	jobRepo     repositories.ProcessingJobRepository
	logger      *zap.Logger
	checkpoints datatypes.JSONMap
}

func newStepRunner(job *entities.ProcessingJob, jobRepo repositories.ProcessingJobRepository, logger *zap.Logger) *StepRunner {
	checkpoints := job.Checkpoints
	if checkpoints == nil {
		checkpoints = datatypes.JSONMap{}
	}
	return &StepRunner{
		job:         job,
		jobRepo:     jobRepo,
		logger:      logger,
		checkpoints: checkpoints,
	}
}

// Run executes the named step unless a checkpoint exists for it. The step
// result is decoded into out when out is non-nil.
func (s *StepRunner) Run(ctx context.Context, name string, fn func(ctx context.Context) (interface{}, error), out interface{}) error {
	if stored, ok := s.checkpoints[name]; ok {
		if s.logger != nil {
			s.logger.Info("⏭️ Step already completed, using checkpoint",
				zap.String("job_id", s.job.ID.String()),
				zap.String("step", name),
			)
		}
		return decodeStepResult(stored, out)
	}

	var result interface{}
	stepFn := func() error {
		value, err := fn(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(stepFn, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("step %s failed: %w", name, err)
	}

	// Round-trip through JSON so the in-memory value matches what a retried
	// attempt would read back from the checkpoint column.
	encoded, err := encodeStepResult(result)
	if err != nil {
		return fmt.Errorf("step %s result not serializable: %w", name, err)
	}

	s.checkpoints[name] = encoded
	if err := s.jobRepo.UpdateCheckpoints(ctx, s.job.ID, s.checkpoints); err != nil {
		return fmt.Errorf("failed to persist checkpoint for step %s: %w", name, err)
	}

	return decodeStepResult(encoded, out)
}

func encodeStepResult(value interface{}) (interface{}, error) {
	if value == nil {
		return true, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var encoded interface{}
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, err
	}
	return encoded, nil
}

func decodeStepResult(stored interface{}, out interface{}) error {
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return nil
}
