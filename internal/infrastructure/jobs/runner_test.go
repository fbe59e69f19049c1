package jobs

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/datatypes"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
)

func TestRunOne_CompletesJob(t *testing.T) {
	repo := newFakeJobRepo()
	job := entities.NewProcessingJob("test/event", datatypes.JSONMap{"k": "v"})
	repo.Create(context.Background(), job)

	runner := NewRunner(repo, nil, 1, 0)
	var gotPayload datatypes.JSONMap
	runner.Register("test/event", func(_ context.Context, _ *StepRunner, payload datatypes.JSONMap) error {
		gotPayload = payload
		return nil
	})

	ran, err := runner.RunOne(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !ran {
		t.Fatal("expected a job to run")
	}
	if gotPayload["k"] != "v" {
		t.Fatalf("unexpected payload %v", gotPayload)
	}

	stored, _ := repo.FindByID(context.Background(), job.ID)
	if stored.Status != entities.ProcessingJobStatusCompleted {
		t.Fatalf("expected completed status, got %s", stored.Status)
	}
	if stored.FinishedAt == nil {
		t.Fatal("finished_at must be set")
	}
}

func TestRunOne_NoJobAvailable(t *testing.T) {
	runner := NewRunner(newFakeJobRepo(), nil, 1, 0)
	runner.Register("test/event", func(_ context.Context, _ *StepRunner, _ datatypes.JSONMap) error {
		return nil
	})

	ran, err := runner.RunOne(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if ran {
		t.Fatal("no job should have run")
	}
}

func TestRunOne_RetryableFailureRequeues(t *testing.T) {
	repo := newFakeJobRepo()
	job := entities.NewProcessingJob("test/event", datatypes.JSONMap{})
	repo.Create(context.Background(), job)

	runner := NewRunner(repo, nil, 1, 0)
	runner.Register("test/event", func(_ context.Context, _ *StepRunner, _ datatypes.JSONMap) error {
		return fmt.Errorf("connection refused")
	})

	if _, err := runner.RunOne(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), job.ID)
	if stored.Status != entities.ProcessingJobStatusPending {
		t.Fatalf("retryable failure must requeue, got %s", stored.Status)
	}
	if stored.RetryCount != 1 {
		t.Fatalf("expected retry count 1, got %d", stored.RetryCount)
	}
	if stored.LastError == nil || *stored.LastError != "connection refused" {
		t.Fatal("last error must be recorded")
	}
}

func TestRunOne_NonRetryableFailureStaysFailed(t *testing.T) {
	repo := newFakeJobRepo()
	job := entities.NewProcessingJob("test/event", datatypes.JSONMap{})
	repo.Create(context.Background(), job)

	runner := NewRunner(repo, nil, 1, 0)
	runner.Register("test/event", func(_ context.Context, _ *StepRunner, _ datatypes.JSONMap) error {
		return fmt.Errorf("invalid meeting_id in payload")
	})

	if _, err := runner.RunOne(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), job.ID)
	if stored.Status != entities.ProcessingJobStatusFailed {
		t.Fatalf("non-retryable failure must fail, got %s", stored.Status)
	}
}

func TestRunOne_ExhaustedRetriesFail(t *testing.T) {
	repo := newFakeJobRepo()
	job := entities.NewProcessingJob("test/event", datatypes.JSONMap{})
	job.RetryCount = job.MaxRetries
	repo.Create(context.Background(), job)

	runner := NewRunner(repo, nil, 1, 0)
	runner.Register("test/event", func(_ context.Context, _ *StepRunner, _ datatypes.JSONMap) error {
		return fmt.Errorf("connection refused")
	})

	if _, err := runner.RunOne(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), job.ID)
	if stored.Status != entities.ProcessingJobStatusFailed {
		t.Fatalf("exhausted job must fail, got %s", stored.Status)
	}
}

func TestStart_RequiresHandlers(t *testing.T) {
	runner := NewRunner(newFakeJobRepo(), nil, 1, 0)
	if err := runner.Start(context.Background()); err == nil {
		t.Fatal("start without handlers must fail")
	}
}
