package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
	"github.com/meetai-dev/meetai-backend/pkg/jobcontext"
)

// HandlerFunc processes a claimed job. Step results persist across retries
// through the StepRunner, so handlers must route side effects through steps.
type HandlerFunc func(ctx context.Context, step *StepRunner, payload datatypes.JSONMap) error

// Runner polls for pending jobs and dispatches them to registered handlers
type Runner struct {
	jobRepo      repositories.ProcessingJobRepository
	logger       *zap.Logger
	workerCount  int
	pollInterval time.Duration

	handlers  map[string]HandlerFunc
	stopChan  chan struct{}
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.Mutex
}

// NewRunner creates a new job runner
func NewRunner(jobRepo repositories.ProcessingJobRepository, logger *zap.Logger, workerCount int, pollInterval time.Duration) *Runner {
	if workerCount <= 0 {
		workerCount = 1
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Runner{
		jobRepo:      jobRepo,
		logger:       logger,
		workerCount:  workerCount,
		pollInterval: pollInterval,
		handlers:     make(map[string]HandlerFunc),
	}
}

// Register binds a handler to an event name. Must be called before Start.
func (r *Runner) Register(name string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// Start launches worker goroutines
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return fmt.Errorf("job runner already running")
	}
	if len(r.handlers) == 0 {
		return fmt.Errorf("no handlers registered")
	}

	r.isRunning = true
	r.stopChan = make(chan struct{})

	if r.logger != nil {
		r.logger.Info("🚀 Starting job runner",
			zap.Int("worker_count", r.workerCount),
			zap.Duration("poll_interval", r.pollInterval),
		)
	}

	for i := 0; i < r.workerCount; i++ {
		r.wg.Add(1)
		go r.worker(ctx, i)
	}

	r.wg.Add(1)
	go r.stuckJobSweeper(ctx)

	return nil
}

// Stop gracefully stops all workers
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRunning {
		return fmt.Errorf("job runner not running")
	}

	if r.logger != nil {
		r.logger.Info("🛑 Stopping job runner...")
	}

	close(r.stopChan)
	r.wg.Wait()
	r.isRunning = false

	if r.logger != nil {
		r.logger.Info("✅ Job runner stopped")
	}
	return nil
}

func (r *Runner) handlerNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

func (r *Runner) worker(parentCtx context.Context, workerID int) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	if r.logger != nil {
		r.logger.Info("👷 Worker started", zap.Int("worker_id", workerID))
	}

	for {
		select {
		case <-r.stopChan:
			if r.logger != nil {
				r.logger.Info("👷 Worker stopping", zap.Int("worker_id", workerID))
			}
			return

		case <-ticker.C:
			// Drain available work before going back to sleep.
			for {
				job, err := r.jobRepo.ClaimNextPending(parentCtx, r.handlerNames())
				if err != nil {
					if r.logger != nil {
						r.logger.Error("❌ Failed to claim job",
							zap.Int("worker_id", workerID),
							zap.Error(err),
						)
					}
					break
				}
				if job == nil {
					break
				}
				r.runJob(parentCtx, workerID, job)
			}
		}
	}
}

// RunOne claims and runs a single pending job. Returns false when no job was
// available.
func (r *Runner) RunOne(ctx context.Context) (bool, error) {
	job, err := r.jobRepo.ClaimNextPending(ctx, r.handlerNames())
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	r.runJob(ctx, 0, job)
	return true, nil
}

func (r *Runner) runJob(parentCtx context.Context, workerID int, job *entities.ProcessingJob) {
	r.mu.Lock()
	handler := r.handlers[job.Name]
	r.mu.Unlock()

	if handler == nil {
		if r.logger != nil {
			r.logger.Error("❌ No handler for job",
				zap.String("job_id", job.ID.String()),
				zap.String("name", job.Name),
			)
		}
		_ = r.jobRepo.MarkFailed(parentCtx, job.ID, "no handler registered", false)
		return
	}

	if r.logger != nil {
		r.logger.Info("👷 Worker claimed job",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("name", job.Name),
			zap.Int("retry_count", job.RetryCount),
		)
	}

	jobCtx, cancel := jobcontext.JobBegin(parentCtx, job.ID, job.Name, workerID)
	defer cancel()

	step := newStepRunner(job, r.jobRepo, r.logger)
	err := handler(jobCtx, step, job.Payload)
	if err != nil {
		retryable := job.IsRetryable() && jobcontext.IsRetryableError(err)
		if r.logger != nil {
			r.logger.Error("❌ Job failed",
				zap.String("job_id", job.ID.String()),
				zap.String("name", job.Name),
				zap.Bool("will_retry", retryable),
				zap.Error(err),
			)
		}
		if markErr := r.jobRepo.MarkFailed(parentCtx, job.ID, err.Error(), retryable); markErr != nil && r.logger != nil {
			r.logger.Error("❌ Failed to mark job as failed", zap.Error(markErr))
		}
		return
	}

	if markErr := r.jobRepo.MarkCompleted(parentCtx, job.ID); markErr != nil && r.logger != nil {
		r.logger.Error("❌ Failed to mark job as completed", zap.Error(markErr))
		return
	}

	if r.logger != nil {
		meta := jobcontext.GetJobMetadata(jobCtx)
		r.logger.Info("✅ Job completed",
			zap.String("job_id", job.ID.String()),
			zap.String("name", job.Name),
			zap.Int("worker_id", meta.WorkerID),
			zap.Duration("duration", time.Since(meta.StartTime)),
		)
	}
}

// stuckJobSweeper returns jobs abandoned by crashed workers to pending
func (r *Runner) stuckJobSweeper(parentCtx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return

		case <-ticker.C:
			n, err := r.jobRepo.ResetStuck(parentCtx, 10*time.Minute)
			if err != nil {
				if r.logger != nil {
					r.logger.Error("❌ Failed to reset stuck jobs", zap.Error(err))
				}
				continue
			}
			if n > 0 && r.logger != nil {
				r.logger.Warn("🧹 Reset stuck jobs", zap.Int64("count", n))
			}
		}
	}
}
