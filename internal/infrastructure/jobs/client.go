package jobs

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
)

// Event is a named unit of background work
type Event struct {
	Name string
	Data map[string]interface{}
}

// Client enqueues events for background processing
type Client interface {
	Send(ctx context.Context, event Event) error
}

type dbClient struct {
	jobRepo repositories.ProcessingJobRepository
	logger  *zap.Logger
}

// NewClient creates a client that persists events as processing jobs
func NewClient(jobRepo repositories.ProcessingJobRepository, logger *zap.Logger) Client {
	return &dbClient{
		jobRepo: jobRepo,
		logger:  logger,
	}
}

func (c *dbClient) Send(ctx context.Context, event Event) error {
	if event.Name == "" {
		return fmt.Errorf("event name is required")
	}

	job := entities.NewProcessingJob(event.Name, datatypes.JSONMap(event.Data))
	if err := c.jobRepo.Create(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue event %s: %w", event.Name, err)
	}

	if c.logger != nil {
		c.logger.Info("📨 Event enqueued",
			zap.String("event", event.Name),
			zap.String("job_id", job.ID.String()),
		)
	}
	return nil
}

// MockClient records sent events for tests
type MockClient struct {
	mu      sync.Mutex
	Sent    []Event
	SendErr error
}

func (m *MockClient) Send(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, event)
	return nil
}
