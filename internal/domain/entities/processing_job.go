package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProcessingJobStatus represents the status of a background processing job
type ProcessingJobStatus string

const (
	ProcessingJobStatusPending   ProcessingJobStatus = "pending"
	ProcessingJobStatusRunning   ProcessingJobStatus = "running"
	ProcessingJobStatusCompleted ProcessingJobStatus = "completed"
	ProcessingJobStatusFailed    ProcessingJobStatus = "failed"
)

// ProcessingJob is a durable record of a background job event. Jobs are
// executed at-least-once by the runner; completed step results are stored
// in Checkpoints so a retried run never re-executes a finished step.
type ProcessingJob struct {
	ID          uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string              `json:"name" gorm:"type:varchar(100);not null;index"`
	Payload     datatypes.JSONMap   `json:"payload" gorm:"type:jsonb;default:'{}'"`
	Status      ProcessingJobStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Checkpoints datatypes.JSONMap   `json:"checkpoints" gorm:"type:jsonb;default:'{}'"`
	RetryCount  int                 `json:"retry_count" gorm:"type:integer;default:0"`
	MaxRetries  int                 `json:"max_retries" gorm:"type:integer;default:3"`
	LastError   *string             `json:"last_error,omitempty" gorm:"type:text"`
	ClaimedAt   *time.Time          `json:"claimed_at,omitempty"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ProcessingJob) TableName() string {
	return "processing_jobs"
}

// NewProcessingJob creates a pending job for the named event
func NewProcessingJob(name string, payload map[string]interface{}) *ProcessingJob {
	return &ProcessingJob{
		ID:          uuid.New(),
		Name:        name,
		Payload:     payload,
		Status:      ProcessingJobStatusPending,
		Checkpoints: datatypes.JSONMap{},
		RetryCount:  0,
		MaxRetries:  3,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// IsRetryable checks if the job can be re-queued after a failure
func (j *ProcessingJob) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries
}
