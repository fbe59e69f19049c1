package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
)

// MeetingFilters holds filtering options for listing meetings
type MeetingFilters struct {
	UserID  *uuid.UUID
	AgentID *uuid.UUID
	Status  *entities.MeetingStatus
	Search  string
	Limit   int
	Offset  int
}

// MeetingPatch carries the column values set alongside a status transition
type MeetingPatch map[string]interface{}

// MeetingRepository defines meeting data operations.
// Finders return (nil, nil) when no row matches.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *entities.Meeting) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.Meeting, error)
	FindByIDWithStatus(ctx context.Context, id uuid.UUID, status entities.MeetingStatus) (*entities.Meeting, error)
	List(ctx context.Context, filters MeetingFilters) ([]*entities.Meeting, int64, error)
	Update(ctx context.Context, meeting *entities.Meeting) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByAgentID(ctx context.Context, agentID uuid.UUID) (int64, error)

	// ApplyTransition conditionally moves a meeting to a new status. The
	// update only fires when the current status is in the allowed from-set,
	// so concurrent or redelivered events race safely on the WHERE clause.
	// Returns false when no row was updated.
	ApplyTransition(ctx context.Context, id uuid.UUID, from []entities.MeetingStatus, to entities.MeetingStatus, patch MeetingPatch) (bool, error)

	// SetTranscriptURL persists the transcript location; returns false when
	// the meeting does not exist.
	SetTranscriptURL(ctx context.Context, id uuid.UUID, url string) (bool, error)

	// SetRecordingURL persists the recording location; returns false when
	// the meeting does not exist.
	SetRecordingURL(ctx context.Context, id uuid.UUID, url string) (bool, error)
}
