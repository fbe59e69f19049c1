package meetings

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/meetai-dev/meetai-backend/errors"
	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/external/stream"
	"github.com/meetai-dev/meetai-backend/internal/usecase/lifecycle"
	"github.com/meetai-dev/meetai-backend/pkg/avatar"
)

// Service defines the interface for meeting use cases
type Service interface {
	// CreateMeeting creates an upcoming meeting bound to one of the user's agents
	CreateMeeting(ctx context.Context, input CreateMeetingInput) (*entities.Meeting, error)

	// GetMeeting retrieves a meeting scoped to its owner
	GetMeeting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error)

	// ListMeetings retrieves meetings with filters
	ListMeetings(ctx context.Context, filters repositories.MeetingFilters) ([]*entities.Meeting, int64, error)

	// UpdateMeeting renames a meeting or rebinds its agent
	UpdateMeeting(ctx context.Context, input UpdateMeetingInput) (*entities.Meeting, error)

	// CancelMeeting cancels an upcoming meeting
	CancelMeeting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error)

	// DeleteMeeting removes a meeting owned by the user
	DeleteMeeting(ctx context.Context, meetingID, userID uuid.UUID) error

	// JoinToken issues a provider token the user's client joins calls with
	JoinToken(ctx context.Context, userID uuid.UUID) (string, error)
}

// MeetingService handles meeting business logic
type MeetingService struct {
	meetingRepo repositories.MeetingRepository
	agentRepo   repositories.AgentRepository
	videoClient stream.VideoClient
	chatClient  stream.ChatClient
}

var _ Service = (*MeetingService)(nil)

// NewMeetingService creates a new meeting service
func NewMeetingService(
	meetingRepo repositories.MeetingRepository,
	agentRepo repositories.AgentRepository,
	videoClient stream.VideoClient,
	chatClient stream.ChatClient,
) *MeetingService {
	return &MeetingService{
		meetingRepo: meetingRepo,
		agentRepo:   agentRepo,
		videoClient: videoClient,
		chatClient:  chatClient,
	}
}

// CreateMeetingInput represents input for creating a meeting
type CreateMeetingInput struct {
	UserID  uuid.UUID
	Name    string
	AgentID uuid.UUID
}

// UpdateMeetingInput represents input for updating a meeting
type UpdateMeetingInput struct {
	MeetingID uuid.UUID
	UserID    uuid.UUID
	Name      *string
	AgentID   *uuid.UUID
}

func (s *MeetingService) CreateMeeting(ctx context.Context, input CreateMeetingInput) (*entities.Meeting, error) {
	agent, err := s.agentRepo.FindByIDForUser(ctx, input.AgentID, input.UserID)
	if err != nil {
		return nil, apperrors.ErrQueryFailed(err)
	}
	if agent == nil {
		return nil, apperrors.ErrAgentNotFound(input.AgentID.String())
	}

	meeting := &entities.Meeting{
		ID:      uuid.New(),
		Name:    input.Name,
		UserID:  input.UserID,
		AgentID: input.AgentID,
		Status:  entities.MeetingStatusUpcoming,
	}

	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, apperrors.ErrQueryFailed(err)
	}

	// Register the agent's chat identity up front so its messages render with
	// a name and avatar the moment the post-meeting channel opens. Failures
	// are tolerated; the responder upserts again before replying.
	_ = s.chatClient.UpsertUser(ctx, stream.ChatUser{
		ID:       agent.ID.String(),
		Name:     agent.Name,
		ImageURL: avatar.GenerateURL(agent.Name, avatar.VariantOpenPeeps),
	})

	meeting.Agent = agent
	return meeting, nil
}

func (s *MeetingService) GetMeeting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByIDForUser(ctx, meetingID, userID)
	if err != nil {
		return nil, apperrors.ErrQueryFailed(err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound(meetingID.String())
	}
	return meeting, nil
}

func (s *MeetingService) ListMeetings(ctx context.Context, filters repositories.MeetingFilters) ([]*entities.Meeting, int64, error) {
	meetings, total, err := s.meetingRepo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.ErrQueryFailed(err)
	}
	return meetings, total, nil
}

func (s *MeetingService) UpdateMeeting(ctx context.Context, input UpdateMeetingInput) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByIDForUser(ctx, input.MeetingID, input.UserID)
	if err != nil {
		return nil, apperrors.ErrQueryFailed(err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound(input.MeetingID.String())
	}

	// Bindings only change before the call happens.
	if meeting.Status != entities.MeetingStatusUpcoming {
		return nil, apperrors.ErrMeetingInvalidState(meeting.ID.String(), string(meeting.Status))
	}

	if input.Name != nil {
		meeting.Name = *input.Name
	}
	if input.AgentID != nil {
		agent, err := s.agentRepo.FindByIDForUser(ctx, *input.AgentID, input.UserID)
		if err != nil {
			return nil, apperrors.ErrQueryFailed(err)
		}
		if agent == nil {
			return nil, apperrors.ErrAgentNotFound(input.AgentID.String())
		}
		meeting.AgentID = *input.AgentID
		meeting.Agent = agent
	}

	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return nil, apperrors.ErrQueryFailed(err)
	}
	return meeting, nil
}

func (s *MeetingService) CancelMeeting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByIDForUser(ctx, meetingID, userID)
	if err != nil {
		return nil, apperrors.ErrQueryFailed(err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound(meetingID.String())
	}

	if !lifecycle.CanTransition(meeting.Status, entities.MeetingStatusCancelled) {
		return nil, apperrors.ErrMeetingInvalidState(meeting.ID.String(), string(meeting.Status))
	}

	ok, err := s.meetingRepo.ApplyTransition(ctx, meetingID,
		lifecycle.AllowedSources(entities.MeetingStatusCancelled),
		entities.MeetingStatusCancelled,
		repositories.MeetingPatch{},
	)
	if err != nil {
		return nil, apperrors.ErrQueryFailed(err)
	}
	if !ok {
		// Lost the race against a call start event.
		return nil, apperrors.ErrMeetingInvalidState(meeting.ID.String(), string(meeting.Status))
	}

	meeting.Status = entities.MeetingStatusCancelled
	return meeting, nil
}

func (s *MeetingService) DeleteMeeting(ctx context.Context, meetingID, userID uuid.UUID) error {
	meeting, err := s.meetingRepo.FindByIDForUser(ctx, meetingID, userID)
	if err != nil {
		return apperrors.ErrQueryFailed(err)
	}
	if meeting == nil {
		return apperrors.ErrMeetingNotFound(meetingID.String())
	}

	// A meeting mid-call or mid-processing must finish its lifecycle first,
	// otherwise webhook and job updates would target a deleted row.
	if meeting.Status != entities.MeetingStatusUpcoming && !meeting.Status.IsTerminal() {
		return apperrors.ErrMeetingInvalidState(meeting.ID.String(), string(meeting.Status))
	}

	if err := s.meetingRepo.Delete(ctx, meetingID); err != nil {
		return apperrors.ErrQueryFailed(err)
	}
	return nil
}

func (s *MeetingService) JoinToken(_ context.Context, userID uuid.UUID) (string, error) {
	token, err := s.videoClient.UserToken(userID.String(), 24*time.Hour)
	if err != nil {
		return "", apperrors.ErrVideoIntegrationFailed(err)
	}
	return token, nil
}
