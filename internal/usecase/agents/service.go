package agents

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/meetai-dev/meetai-backend/errors"
	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
)

// Service defines the interface for agent use cases
type Service interface {
	// CreateAgent creates a new agent owned by the user
	CreateAgent(ctx context.Context, input CreateAgentInput) (*entities.Agent, error)

	// GetAgent retrieves an agent scoped to its owner
	GetAgent(ctx context.Context, agentID, userID uuid.UUID) (*entities.Agent, error)

	// ListAgents retrieves agents with filters
	ListAgents(ctx context.Context, filters repositories.AgentFilters) ([]*entities.Agent, int64, error)

	// UpdateAgent updates an agent's name or instructions
	UpdateAgent(ctx context.Context, input UpdateAgentInput) (*entities.Agent, error)

	// DeleteAgent removes an agent owned by the user
	DeleteAgent(ctx context.Context, agentID, userID uuid.UUID) error

	// CountMeetings returns how many meetings reference the agent
	CountMeetings(ctx context.Context, agentID uuid.UUID) (int64, error)
}

// AgentService handles agent business logic
type AgentService struct {
	agentRepo   repositories.AgentRepository
	meetingRepo repositories.MeetingRepository
}

var _ Service = (*AgentService)(nil)

// NewAgentService creates a new agent service
func NewAgentService(agentRepo repositories.AgentRepository, meetingRepo repositories.MeetingRepository) *AgentService {
	return &AgentService{
		agentRepo:   agentRepo,
		meetingRepo: meetingRepo,
	}
}

// CreateAgentInput represents input for creating an agent
type CreateAgentInput struct {
	UserID       uuid.UUID
	Name         string
	Instructions string
}

// UpdateAgentInput represents input for updating an agent
type UpdateAgentInput struct {
	AgentID      uuid.UUID
	UserID       uuid.UUID
	Name         *string
	Instructions *string
}

func (s *AgentService) CreateAgent(ctx context.Context, input CreateAgentInput) (*entities.Agent, error) {
	agent := &entities.Agent{
		ID:           uuid.New(),
		Name:         input.Name,
		UserID:       input.UserID,
		Instructions: input.Instructions,
	}

	if err := s.agentRepo.Create(ctx, agent); err != nil {
		return nil, apperrors.ErrQueryFailed(err)
	}
	return agent, nil
}

func (s *AgentService) GetAgent(ctx context.Context, agentID, userID uuid.UUID) (*entities.Agent, error) {
	agent, err := s.agentRepo.FindByIDForUser(ctx, agentID, userID)
	if err != nil {
		return nil, apperrors.ErrQueryFailed(err)
	}
	if agent == nil {
		return nil, apperrors.ErrAgentNotFound(agentID.String())
	}
	return agent, nil
}

func (s *AgentService) ListAgents(ctx context.Context, filters repositories.AgentFilters) ([]*entities.Agent, int64, error) {
	agents, total, err := s.agentRepo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.ErrQueryFailed(err)
	}
	return agents, total, nil
}

func (s *AgentService) UpdateAgent(ctx context.Context, input UpdateAgentInput) (*entities.Agent, error) {
	agent, err := s.agentRepo.FindByIDForUser(ctx, input.AgentID, input.UserID)
	if err != nil {
		return nil, apperrors.ErrQueryFailed(err)
	}
	if agent == nil {
		return nil, apperrors.ErrAgentNotFound(input.AgentID.String())
	}

	if input.Name != nil {
		agent.Name = *input.Name
	}
	if input.Instructions != nil {
		agent.Instructions = *input.Instructions
	}

	if err := s.agentRepo.Update(ctx, agent); err != nil {
		return nil, apperrors.ErrQueryFailed(err)
	}
	return agent, nil
}

func (s *AgentService) DeleteAgent(ctx context.Context, agentID, userID uuid.UUID) error {
	agent, err := s.agentRepo.FindByIDForUser(ctx, agentID, userID)
	if err != nil {
		return apperrors.ErrQueryFailed(err)
	}
	if agent == nil {
		return apperrors.ErrAgentNotFound(agentID.String())
	}

	if err := s.agentRepo.Delete(ctx, agentID); err != nil {
		return apperrors.ErrQueryFailed(err)
	}
	return nil
}

func (s *AgentService) CountMeetings(ctx context.Context, agentID uuid.UUID) (int64, error) {
	count, err := s.meetingRepo.CountByAgentID(ctx, agentID)
	if err != nil {
		return 0, apperrors.ErrQueryFailed(err)
	}
	return count, nil
}
