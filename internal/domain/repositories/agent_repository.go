package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
)

// AgentFilters holds filtering options for listing agents
type AgentFilters struct {
	UserID *uuid.UUID
	Search string
	Limit  int
	Offset int
}

// AgentRepository defines agent data operations.
// Finders return (nil, nil) when no row matches.
type AgentRepository interface {
	Create(ctx context.Context, agent *entities.Agent) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Agent, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.Agent, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Agent, error)
	List(ctx context.Context, filters AgentFilters) ([]*entities.Agent, int64, error)
	Update(ctx context.Context, agent *entities.Agent) error
	Delete(ctx context.Context, id uuid.UUID) error
}
