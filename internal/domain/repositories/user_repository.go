package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
)

// UserRepository defines user data operations.
// Finders return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
}
