package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
)

type agentRepository struct {
	db *gorm.DB
}

// NewAgentRepository creates a new agent repository
func NewAgentRepository(db *gorm.DB) repositories.AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) Create(ctx context.Context, agent *entities.Agent) error {
	return r.db.WithContext(ctx).Create(agent).Error
}

func (r *agentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Agent, error) {
	var agent entities.Agent
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.Agent, error) {
	var agent entities.Agent
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&agent).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Agent, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var agents []*entities.Agent
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

func (r *agentRepository) List(ctx context.Context, filters repositories.AgentFilters) ([]*entities.Agent, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Agent{})

	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filters.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var agents []*entities.Agent
	err := query.Order("created_at DESC").Find(&agents).Error
	if err != nil {
		return nil, 0, err
	}
	return agents, total, nil
}

func (r *agentRepository) Update(ctx context.Context, agent *entities.Agent) error {
	return r.db.WithContext(ctx).Save(agent).Error
}

func (r *agentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Agent{}).Error
}
