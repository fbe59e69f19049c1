package entities

import (
	"time"

	"github.com/google/uuid"
)

// Agent represents a user-configured AI persona with behavioral instructions.
// Agents join live calls as realtime voice participants and answer questions
// in the post-meeting chat channel.
type Agent struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	User         *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Instructions string    `json:"instructions" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Agent
func (Agent) TableName() string {
	return "agents"
}
