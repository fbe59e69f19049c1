package entities

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the system. Authentication is handled by an
// external identity layer; the core only reads users for ownership checks
// and transcript speaker resolution.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	AvatarURL *string   `json:"avatar_url,omitempty" gorm:"type:varchar(500)"`
	IsActive  bool      `json:"is_active" gorm:"default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
