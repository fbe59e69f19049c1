package entities

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatus represents the lifecycle status of a meeting
type MeetingStatus string

const (
	MeetingStatusUpcoming   MeetingStatus = "upcoming"
	MeetingStatusActive     MeetingStatus = "active"
	MeetingStatusProcessing MeetingStatus = "processing"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

// IsTerminal reports whether no further lifecycle transitions are possible.
func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingStatusCompleted || s == MeetingStatusCancelled
}

// Meeting represents a scheduled video session between a user and an AI agent.
// The meeting id doubles as the provider call id and the chat channel id.
type Meeting struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name          string        `json:"name" gorm:"type:varchar(255);not null"`
	UserID        uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	User          *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	AgentID       uuid.UUID     `json:"agent_id" gorm:"type:uuid;not null;index"`
	Agent         *Agent        `json:"agent,omitempty" gorm:"foreignKey:AgentID"`
	Status        MeetingStatus `json:"status" gorm:"type:varchar(20);not null;default:'upcoming';index"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	EndedAt       *time.Time    `json:"ended_at,omitempty"`
	TranscriptURL *string       `json:"transcript_url,omitempty" gorm:"type:text"`
	RecordingURL  *string       `json:"recording_url,omitempty" gorm:"type:text"`
	Summary       *string       `json:"summary,omitempty" gorm:"type:text"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Meeting
func (Meeting) TableName() string {
	return "meetings"
}

// Duration returns the elapsed call time, or zero when the meeting
// has not both started and ended.
func (m *Meeting) Duration() time.Duration {
	if m.StartedAt == nil || m.EndedAt == nil {
		return 0
	}
	return m.EndedAt.Sub(*m.StartedAt)
}

// IsCompleted checks if the meeting has finished processing
func (m *Meeting) IsCompleted() bool {
	return m.Status == MeetingStatusCompleted
}
