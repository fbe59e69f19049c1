package agent

import "time"

// AgentResponse is the public shape of an agent
type AgentResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	AvatarURL    string    `json:"avatar_url"`
	MeetingCount int64     `json:"meeting_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
