package meeting

import "time"

// AgentSummary is the nested agent shape inside a meeting response
type AgentSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// MeetingResponse is the public shape of a meeting
type MeetingResponse struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Status          string        `json:"status"`
	Agent           *AgentSummary `json:"agent,omitempty"`
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	EndedAt         *time.Time    `json:"ended_at,omitempty"`
	DurationSeconds int64         `json:"duration_seconds"`
	TranscriptURL   *string       `json:"transcript_url,omitempty"`
	RecordingURL    *string       `json:"recording_url,omitempty"`
	Summary         *string       `json:"summary,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// JoinTokenResponse carries the provider token for joining calls
type JoinTokenResponse struct {
	Token string `json:"token"`
}
