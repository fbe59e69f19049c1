package meeting

// CreateMeetingRequest is the payload for creating a meeting
type CreateMeetingRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	AgentID string `json:"agent_id" validate:"required,uuid"`
}

// UpdateMeetingRequest is the payload for updating a meeting
type UpdateMeetingRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	AgentID *string `json:"agent_id,omitempty" validate:"omitempty,uuid"`
}

// ListMeetingsRequest captures list query parameters
type ListMeetingsRequest struct {
	Search   string `query:"search"`
	Status   string `query:"status"`
	AgentID  string `query:"agent_id"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}
