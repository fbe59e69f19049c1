package agent

// CreateAgentRequest is the payload for creating an agent
type CreateAgentRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=255"`
	Instructions string `json:"instructions" validate:"required,min=1"`
}

// UpdateAgentRequest is the payload for updating an agent
type UpdateAgentRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Instructions *string `json:"instructions,omitempty" validate:"omitempty,min=1"`
}

// ListAgentsRequest captures list query parameters
type ListAgentsRequest struct {
	Search   string `query:"search"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}
