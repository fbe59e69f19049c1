package presenter

import (
	agentdto "github.com/meetai-dev/meetai-backend/internal/adapter/dto/agent"
	"github.com/meetai-dev/meetai-backend/internal/adapter/dto/common"
	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/pkg/avatar"
)

// ToAgentResponse converts an Agent entity to AgentResponse DTO
func ToAgentResponse(a *entities.Agent, meetingCount int64) *agentdto.AgentResponse {
	if a == nil {
		return nil
	}

	return &agentdto.AgentResponse{
		ID:           a.ID.String(),
		Name:         a.Name,
		Instructions: a.Instructions,
		AvatarURL:    avatar.GenerateURL(a.Name, avatar.VariantBotttsNeutral),
		MeetingCount: meetingCount,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ToAgentListResponse converts agents plus per-agent meeting counts to a
// paginated list response
func ToAgentListResponse(agents []*entities.Agent, counts map[string]int64, total int64, page, pageSize int) *common.ListResponse {
	responses := make([]*agentdto.AgentResponse, len(agents))
	for i, a := range agents {
		responses[i] = ToAgentResponse(a, counts[a.ID.String()])
	}

	return &common.ListResponse{
		Data:       responses,
		Pagination: common.NewPagination(page, pageSize, total),
	}
}
