package presenter

import (
	"github.com/meetai-dev/meetai-backend/internal/adapter/dto/common"
	meetingdto "github.com/meetai-dev/meetai-backend/internal/adapter/dto/meeting"
	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/pkg/avatar"
)

// ToMeetingResponse converts a Meeting entity to MeetingResponse DTO
func ToMeetingResponse(m *entities.Meeting) *meetingdto.MeetingResponse {
	if m == nil {
		return nil
	}

	response := &meetingdto.MeetingResponse{
		ID:              m.ID.String(),
		Name:            m.Name,
		Status:          string(m.Status),
		StartedAt:       m.StartedAt,
		EndedAt:         m.EndedAt,
		DurationSeconds: int64(m.Duration().Seconds()),
		TranscriptURL:   m.TranscriptURL,
		RecordingURL:    m.RecordingURL,
		Summary:         m.Summary,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}

	if m.Agent != nil {
		response.Agent = &meetingdto.AgentSummary{
			ID:        m.Agent.ID.String(),
			Name:      m.Agent.Name,
			AvatarURL: avatar.GenerateURL(m.Agent.Name, avatar.VariantBotttsNeutral),
		}
	}

	return response
}

// ToMeetingListResponse converts meetings to a paginated list response
func ToMeetingListResponse(meetings []*entities.Meeting, total int64, page, pageSize int) *common.ListResponse {
	responses := make([]*meetingdto.MeetingResponse, len(meetings))
	for i, m := range meetings {
		responses[i] = ToMeetingResponse(m)
	}

	return &common.ListResponse{
		Data:       responses,
		Pagination: common.NewPagination(page, pageSize, total),
	}
}
