package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetai-dev/meetai-backend/errors"
	meetingdto "github.com/meetai-dev/meetai-backend/internal/adapter/dto/meeting"
	"github.com/meetai-dev/meetai-backend/internal/adapter/presenter"
	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/http/middleware"
	"github.com/meetai-dev/meetai-backend/internal/usecase/meetings"
)

// Meeting handles meeting CRUD endpoints
type Meeting struct {
	service meetings.Service
	logger  *zap.Logger
}

// NewMeeting creates a new meeting handler
func NewMeeting(service meetings.Service, logger *zap.Logger) *Meeting {
	return &Meeting{
		service: service,
		logger:  logger,
	}
}

// Create handles POST /v1/meetings
func (h *Meeting) Create(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	var req meetingdto.CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	agentID, err := uuid.Parse(req.AgentID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid agent id"))
	}

	meeting, err := h.service.CreateMeeting(c.Request().Context(), meetings.CreateMeetingInput{
		UserID:  userID,
		Name:    req.Name,
		AgentID: agentID,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(meeting))
}

// Get handles GET /v1/meetings/:id
func (h *Meeting) Get(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid meeting id"))
	}

	meeting, err := h.service.GetMeeting(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(meeting))
}

// List handles GET /v1/meetings
func (h *Meeting) List(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	var req meetingdto.ListMeetingsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid query parameters"))
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 10
	}

	filters := repositories.MeetingFilters{
		UserID: &userID,
		Search: req.Search,
		Limit:  req.PageSize,
		Offset: (req.Page - 1) * req.PageSize,
	}
	if req.Status != "" {
		status := entities.MeetingStatus(req.Status)
		filters.Status = &status
	}
	if req.AgentID != "" {
		agentID, err := uuid.Parse(req.AgentID)
		if err != nil {
			return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid agent id"))
		}
		filters.AgentID = &agentID
	}

	list, total, err := h.service.ListMeetings(c.Request().Context(), filters)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingListResponse(list, total, req.Page, req.PageSize))
}

// Update handles PATCH /v1/meetings/:id
func (h *Meeting) Update(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid meeting id"))
	}

	var req meetingdto.UpdateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	input := meetings.UpdateMeetingInput{
		MeetingID: meetingID,
		UserID:    userID,
		Name:      req.Name,
	}
	if req.AgentID != nil {
		agentID, err := uuid.Parse(*req.AgentID)
		if err != nil {
			return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid agent id"))
		}
		input.AgentID = &agentID
	}

	meeting, err := h.service.UpdateMeeting(c.Request().Context(), input)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(meeting))
}

// Cancel handles POST /v1/meetings/:id/cancel
func (h *Meeting) Cancel(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid meeting id"))
	}

	meeting, err := h.service.CancelMeeting(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(meeting))
}

// Delete handles DELETE /v1/meetings/:id
func (h *Meeting) Delete(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid meeting id"))
	}

	if err := h.service.DeleteMeeting(c.Request().Context(), meetingID, userID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}

// JoinToken handles POST /v1/meetings/token
func (h *Meeting) JoinToken(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	token, err := h.service.JoinToken(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, meetingdto.JoinTokenResponse{Token: token})
}
