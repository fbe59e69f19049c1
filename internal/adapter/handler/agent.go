package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetai-dev/meetai-backend/errors"
	agentdto "github.com/meetai-dev/meetai-backend/internal/adapter/dto/agent"
	"github.com/meetai-dev/meetai-backend/internal/adapter/presenter"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/http/middleware"
	"github.com/meetai-dev/meetai-backend/internal/usecase/agents"
)

// Agent handles agent CRUD endpoints
type Agent struct {
	service agents.Service
	logger  *zap.Logger
}

// NewAgent creates a new agent handler
func NewAgent(service agents.Service, logger *zap.Logger) *Agent {
	return &Agent{
		service: service,
		logger:  logger,
	}
}

// Create handles POST /v1/agents
func (h *Agent) Create(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	var req agentdto.CreateAgentRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	agent, err := h.service.CreateAgent(c.Request().Context(), agents.CreateAgentInput{
		UserID:       userID,
		Name:         req.Name,
		Instructions: req.Instructions,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToAgentResponse(agent, 0))
}

// Get handles GET /v1/agents/:id
func (h *Agent) Get(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid agent id"))
	}

	agent, err := h.service.GetAgent(c.Request().Context(), agentID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	count, err := h.service.CountMeetings(c.Request().Context(), agentID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToAgentResponse(agent, count))
}

// List handles GET /v1/agents
func (h *Agent) List(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	var req agentdto.ListAgentsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid query parameters"))
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 10
	}

	list, total, err := h.service.ListAgents(c.Request().Context(), repositories.AgentFilters{
		UserID: &userID,
		Search: req.Search,
		Limit:  req.PageSize,
		Offset: (req.Page - 1) * req.PageSize,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	counts := make(map[string]int64, len(list))
	for _, a := range list {
		count, err := h.service.CountMeetings(c.Request().Context(), a.ID)
		if err != nil {
			return HandleError(h.logger, c, err)
		}
		counts[a.ID.String()] = count
	}

	return HandleSuccess(h.logger, c, presenter.ToAgentListResponse(list, counts, total, req.Page, req.PageSize))
}

// Update handles PATCH /v1/agents/:id
func (h *Agent) Update(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid agent id"))
	}

	var req agentdto.UpdateAgentRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	agent, err := h.service.UpdateAgent(c.Request().Context(), agents.UpdateAgentInput{
		AgentID:      agentID,
		UserID:       userID,
		Name:         req.Name,
		Instructions: req.Instructions,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToAgentResponse(agent, 0))
}

// Delete handles DELETE /v1/agents/:id
func (h *Agent) Delete(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid agent id"))
	}

	if err := h.service.DeleteAgent(c.Request().Context(), agentID, userID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}
