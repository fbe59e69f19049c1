package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetai-dev/meetai-backend/errors"
	authdto "github.com/meetai-dev/meetai-backend/internal/adapter/dto/auth"
	"github.com/meetai-dev/meetai-backend/internal/domain/repositories"
	"github.com/meetai-dev/meetai-backend/pkg/jwt"
)

// Auth handles token endpoints
type Auth struct {
	jwtManager *jwt.Manager
	userRepo   repositories.UserRepository
	logger     *zap.Logger
}

// NewAuth creates a new auth handler
func NewAuth(jwtManager *jwt.Manager, userRepo repositories.UserRepository, logger *zap.Logger) *Auth {
	return &Auth{
		jwtManager: jwtManager,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// Refresh handles POST /v1/auth/refresh. It exchanges a valid refresh token
// for a rotated access/refresh pair.
func (h *Auth) Refresh(c echo.Context) error {
	var req authdto.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	userID, err := h.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	user, err := h.userRepo.FindByID(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrQueryFailed(err))
	}
	if user == nil || !user.IsActive {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	accessToken, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInternal(err))
	}
	refreshToken, err := h.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInternal(err))
	}

	return HandleSuccess(h.logger, c, authdto.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
