package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetai-dev/meetai-backend/errors"
	"github.com/meetai-dev/meetai-backend/internal/usecase/chat"
	"github.com/meetai-dev/meetai-backend/internal/usecase/lifecycle"
	"github.com/meetai-dev/meetai-backend/pkg/ai"
)

// Webhook receives call and chat events from the provider. Every event is
// authenticated with an HMAC signature over the raw body before any decode.
type Webhook struct {
	lifecycleService lifecycle.Service
	responder        *chat.Responder
	signingSecret    string
	logger           *zap.Logger
}

// NewWebhook creates a new webhook handler
func NewWebhook(lifecycleService lifecycle.Service, responder *chat.Responder, signingSecret string, logger *zap.Logger) *Webhook {
	return &Webhook{
		lifecycleService: lifecycleService,
		responder:        responder,
		signingSecret:    signingSecret,
		logger:           logger,
	}
}

// Handle processes one webhook delivery
func (h *Webhook) Handle(c echo.Context) error {
	signature := c.Request().Header.Get("x-signature")
	apiKey := c.Request().Header.Get("x-api-key")
	if signature == "" || apiKey == "" {
		return HandleError(h.logger, c, apperrors.ErrMissingWebhookHeaders())
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload(err))
	}

	// The signature covers the exact bytes on the wire, so verification has
	// to happen before any parsing or re-encoding.
	if !ai.VerifyHMAC(h.signingSecret, body, signature) {
		return HandleError(h.logger, c, apperrors.ErrInvalidSignature())
	}

	event, err := lifecycle.ParseEvent(body)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if h.logger != nil {
		h.logger.Info("📥 Webhook received", zap.String("type", string(event.Type())))
	}

	if msg, ok := event.(lifecycle.MessageNewEvent); ok {
		result, err := h.responder.Respond(c.Request().Context(), chat.Message{
			MessageID: msg.MessageID,
			UserID:    msg.UserID,
			ChannelID: msg.ChannelID,
			Text:      msg.Text,
		})
		if err != nil {
			return HandleError(h.logger, c, err)
		}
		status := "ok"
		if result != chat.ResultReplied {
			status = string(result)
		}
		return c.JSON(http.StatusOK, map[string]string{"status": status})
	}

	if err := h.lifecycleService.HandleEvent(c.Request().Context(), event); err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
