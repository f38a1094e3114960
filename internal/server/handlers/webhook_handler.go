package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/household/internal/domain/models"
	service "github.com/mamadbah2/household/internal/service/whatsapp"
)

// WebhookHandler handles the WhatsApp command channel.
type WebhookHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(svc service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// Verify answers the subscription challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	resp, err := h.svc.VerifyWebhookToken(
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, resp)
}

// Receive applies the commands carried by a callback. Processing errors are
// logged but acknowledged so the platform does not redeliver the batch.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("failed processing webhook", zap.Error(err))
	}

	c.Status(http.StatusOK)
}

// SendMessage pushes a manual notification to one recipient.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		if statusFor(err) == http.StatusServiceUnavailable {
			respondError(c, h.logger, err)
			return
		}
		h.logger.Error("failed sending outbound", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}

	c.Status(http.StatusAccepted)
}
