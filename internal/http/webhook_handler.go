package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"domain-bot/internal/telegram"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler recibe updates de Telegram en modo webhook.
type WebhookHandler struct {
	logger *zap.Logger
	sink   telegram.Submitter
	secret string
}

// NewWebhookHandler crea el handler. Con secret vacio no se valida el header.
func NewWebhookHandler(logger *zap.Logger, sink telegram.Submitter, secret string) *WebhookHandler {
	return &WebhookHandler{logger: logger, sink: sink, secret: secret}
}

// Receive maneja POST /telegram/webhook.
func (h *WebhookHandler) Receive(c *gin.Context) {
	if h.secret != "" {
		got := c.GetHeader(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			h.logger.Warn("webhook secret mismatch", zap.String("client_ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Warn("invalid webhook update", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := telegram.Deliver(c.Request.Context(), h.sink, update); err != nil {
		h.logger.Error("enqueue update failed", zap.Int("update_id", update.UpdateID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "busy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
