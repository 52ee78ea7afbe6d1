package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/config"
	"github.com/Muneebkh2/shopify-iframe-app/internal/service"
	"github.com/Muneebkh2/shopify-iframe-app/internal/shopify"
)

// maxWebhookBody caps how much of a webhook body is read.
const maxWebhookBody = 1 << 20

// HandleWebhook handles POST /webhooks.
// The signature is checked against the raw body before anything else runs.
func HandleWebhook(cfg *config.Config, svc *service.WebhookService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := strings.TrimSpace(cfg.App.APISecret)
		if secret == "" {
			logger.Error("Webhook received but SHOPIFY_API_SECRET is not set")
			c.String(http.StatusInternalServerError, "Internal Server Error")
			return
		}

		// Read raw body (Shopify HMAC is computed over raw bytes)
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.String(http.StatusBadRequest, "failed to read body")
			return
		}

		if !shopify.VerifyWebhookHMAC(secret, body, c.GetHeader("X-Shopify-Hmac-Sha256")) {
			logger.Warn("Webhook signature rejected",
				zap.String("topic", c.GetHeader("X-Shopify-Topic")),
				zap.String("shop", c.GetHeader("X-Shopify-Shop-Domain")),
			)
			c.String(http.StatusUnauthorized, "Unauthorized")
			return
		}

		ev := service.WebhookEvent{
			ID:      c.GetHeader("X-Shopify-Webhook-Id"),
			Topic:   c.GetHeader("X-Shopify-Topic"),
			Shop:    c.GetHeader("X-Shopify-Shop-Domain"),
			Payload: body,
		}
		logger.Info("Received webhook", zap.String("topic", ev.Topic), zap.String("shop", ev.Shop))

		if _, err := svc.Dispatch(c.Request.Context(), ev); err != nil {
			var unhandled *service.ErrUnhandledTopic
			if errors.As(err, &unhandled) {
				logger.Info("Unhandled webhook topic", zap.String("topic", ev.Topic))
				c.String(http.StatusNotFound, unhandled.Error())
				return
			}
			logger.Error("Webhook processing error", zap.String("topic", ev.Topic), zap.Error(err))
			c.String(http.StatusInternalServerError, "Internal Server Error")
			return
		}

		c.String(http.StatusOK, "OK")
	}
}
