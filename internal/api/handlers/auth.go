package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/config"
	"github.com/Muneebkh2/shopify-iframe-app/internal/service"
	"github.com/Muneebkh2/shopify-iframe-app/internal/shopify"
	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

const stateCookie = "shopify_oauth_state"

// HandleAuthBegin handles GET /auth?shop=name.myshopify.com
func HandleAuthBegin(cfg *config.Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := config.NormalizeShopDomain(c.Query("shop"))
		if !shopify.IsValidShopDomain(shop) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing shop parameter"})
			return
		}
		if cfg.App.APIKey == "" || cfg.App.AppURL == "" {
			logger.Error("OAuth requested but SHOPIFY_API_KEY or SHOPIFY_APP_URL is not set")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "app is not configured for OAuth"})
			return
		}

		state := uuid.New().String()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(stateCookie, state, 600, "/auth", "", cfg.Environment == "production", true)

		redirect := shopify.AuthorizeURL(shop, cfg.App.APIKey, cfg.App.Scopes, cfg.App.AppURL+"/auth/callback", state)
		c.Redirect(http.StatusFound, redirect)
	}
}

// HandleAuthCallback handles GET /auth/callback
func HandleAuthCallback(cfg *config.Config, install *service.InstallService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()

		if !shopify.VerifyQueryHMAC(q, cfg.App.APISecret) {
			logger.Warn("OAuth callback with invalid hmac", zap.String("shop", q.Get("shop")))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid hmac"})
			return
		}

		state, err := c.Cookie(stateCookie)
		if err != nil || state == "" || state != q.Get("state") {
			logger.Warn("OAuth callback with mismatched state", zap.String("shop", q.Get("shop")))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid state"})
			return
		}
		c.SetCookie(stateCookie, "", -1, "/auth", "", cfg.Environment == "production", true)

		code := q.Get("code")
		if code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
			return
		}

		session, err := install.Complete(c.Request.Context(), config.NormalizeShopDomain(q.Get("shop")), code)
		if err != nil {
			status := apperrors.HTTPStatus(err)
			logFailure(logger, c, "OAuth install failed", status, err)
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.Redirect(http.StatusFound, "/?shop="+session.Shop)
	}
}
