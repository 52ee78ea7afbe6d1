package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/service"
	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

// HandleThemeInject handles POST /api/theme-inject
func HandleThemeInject(svc *service.ThemeService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.Inject(c.Request.Context())
		if err != nil {
			status := apperrors.HTTPStatus(err)
			logFailure(logger, c, "Theme inject failed", status, err)
			c.JSON(status, gin.H{"success": false, "errors": []string{err.Error()}})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// HandleThemeRevert handles POST /api/theme-revert-uninstall
func HandleThemeRevert(svc *service.ThemeService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.Revert(c.Request.Context())
		if err != nil {
			status := apperrors.HTTPStatus(err)
			logFailure(logger, c, "Theme revert failed", status, err)
			c.JSON(status, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// HandleListBackups handles GET /api/backups
func HandleListBackups(svc *service.ThemeService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		themeID, records, err := svc.Backups(c.Request.Context())
		if err != nil {
			status := apperrors.HTTPStatus(err)
			logFailure(logger, c, "Failed to list backups", status, err)
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"themeId": themeID,
			"backups": records,
		})
	}
}
