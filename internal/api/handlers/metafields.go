package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/service"
	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

// HandleMetafieldInit handles POST /api/metafield-init
func HandleMetafieldInit(svc *service.MetafieldService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		definitionID, err := svc.Init(c.Request.Context())
		if err != nil {
			status := apperrors.HTTPStatus(err)
			logFailure(logger, c, "Metafield definition init failed", status, err)
			if userErrs, ok := userErrorsOf(err); ok {
				c.JSON(status, gin.H{"success": false, "errors": userErrs})
				return
			}
			c.JSON(status, gin.H{
				"success": false,
				"errors":  []gin.H{{"message": err.Error()}},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"definitionId": definitionID,
		})
	}
}

// HandleMetafieldDefinitionStatus handles GET /api/metafield-init
func HandleMetafieldDefinitionStatus(svc *service.MetafieldService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		exists, err := svc.DefinitionExists(c.Request.Context())
		if err != nil {
			status := apperrors.HTTPStatus(err)
			logFailure(logger, c, "Metafield definition lookup failed", status, err)
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"exists": exists})
	}
}

// HandleSetMetafield handles POST /api/metafields
func HandleSetMetafield(svc *service.MetafieldService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.SetMetafieldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Invalid metafield request body", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"errors":  []gin.H{{"message": service.MissingMetafieldInput}},
			})
			return
		}

		metafields, err := svc.Set(c.Request.Context(), req.ProductID, req.IframeURL)
		if err != nil {
			status := apperrors.HTTPStatus(err)
			logFailure(logger, c, "Failed to set iframe URL", status, err)

			if userErrs, ok := userErrorsOf(err); ok {
				c.JSON(status, gin.H{"success": false, "errors": userErrs})
				return
			}
			if status == http.StatusBadRequest {
				c.JSON(status, gin.H{
					"success": false,
					"errors":  []gin.H{{"message": err.Error()}},
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"errors":  []gin.H{{"message": "Server error", "detail": err.Error()}},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"errors":     []interface{}{},
			"metafields": metafields,
		})
	}
}
