package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/service"
	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

// HandleListProducts handles GET /api/products
func HandleListProducts(svc *service.ProductService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.List(c.Request.Context())
		if err != nil {
			status := apperrors.HTTPStatus(err)
			logFailure(logger, c, "Failed to list products", status, err)
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, service.ProductList{Products: products})
	}
}

// HandleAccessScopes handles GET /api/access-scopes
func HandleAccessScopes(svc *service.AccessService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := svc.Check(c.Request.Context())
		if err != nil {
			status := apperrors.HTTPStatus(err)
			logFailure(logger, c, "Failed to check access scopes", status, err)
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":       report.OK(),
			"shop":     report.Shop,
			"granted":  report.Granted,
			"required": report.Required,
			"missing":  report.Missing,
		})
	}
}
