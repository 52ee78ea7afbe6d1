package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/api/handlers"
	"github.com/Muneebkh2/shopify-iframe-app/internal/api/middleware"
	"github.com/Muneebkh2/shopify-iframe-app/internal/backup"
	"github.com/Muneebkh2/shopify-iframe-app/internal/config"
	"github.com/Muneebkh2/shopify-iframe-app/internal/repository"
	"github.com/Muneebkh2/shopify-iframe-app/internal/service"
	"github.com/Muneebkh2/shopify-iframe-app/internal/shopify"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, backups *backup.Store, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	client := shopify.NewClient(cfg.Shopify, logger)
	metafields := service.NewMetafieldService(client, repos, logger)
	products := service.NewProductService(client, repos, logger)
	theme := service.NewThemeService(cfg, client, backups, logger)
	webhooks := service.NewWebhookService(repos, logger)
	install := service.NewInstallService(cfg.App, client, repos, logger)
	access := service.NewAccessService(cfg.App, client, repos, logger)

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Shopify Iframe URL app",
			"shop":    c.Query("shop"),
			"endpoints": []string{
				"GET /health",
				"GET /auth?shop=",
				"POST /webhooks",
				"GET /api/metafield-init",
				"POST /api/metafield-init",
				"GET /api/products",
				"POST /api/metafields",
				"POST /api/theme-inject",
				"POST /api/theme-revert-uninstall",
				"GET /api/backups",
				"GET /api/access-scopes",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// OAuth install
	router.GET("/auth", handlers.HandleAuthBegin(cfg, logger))
	router.GET("/auth/callback", handlers.HandleAuthCallback(cfg, install, logger))

	// Shopify webhooks (all topics share one callback)
	router.POST("/webhooks", handlers.HandleWebhook(cfg, webhooks, logger))

	adminRoutes := router.Group("/api")
	adminRoutes.Use(middleware.AdminAuthMiddleware(cfg.API.AdminKeyHash, logger))
	{
		adminRoutes.GET("/metafield-init", handlers.HandleMetafieldDefinitionStatus(metafields, logger))
		adminRoutes.POST("/metafield-init", handlers.HandleMetafieldInit(metafields, logger))
		adminRoutes.GET("/products", handlers.HandleListProducts(products, logger))
		adminRoutes.POST("/metafields", handlers.HandleSetMetafield(metafields, logger))
		adminRoutes.POST("/theme-inject", handlers.HandleThemeInject(theme, logger))
		adminRoutes.POST("/theme-revert-uninstall", handlers.HandleThemeRevert(theme, logger))
		adminRoutes.GET("/backups", handlers.HandleListBackups(theme, logger))
		adminRoutes.GET("/access-scopes", handlers.HandleAccessScopes(access, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"errors":  []gin.H{{"message": "Server error", "detail": fmt.Sprintf("%v", recovered)}},
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
