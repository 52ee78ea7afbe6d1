package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Session:         NewSessionRepository(db, logger),
		WebhookDelivery: NewWebhookDeliveryRepository(db, logger),
	}
}
