package repository

import (
	"context"

	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
)

// SessionRepository stores installed shops' Admin API credentials.
type SessionRepository interface {
	Upsert(ctx context.Context, session *domain.Session) error
	// GetByShop returns the shop's offline session, or nil when none is stored.
	GetByShop(ctx context.Context, shop string) (*domain.Session, error)
	DeleteByShop(ctx context.Context, shop string) (int64, error)
}

// WebhookDeliveryRepository remembers processed webhook deliveries.
type WebhookDeliveryRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, delivery *domain.WebhookDelivery) error
}

// Repositories aggregates all repositories
type Repositories struct {
	Session         SessionRepository
	WebhookDelivery WebhookDeliveryRepository
}
