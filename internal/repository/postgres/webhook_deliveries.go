package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
)

type webhookDeliveryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWebhookDeliveryRepository creates a new webhook delivery repository
func NewWebhookDeliveryRepository(db *sql.DB, logger *zap.Logger) *webhookDeliveryRepository {
	return &webhookDeliveryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *webhookDeliveryRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM webhook_deliveries WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check webhook delivery", zap.String("id", id), zap.Error(err))
		return false, err
	}
	return exists, nil
}

// Create records the delivery. A concurrent duplicate is not an error.
func (r *webhookDeliveryRepository) Create(ctx context.Context, delivery *domain.WebhookDelivery) error {
	query := `
		INSERT INTO webhook_deliveries (id, topic, shop, received_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	if delivery.ReceivedAt.IsZero() {
		delivery.ReceivedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		delivery.ID,
		string(delivery.Topic),
		delivery.Shop,
		delivery.ReceivedAt,
	)
	if err != nil {
		r.logger.Error("Failed to record webhook delivery", zap.String("id", delivery.ID), zap.Error(err))
		return err
	}
	return nil
}
