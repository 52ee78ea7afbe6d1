package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
	"github.com/Muneebkh2/shopify-iframe-app/internal/repository"
)

// ErrUnhandledTopic is returned by Dispatch for topics with no handler.
type ErrUnhandledTopic struct {
	Topic string
}

func (e *ErrUnhandledTopic) Error() string {
	return fmt.Sprintf("Unhandled webhook topic: %s", e.Topic)
}

// WebhookEvent is a verified webhook delivery.
type WebhookEvent struct {
	ID      string // X-Shopify-Webhook-Id, may be empty
	Topic   string // raw X-Shopify-Topic
	Shop    string // X-Shopify-Shop-Domain
	Payload []byte
}

type WebhookService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewWebhookService creates a new webhook dispatcher
func NewWebhookService(repos *repository.Repositories, logger *zap.Logger) *WebhookService {
	return &WebhookService{repos: repos, logger: logger}
}

// Dispatch runs the handler for the event's topic. duplicate is true when the
// delivery id was already processed; the handler is not run again then.
func (s *WebhookService) Dispatch(ctx context.Context, ev WebhookEvent) (duplicate bool, err error) {
	topic := domain.ParseWebhookTopic(ev.Topic)
	if !topic.IsValid() {
		return false, &ErrUnhandledTopic{Topic: ev.Topic}
	}

	log := s.logger.With(
		zap.String("topic", string(topic)),
		zap.String("shop", ev.Shop),
		zap.String("webhook_id", ev.ID),
	)

	if ev.ID != "" {
		seen, err := s.repos.WebhookDelivery.Exists(ctx, ev.ID)
		if err != nil {
			return false, fmt.Errorf("check webhook delivery: %w", err)
		}
		if seen {
			log.Info("Duplicate webhook delivery acknowledged")
			return true, nil
		}
	}

	switch topic {
	case domain.TopicAppUninstalled:
		err = s.handleAppUninstalled(ctx, ev, log)
	case domain.TopicAppSubscriptionsUpdate, domain.TopicShopUpdate:
		log.Info("Webhook received", zap.Int("payload_bytes", len(ev.Payload)))
	default:
		err = s.handleCompliance(topic, ev, log)
	}
	if err != nil {
		return false, err
	}

	if ev.ID != "" {
		if err := s.repos.WebhookDelivery.Create(ctx, &domain.WebhookDelivery{
			ID:    ev.ID,
			Topic: topic,
			Shop:  ev.Shop,
		}); err != nil {
			// the handler already ran; a redelivery will simply run it again
			log.Warn("Failed to record webhook delivery", zap.Error(err))
		}
	}
	return false, nil
}

func (s *WebhookService) handleAppUninstalled(ctx context.Context, ev WebhookEvent, log *zap.Logger) error {
	if ev.Shop == "" {
		log.Warn("Uninstall webhook without shop domain, nothing to delete")
		return nil
	}
	n, err := s.repos.Session.DeleteByShop(ctx, ev.Shop)
	if err != nil {
		return fmt.Errorf("delete sessions for %s: %w", ev.Shop, err)
	}
	log.Info("App uninstalled, sessions deleted", zap.Int64("sessions", n))
	return nil
}

// compliancePayload covers the fields the privacy topics share.
type compliancePayload struct {
	ShopID     int64  `json:"shop_id"`
	ShopDomain string `json:"shop_domain"`
	Customer   *struct {
		ID int64 `json:"id"`
	} `json:"customer,omitempty"`
	OrdersRequested []int64 `json:"orders_requested,omitempty"`
	OrdersToRedact  []int64 `json:"orders_to_redact,omitempty"`
	DataRequest     *struct {
		ID int64 `json:"id"`
	} `json:"data_request,omitempty"`
}

// handleCompliance parses and logs privacy requests. The app stores no customer
// data, so there is nothing to export or erase.
func (s *WebhookService) handleCompliance(topic domain.WebhookTopic, ev WebhookEvent, log *zap.Logger) error {
	var p compliancePayload
	if len(ev.Payload) > 0 {
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("parse %s payload: %w", topic, err)
		}
	}

	fields := []zap.Field{zap.Int64("shop_id", p.ShopID)}
	if p.Customer != nil {
		fields = append(fields, zap.Int64("customer_id", p.Customer.ID))
	}
	switch topic {
	case domain.TopicCustomersDataRequest:
		fields = append(fields, zap.Int("orders_requested", len(p.OrdersRequested)))
	case domain.TopicCustomersRedact:
		fields = append(fields, zap.Int("orders_to_redact", len(p.OrdersToRedact)))
	}
	log.Info("Compliance webhook received", fields...)
	return nil
}
