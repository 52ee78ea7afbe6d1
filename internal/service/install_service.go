package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/config"
	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
	"github.com/Muneebkh2/shopify-iframe-app/internal/repository"
	"github.com/Muneebkh2/shopify-iframe-app/internal/shopify"
	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

// InstallService finishes the OAuth install of a shop.
type InstallService struct {
	app    config.AppConfig
	client *shopify.Client
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewInstallService(app config.AppConfig, client *shopify.Client, repos *repository.Repositories, logger *zap.Logger) *InstallService {
	return &InstallService{app: app, client: client, repos: repos, logger: logger}
}

// WebhookCallbackURL is where every subscribed topic is delivered.
func (s *InstallService) WebhookCallbackURL() string {
	return s.app.AppURL + "/webhooks"
}

// Complete exchanges the OAuth code for an offline token, stores the session and
// subscribes the shop's webhooks. Subscription failures are logged only.
func (s *InstallService) Complete(ctx context.Context, shop, code string) (*domain.Session, error) {
	if s.app.APIKey == "" || s.app.APISecret == "" {
		return nil, &apperrors.ErrConfig{Message: "missing app credentials: SHOPIFY_API_KEY, SHOPIFY_API_SECRET"}
	}
	if !shopify.IsValidShopDomain(shop) {
		return nil, &apperrors.ErrValidation{Message: fmt.Sprintf("invalid shop domain: %q", shop)}
	}

	shopClient := s.client.ForShop(shop, "")
	token, err := shopClient.ExchangeCodeForToken(ctx, s.app.APIKey, s.app.APISecret, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	session := &domain.Session{
		ID:          domain.OfflineSessionID(shop),
		Shop:        shop,
		AccessToken: token.AccessToken,
		Scope:       token.Scope,
	}
	if err := s.repos.Session.Upsert(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	s.logger.Info("Shop installed", zap.String("shop", shop), zap.String("scope", token.Scope))

	if s.app.AppURL == "" {
		s.logger.Warn("SHOPIFY_APP_URL not set, webhooks not registered", zap.String("shop", shop))
		return session, nil
	}

	authed := shopClient.WithAccessToken(token.AccessToken)
	callback := s.WebhookCallbackURL()
	for _, topic := range domain.SubscribedTopics {
		id, err := authed.RegisterWebhook(ctx, string(topic), callback)
		if err != nil {
			s.logger.Warn("Failed to register webhook",
				zap.String("shop", shop),
				zap.String("topic", string(topic)),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("Webhook registered",
			zap.String("shop", shop),
			zap.String("topic", string(topic)),
			zap.String("subscription_id", id),
		)
	}
	return session, nil
}
