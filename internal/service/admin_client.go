package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/repository"
	"github.com/Muneebkh2/shopify-iframe-app/internal/shopify"
	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

// adminClient picks the credential for GraphQL calls: the shop's stored offline
// session when there is one, otherwise the private app token the client was built with.
func adminClient(ctx context.Context, base *shopify.Client, sessions repository.SessionRepository, logger *zap.Logger) (*shopify.Client, error) {
	if base.ShopDomain() == "" {
		return nil, &apperrors.ErrConfig{Message: "missing shop domain: SHOPIFY_SHOP_DOMAIN"}
	}

	if sessions != nil {
		session, err := sessions.GetByShop(ctx, base.ShopDomain())
		if err != nil {
			// a broken session store should not block the private token path
			logger.Warn("Failed to load session, falling back to private app token",
				zap.String("shop", base.ShopDomain()),
				zap.Error(err),
			)
		} else if session != nil && session.AccessToken != "" {
			return base.WithAccessToken(session.AccessToken), nil
		}
	}

	if !base.HasAccessToken() {
		return nil, &apperrors.ErrConfig{Message: "no session for shop and PRIVATE_APP_TOKEN is not set"}
	}
	return base, nil
}
