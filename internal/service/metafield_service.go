package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
	"github.com/Muneebkh2/shopify-iframe-app/internal/repository"
	"github.com/Muneebkh2/shopify-iframe-app/internal/shopify"
	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

// MissingMetafieldInput is the validation message for an incomplete set request.
const MissingMetafieldInput = "Missing productId or iframeUrl"

type MetafieldService struct {
	client   *shopify.Client
	sessions repository.SessionRepository
	logger   *zap.Logger
}

// NewMetafieldService creates the service that owns the custom.iframe_url metafield
func NewMetafieldService(client *shopify.Client, repos *repository.Repositories, logger *zap.Logger) *MetafieldService {
	s := &MetafieldService{client: client, logger: logger}
	if repos != nil {
		s.sessions = repos.Session
	}
	return s
}

// Init creates the metafield definition and pins it. It is not idempotent: a
// second call surfaces the platform's "already exists" user error.
func (s *MetafieldService) Init(ctx context.Context) (string, error) {
	client, err := adminClient(ctx, s.client, s.sessions, s.logger)
	if err != nil {
		return "", err
	}

	resp, err := client.Execute(ctx, shopify.MetafieldDefinitionCreateMutation, map[string]interface{}{
		"definition": shopify.MetafieldDefinitionInput{
			Name:      domain.IframeMetafieldName,
			Namespace: domain.IframeMetafieldNamespace,
			Key:       domain.IframeMetafieldKey,
			Type:      domain.IframeMetafieldType,
			OwnerType: domain.IframeMetafieldOwnerType,
		},
	})
	if err != nil {
		return "", fmt.Errorf("metafieldDefinitionCreate: %w", err)
	}

	var created struct {
		Create struct {
			CreatedDefinition *struct {
				ID string `json:"id"`
			} `json:"createdDefinition"`
			UserErrors shopify.UserErrors `json:"userErrors"`
		} `json:"metafieldDefinitionCreate"`
	}
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		return "", fmt.Errorf("parse metafieldDefinitionCreate response: %w", err)
	}
	if err := created.Create.UserErrors.Err("metafieldDefinitionCreate"); err != nil {
		return "", err
	}
	if created.Create.CreatedDefinition == nil || created.Create.CreatedDefinition.ID == "" {
		return "", fmt.Errorf("metafieldDefinitionCreate returned no definition")
	}
	definitionID := created.Create.CreatedDefinition.ID

	resp, err = client.Execute(ctx, shopify.MetafieldDefinitionPinMutation, map[string]interface{}{
		"definitionId": definitionID,
	})
	if err != nil {
		return "", fmt.Errorf("metafieldDefinitionPin: %w", err)
	}

	var pinned struct {
		Pin struct {
			UserErrors shopify.UserErrors `json:"userErrors"`
		} `json:"metafieldDefinitionPin"`
	}
	if err := json.Unmarshal(resp.Data, &pinned); err != nil {
		return "", fmt.Errorf("parse metafieldDefinitionPin response: %w", err)
	}
	if err := pinned.Pin.UserErrors.Err("metafieldDefinitionPin"); err != nil {
		return "", err
	}

	s.logger.Info("Metafield definition created and pinned",
		zap.String("shop", client.ShopDomain()),
		zap.String("definition_id", definitionID),
	)
	return definitionID, nil
}

// DefinitionExists reports whether custom.iframe_url is already defined for products.
func (s *MetafieldService) DefinitionExists(ctx context.Context) (bool, error) {
	client, err := adminClient(ctx, s.client, s.sessions, s.logger)
	if err != nil {
		return false, err
	}

	resp, err := client.Execute(ctx, shopify.MetafieldDefinitionsQuery, map[string]interface{}{
		"namespace": domain.IframeMetafieldNamespace,
		"key":       domain.IframeMetafieldKey,
	})
	if err != nil {
		return false, fmt.Errorf("metafieldDefinitions: %w", err)
	}

	var result struct {
		Definitions struct {
			Edges []struct {
				Node struct {
					ID string `json:"id"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"metafieldDefinitions"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return false, fmt.Errorf("parse metafieldDefinitions response: %w", err)
	}
	return len(result.Definitions.Edges) > 0, nil
}

// Set writes the product's iframe_url. Both arguments are required; nothing is
// sent when either is blank.
func (s *MetafieldService) Set(ctx context.Context, productID, iframeURL string) ([]domain.Metafield, error) {
	productID = strings.TrimSpace(productID)
	iframeURL = strings.TrimSpace(iframeURL)
	if productID == "" || iframeURL == "" {
		return nil, &apperrors.ErrValidation{Message: MissingMetafieldInput}
	}

	client, err := adminClient(ctx, s.client, s.sessions, s.logger)
	if err != nil {
		return nil, err
	}

	resp, err := client.Execute(ctx, shopify.MetafieldsSetMutation, map[string]interface{}{
		"metafields": []shopify.MetafieldsSetInput{{
			OwnerID:   productID,
			Namespace: domain.IframeMetafieldNamespace,
			Key:       domain.IframeMetafieldKey,
			Type:      domain.IframeMetafieldType,
			Value:     iframeURL,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("metafieldsSet: %w", err)
	}

	var result struct {
		Set struct {
			Metafields []domain.Metafield `json:"metafields"`
			UserErrors shopify.UserErrors `json:"userErrors"`
		} `json:"metafieldsSet"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse metafieldsSet response: %w", err)
	}
	if err := result.Set.UserErrors.Err("metafieldsSet"); err != nil {
		return nil, err
	}

	s.logger.Info("Iframe URL saved",
		zap.String("shop", client.ShopDomain()),
		zap.String("product_id", productID),
	)
	return result.Set.Metafields, nil
}
