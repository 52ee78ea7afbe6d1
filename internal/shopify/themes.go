package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

type themesResponse struct {
	Themes []domain.Theme `json:"themes"`
}

type assetEnvelope struct {
	Asset *domain.Asset `json:"asset"`
}

// ListThemes returns the shop's themes (GET themes.json).
func (c *Client) ListThemes(ctx context.Context) ([]domain.Theme, error) {
	body, err := c.do(ctx, http.MethodGet, c.apiURL("themes.json"), nil)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	var resp themesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse themes response: %w", err)
	}
	return resp.Themes, nil
}

// MainTheme returns the published theme. Role matching is case-insensitive.
func (c *Client) MainTheme(ctx context.Context) (*domain.Theme, error) {
	themes, err := c.ListThemes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range themes {
		if strings.EqualFold(themes[i].Role, "main") && themes[i].ID != 0 {
			return &themes[i], nil
		}
	}
	return nil, &apperrors.ErrNotFound{Resource: "theme", ID: "main"}
}

func (c *Client) assetsURL(themeID int64) string {
	return c.apiURL(fmt.Sprintf("themes/%d/assets.json", themeID))
}

// GetAsset fetches one theme asset. A missing asset is an *ErrNotFound.
func (c *Client) GetAsset(ctx context.Context, themeID int64, key string) (*domain.Asset, error) {
	q := url.Values{}
	q.Set("asset[key]", key)
	body, err := c.do(ctx, http.MethodGet, c.assetsURL(themeID)+"?"+q.Encode(), nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, &apperrors.ErrNotFound{Resource: "asset", ID: key}
		}
		return nil, fmt.Errorf("get asset %s: %w", key, err)
	}
	var env assetEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse asset %s: %w", key, err)
	}
	if env.Asset == nil {
		return nil, &apperrors.ErrNotFound{Resource: "asset", ID: key}
	}
	return env.Asset, nil
}

// PutAsset creates or replaces a theme asset.
func (c *Client) PutAsset(ctx context.Context, themeID int64, key, value string) (*domain.Asset, error) {
	payload, err := json.Marshal(assetEnvelope{Asset: &domain.Asset{Key: key, Value: value}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal asset: %w", err)
	}
	body, err := c.do(ctx, http.MethodPut, c.assetsURL(themeID), payload)
	if err != nil {
		return nil, fmt.Errorf("put asset %s: %w", key, err)
	}
	var env assetEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse put asset %s: %w", key, err)
	}
	if env.Asset == nil {
		return nil, fmt.Errorf("put asset %s: response has no asset", key)
	}
	return env.Asset, nil
}

// DeleteAsset removes a theme asset.
func (c *Client) DeleteAsset(ctx context.Context, themeID int64, key string) error {
	q := url.Values{}
	q.Set("asset[key]", key)
	if _, err := c.do(ctx, http.MethodDelete, c.assetsURL(themeID)+"?"+q.Encode(), nil); err != nil {
		return fmt.Errorf("delete asset %s: %w", key, err)
	}
	return nil
}
