package service

import (
	"github.com/Muneebkh2/shopify-iframe-app/internal/backup"
	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
)

// SetMetafieldRequest is the body of POST /api/metafields.
type SetMetafieldRequest struct {
	ProductID string `json:"productId"`
	IframeURL string `json:"iframeUrl"`
}

// InjectResult reports what a theme patch changed.
type InjectResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	ThemeID int64           `json:"themeId"`
	Patched []string        `json:"patched"`
	Skipped []string        `json:"skipped"`
	Backups []backup.Record `json:"backups"`
}

// RevertResult reports a revert. Warnings collect cleanup steps that failed
// after every template was restored.
type RevertResult struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	ThemeID  int64    `json:"themeId"`
	Restored []string `json:"restored"`
	Warnings []string `json:"warnings"`
}

// ProductList is the body of GET /api/products.
type ProductList struct {
	Products []domain.Product `json:"products"`
}
