package domain

import (
	"time"
)

// The product metafield this app manages.
const (
	IframeMetafieldName      = "Iframe URL"
	IframeMetafieldNamespace = "custom"
	IframeMetafieldKey       = "iframe_url"
	IframeMetafieldType      = "url"
	IframeMetafieldOwnerType = "PRODUCT"
)

// Session is an installed shop's Admin API credential.
type Session struct {
	ID          string
	Shop        string
	AccessToken string
	Scope       string
	IsOnline    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OfflineSessionID returns the id of the offline session for shop.
func OfflineSessionID(shop string) string {
	return "offline_" + shop
}

// WebhookDelivery records a processed webhook so redeliveries are acknowledged once.
type WebhookDelivery struct {
	ID         string // X-Shopify-Webhook-Id
	Topic      WebhookTopic
	Shop       string
	ReceivedAt time.Time
}

type Metafield struct {
	ID        string `json:"id,omitempty"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type,omitempty"`
}

// IsIframeURL reports whether m is the custom.iframe_url metafield.
func (m Metafield) IsIframeURL() bool {
	return m.Namespace == IframeMetafieldNamespace && m.Key == IframeMetafieldKey
}

type Variant struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Product is the admin list view of a product. Metafields only ever holds the
// iframe_url entry, when set.
type Product struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Metafields []Metafield `json:"metafields"`
	Variants   []Variant   `json:"variants"`
}

// IframeURL returns the product's iframe_url value, or "".
func (p Product) IframeURL() string {
	for _, m := range p.Metafields {
		if m.IsIframeURL() {
			return m.Value
		}
	}
	return ""
}

type Theme struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type Asset struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}
