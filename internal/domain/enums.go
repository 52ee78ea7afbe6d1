package domain

import "strings"

// WebhookTopic is a Shopify webhook topic in enum form (APP_UNINSTALLED).
type WebhookTopic string

const (
	TopicAppUninstalled         WebhookTopic = "APP_UNINSTALLED"
	TopicAppSubscriptionsUpdate WebhookTopic = "APP_SUBSCRIPTIONS_UPDATE"
	TopicShopUpdate             WebhookTopic = "SHOP_UPDATE"
	TopicCustomersDataRequest   WebhookTopic = "CUSTOMERS_DATA_REQUEST"
	TopicCustomersRedact        WebhookTopic = "CUSTOMERS_REDACT"
	TopicShopRedact             WebhookTopic = "SHOP_REDACT"
)

// SubscribedTopics are registered for every shop after install.
var SubscribedTopics = []WebhookTopic{
	TopicAppUninstalled,
	TopicAppSubscriptionsUpdate,
	TopicShopUpdate,
	TopicCustomersDataRequest,
	TopicCustomersRedact,
	TopicShopRedact,
}

// ParseWebhookTopic converts the X-Shopify-Topic header form ("app/uninstalled")
// into the enum form. Enum-form input is returned unchanged.
func ParseWebhookTopic(raw string) WebhookTopic {
	t := strings.TrimSpace(raw)
	t = strings.ReplaceAll(t, "/", "_")
	return WebhookTopic(strings.ToUpper(t))
}

// IsValid checks if the topic is one this app handles
func (t WebhookTopic) IsValid() bool {
	switch t {
	case TopicAppUninstalled,
		TopicAppSubscriptionsUpdate,
		TopicShopUpdate,
		TopicCustomersDataRequest,
		TopicCustomersRedact,
		TopicShopRedact:
		return true
	default:
		return false
	}
}

// IsCompliance reports whether t is one of the mandatory privacy topics.
func (t WebhookTopic) IsCompliance() bool {
	return t == TopicCustomersDataRequest || t == TopicCustomersRedact || t == TopicShopRedact
}
