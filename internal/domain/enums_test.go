package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWebhookTopic(t *testing.T) {
	assert.Equal(t, TopicAppUninstalled, ParseWebhookTopic("app/uninstalled"))
	assert.Equal(t, TopicCustomersDataRequest, ParseWebhookTopic("customers/data_request"))
	assert.Equal(t, TopicShopRedact, ParseWebhookTopic("SHOP_REDACT"))
	assert.Equal(t, WebhookTopic("ORDERS_CREATE"), ParseWebhookTopic(" orders/create "))
}

func TestWebhookTopicValidity(t *testing.T) {
	for _, topic := range SubscribedTopics {
		assert.True(t, topic.IsValid(), topic)
	}
	assert.False(t, WebhookTopic("ORDERS_CREATE").IsValid())
	assert.True(t, TopicShopRedact.IsCompliance())
	assert.False(t, TopicShopUpdate.IsCompliance())
}

func TestProductIframeURL(t *testing.T) {
	p := Product{Metafields: []Metafield{{Namespace: "custom", Key: "iframe_url", Value: "https://example.com/3d"}}}
	assert.Equal(t, "https://example.com/3d", p.IframeURL())
	assert.Equal(t, "", Product{}.IframeURL())
}
