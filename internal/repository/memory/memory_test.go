package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
)

func TestSessionUpsertKeepsCreatedAt(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()

	first := &domain.Session{Shop: "demo.myshopify.com", AccessToken: "a"}
	require.NoError(t, repo.Upsert(ctx, first))
	assert.Equal(t, "offline_demo.myshopify.com", first.ID)

	second := &domain.Session{Shop: "demo.myshopify.com", AccessToken: "b"}
	require.NoError(t, repo.Upsert(ctx, second))

	got, err := repo.GetByShop(ctx, "demo.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, "b", got.AccessToken)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)

	n, err := repo.DeleteByShop(ctx, "demo.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err = repo.GetByShop(ctx, "demo.myshopify.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWebhookDeliveryCreateIsIdempotent(t *testing.T) {
	repo := NewWebhookDeliveryRepository()
	ctx := context.Background()

	d := &domain.WebhookDelivery{ID: "w-1", Topic: domain.TopicShopUpdate}
	require.NoError(t, repo.Create(ctx, d))
	require.NoError(t, repo.Create(ctx, d))

	ok, err := repo.Exists(ctx, "w-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, repo.Count())
}
