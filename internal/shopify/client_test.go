package shopify_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
	"github.com/Muneebkh2/shopify-iframe-app/internal/shopify"
	"github.com/Muneebkh2/shopify-iframe-app/internal/testutil/shopifyfake"
	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

func newClient(t *testing.T) (*shopify.Client, *shopifyfake.Server) {
	t.Helper()
	fake := shopifyfake.New(t)
	return shopify.NewClient(fake.ShopifyConfig("demo.myshopify.com", "shpat_test"), zap.NewNop()), fake
}

func TestExecuteSendsVariablesAndToken(t *testing.T) {
	client, fake := newClient(t)
	fake.HandleGraphQL("metafieldDefinitions", func(call shopifyfake.GraphQLCall) (interface{}, error) {
		return map[string]interface{}{"metafieldDefinitions": map[string]interface{}{"edges": []interface{}{}}}, nil
	})

	resp, err := client.Execute(context.Background(), shopify.MetafieldDefinitionsQuery, map[string]interface{}{
		"namespace": "custom",
		"key":       "iframe_url",
	})
	require.NoError(t, err)
	assert.Contains(t, string(resp.Data), "metafieldDefinitions")

	calls := fake.GraphQLCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "shpat_test", calls[0].Token)
	assert.Equal(t, "custom", calls[0].Variables["namespace"])
}

func TestExecuteSurfacesTopLevelErrors(t *testing.T) {
	client, _ := newClient(t)

	_, err := client.Execute(context.Background(), "query unknownOp { shop { id } }", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graphQL errors")
}

func TestWithAccessTokenDoesNotMutateOriginal(t *testing.T) {
	client, fake := newClient(t)
	fake.HandleGraphQL("metafieldDefinitions", func(call shopifyfake.GraphQLCall) (interface{}, error) {
		return map[string]interface{}{}, nil
	})

	_, err := client.WithAccessToken("session-token").Execute(context.Background(), shopify.MetafieldDefinitionsQuery, nil)
	require.NoError(t, err)
	_, err = client.Execute(context.Background(), shopify.MetafieldDefinitionsQuery, nil)
	require.NoError(t, err)

	calls := fake.GraphQLCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "session-token", calls[0].Token)
	assert.Equal(t, "shpat_test", calls[1].Token)
}

func TestMainThemeCaseInsensitive(t *testing.T) {
	client, fake := newClient(t)
	fake.SetThemes(
		domain.Theme{ID: 1, Name: "Draft", Role: "unpublished"},
		domain.Theme{ID: 2, Name: "Dawn", Role: "MAIN"},
	)

	theme, err := client.MainTheme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), theme.ID)
}

func TestMainThemeMissing(t *testing.T) {
	client, fake := newClient(t)
	fake.SetThemes(domain.Theme{ID: 1, Role: "unpublished"})

	_, err := client.MainTheme(context.Background())
	var notFound *apperrors.ErrNotFound
	require.True(t, errors.As(err, &notFound))
}

func TestAssetRoundTrip(t *testing.T) {
	client, fake := newClient(t)
	ctx := context.Background()

	_, err := client.GetAsset(ctx, 7, "snippets/missing.liquid")
	var notFound *apperrors.ErrNotFound
	require.True(t, errors.As(err, &notFound))

	_, err = client.PutAsset(ctx, 7, "assets/a.css", ".a{}")
	require.NoError(t, err)

	asset, err := client.GetAsset(ctx, 7, "assets/a.css")
	require.NoError(t, err)
	assert.Equal(t, ".a{}", asset.Value)

	require.NoError(t, client.DeleteAsset(ctx, 7, "assets/a.css"))
	_, ok := fake.Asset(7, "assets/a.css")
	assert.False(t, ok)
}

func TestPutAssetNon2xx(t *testing.T) {
	client, fake := newClient(t)
	fake.FailPut("layout/theme.liquid", http.StatusUnprocessableEntity)

	_, err := client.PutAsset(context.Background(), 7, "layout/theme.liquid", "x")
	var apiErr *shopify.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}

func TestWebhookHMAC(t *testing.T) {
	body := []byte(`{"id":1}`)
	sig := shopify.SignWebhook("secret", body)

	assert.True(t, shopify.VerifyWebhookHMAC("secret", body, sig))
	assert.True(t, shopify.VerifyWebhookHMAC("secret", body, " "+sig+" "))
	assert.False(t, shopify.VerifyWebhookHMAC("other", body, sig))
	assert.False(t, shopify.VerifyWebhookHMAC("secret", []byte(`{"id":2}`), sig))
	assert.False(t, shopify.VerifyWebhookHMAC("", body, sig))
}

func TestVerifyQueryHMAC(t *testing.T) {
	q := url.Values{}
	q.Set("code", "abc")
	q.Set("shop", "demo.myshopify.com")
	q.Set("state", "xyz")
	q.Set("timestamp", "1700000000")
	q.Set("hmac", shopify.SignQuery(q, "secret"))

	assert.True(t, shopify.VerifyQueryHMAC(q, "secret"))
	assert.False(t, shopify.VerifyQueryHMAC(q, "wrong"))

	q.Set("shop", "evil.myshopify.com")
	assert.False(t, shopify.VerifyQueryHMAC(q, "secret"))
}

func TestExchangeCodeForToken(t *testing.T) {
	client, fake := newClient(t)
	fake.SetAccessTokenReply("shpat_new")

	tok, err := client.ExchangeCodeForToken(context.Background(), "id", "secret", "code")
	require.NoError(t, err)
	assert.Equal(t, "shpat_new", tok.AccessToken)

	fake.SetAccessTokenReply("")
	_, err = client.ExchangeCodeForToken(context.Background(), "id", "secret", "code")
	require.Error(t, err)
}

func TestIsValidShopDomain(t *testing.T) {
	assert.True(t, shopify.IsValidShopDomain("demo-store.myshopify.com"))
	assert.False(t, shopify.IsValidShopDomain("demo.example.com"))
	assert.False(t, shopify.IsValidShopDomain("https://demo.myshopify.com"))
	assert.False(t, shopify.IsValidShopDomain(""))
}
