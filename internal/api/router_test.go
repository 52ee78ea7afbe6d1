package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/api/middleware"
	"github.com/Muneebkh2/shopify-iframe-app/internal/backup"
	"github.com/Muneebkh2/shopify-iframe-app/internal/config"
	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
	"github.com/Muneebkh2/shopify-iframe-app/internal/repository"
	"github.com/Muneebkh2/shopify-iframe-app/internal/repository/memory"
	"github.com/Muneebkh2/shopify-iframe-app/internal/shopify"
	"github.com/Muneebkh2/shopify-iframe-app/internal/testutil/shopifyfake"
)

const (
	shop      = "demo.myshopify.com"
	themeID   = int64(77)
	apiSecret = "app-secret"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	router *gin.Engine
	fake   *shopifyfake.Server
	cfg    *config.Config
	repos  *repository.Repositories
}

func newHarness(t *testing.T, adminKeyHash string) *harness {
	t.Helper()
	dir := t.TempDir()
	fake := shopifyfake.New(t)

	cssPath := filepath.Join(dir, "iframe.css")
	require.NoError(t, os.WriteFile(cssPath, []byte(".x{}"), 0o644))

	cfg := &config.Config{
		Environment: "test",
		Shopify:     fake.ShopifyConfig(shop, "shpat_private"),
		App: config.AppConfig{
			APIKey:    "client-id",
			APISecret: apiSecret,
			Scopes:    []string{"read_products", "write_themes"},
			AppURL:    "https://app.example.com",
		},
		Backup: config.BackupConfig{Dir: filepath.Join(dir, "backups")},
		Theme:  config.ThemeConfig{StylesheetPath: cssPath, SkipPatched: true},
		API:    config.APIConfig{AdminKeyHash: adminKeyHash},
	}
	repos := memory.NewRepositories()
	store := backup.NewStore(cfg.Backup.Dir, nil, zap.NewNop())

	return &harness{
		router: NewRouter(cfg, repos, store, zap.NewNop()),
		fake:   fake,
		cfg:    cfg,
		repos:  repos,
	}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	h := newHarness(t, "")
	w := h.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", jsonBody(t, w)["status"])
}

func TestAdminKeyRequired(t *testing.T) {
	hash, err := middleware.HashAPIKey("s3cret")
	require.NoError(t, err)
	h := newHarness(t, hash)
	h.fake.HandleGraphQL("metafieldDefinitions", func(call shopifyfake.GraphQLCall) (interface{}, error) {
		return map[string]interface{}{"metafieldDefinitions": map[string]interface{}{"edges": []interface{}{}}}, nil
	})

	w := h.do(httptest.NewRequest(http.MethodGet, "/api/metafield-init", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/metafield-init", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, h.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/metafield-init", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w = h.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, jsonBody(t, w)["exists"])
}

func TestSetMetafieldMissingFields(t *testing.T) {
	h := newHarness(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/metafields", strings.NewReader(`{"productId":"gid://shopify/Product/1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := h.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"errors":[{"message":"Missing productId or iframeUrl"}]}`, w.Body.String())
	assert.Zero(t, h.fake.RequestCount())
}

func TestSetMetafieldUpstreamFailureIsServerError(t *testing.T) {
	h := newHarness(t, "")
	// no fake handler registered: the platform answers with top-level errors

	req := httptest.NewRequest(http.MethodPost, "/api/metafields",
		strings.NewReader(`{"productId":"gid://shopify/Product/1","iframeUrl":"https://x.example"}`))
	w := h.do(req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := jsonBody(t, w)
	assert.Equal(t, false, body["success"])
	errs := body["errors"].([]interface{})
	require.Len(t, errs, 1)
	first := errs[0].(map[string]interface{})
	assert.Equal(t, "Server error", first["message"])
	assert.NotEmpty(t, first["detail"])
}

func TestSetMetafieldUserErrorsAreBadRequest(t *testing.T) {
	h := newHarness(t, "")
	h.fake.HandleGraphQL("metafieldsSet", func(call shopifyfake.GraphQLCall) (interface{}, error) {
		return map[string]interface{}{"metafieldsSet": map[string]interface{}{
			"metafields": []interface{}{},
			"userErrors": []map[string]interface{}{{"field": []string{"value"}, "message": "is invalid"}},
		}}, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/api/metafields",
		strings.NewReader(`{"productId":"gid://shopify/Product/1","iframeUrl":"nope"}`))
	w := h.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errs := jsonBody(t, w)["errors"].([]interface{})
	assert.Equal(t, "is invalid", errs[0].(map[string]interface{})["message"])
}

func seedTheme(h *harness) {
	h.fake.SetThemes(domain.Theme{ID: themeID, Name: "Dawn", Role: "main"})
	h.fake.SetAsset(themeID, "layout/theme.liquid", "<html><head></head></html>")
	h.fake.SetAsset(themeID, "snippets/product-thumbnail.liquid", `<div class="product-media-container">img</div>`)
	h.fake.SetAsset(themeID, "snippets/card-product.liquid", `<div class="card__media">img</div>`)
}

func TestThemeInjectAndRevert(t *testing.T) {
	h := newHarness(t, "")
	seedTheme(h)

	w := h.do(httptest.NewRequest(http.MethodPost, "/api/theme-inject", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := jsonBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Iframe injected successfully", body["message"])
	assert.Len(t, body["patched"], 2)
	assert.Len(t, body["backups"], 2)

	w = h.do(httptest.NewRequest(http.MethodGet, "/api/backups", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, jsonBody(t, w)["backups"], 2)

	w = h.do(httptest.NewRequest(http.MethodPost, "/api/theme-revert-uninstall", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = jsonBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Empty(t, body["warnings"])

	thumb, _ := h.fake.Asset(themeID, "snippets/product-thumbnail.liquid")
	assert.Equal(t, `<div class="product-media-container">img</div>`, thumb)
}

func TestThemeInjectMissingAnchor(t *testing.T) {
	h := newHarness(t, "")
	seedTheme(h)
	h.fake.SetAsset(themeID, "snippets/product-thumbnail.liquid", `<section>no container</section>`)

	w := h.do(httptest.NewRequest(http.MethodPost, "/api/theme-inject", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"errors":["Injection point not found in 'snippets/product-thumbnail.liquid'"]}`, w.Body.String())
}

func TestThemeRevertWithoutBackup(t *testing.T) {
	h := newHarness(t, "")
	seedTheme(h)

	w := h.do(httptest.NewRequest(http.MethodPost, "/api/theme-revert-uninstall", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := jsonBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "snippets/card-product.liquid")
}

func TestThemeInjectWithoutCredentials(t *testing.T) {
	h := newHarness(t, "")
	h.cfg.Shopify.AccessToken = ""

	w := h.do(httptest.NewRequest(http.MethodPost, "/api/theme-inject", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, h.fake.RequestCount())
}

func webhookRequest(topic, body, secret string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewBufferString(body))
	req.Header.Set("X-Shopify-Topic", topic)
	req.Header.Set("X-Shopify-Shop-Domain", shop)
	req.Header.Set("X-Shopify-Webhook-Id", "wh-"+topic)
	req.Header.Set("X-Shopify-Hmac-Sha256", shopify.SignWebhook(secret, []byte(body)))
	return req
}

func TestWebhookSignatureChecked(t *testing.T) {
	h := newHarness(t, "")

	w := h.do(webhookRequest("app/uninstalled", `{}`, "wrong-secret"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	h.cfg.App.APISecret = ""
	w = h.do(webhookRequest("app/uninstalled", `{}`, apiSecret))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWebhookUnknownTopic(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.repos.Session.Upsert(context.Background(), &domain.Session{Shop: shop, AccessToken: "t"}))

	w := h.do(webhookRequest("orders/create", `{}`, apiSecret))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Unhandled webhook topic: orders/create", w.Body.String())

	s, err := h.repos.Session.GetByShop(context.Background(), shop)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestWebhookUninstall(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.repos.Session.Upsert(context.Background(), &domain.Session{Shop: shop, AccessToken: "t"}))

	w := h.do(webhookRequest("app/uninstalled", `{"id":1}`, apiSecret))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	s, err := h.repos.Session.GetByShop(context.Background(), shop)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestAuthBeginRedirects(t *testing.T) {
	h := newHarness(t, "")

	w := h.do(httptest.NewRequest(http.MethodGet, "/auth?shop=evil.example.com", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(httptest.NewRequest(http.MethodGet, "/auth?shop="+shop, nil))
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, shop, loc.Host)
	assert.Equal(t, "/admin/oauth/authorize", loc.Path)
	assert.Equal(t, "client-id", loc.Query().Get("client_id"))
	assert.Equal(t, "https://app.example.com/auth/callback", loc.Query().Get("redirect_uri"))
	assert.NotEmpty(t, loc.Query().Get("state"))
}

func TestAuthCallbackStoresSession(t *testing.T) {
	h := newHarness(t, "")
	h.fake.SetAccessTokenReply("shpua_new")
	h.fake.HandleGraphQL("webhookSubscriptionCreate", func(call shopifyfake.GraphQLCall) (interface{}, error) {
		return map[string]interface{}{"webhookSubscriptionCreate": map[string]interface{}{
			"webhookSubscription": map[string]string{"id": "gid://shopify/WebhookSubscription/1"},
			"userErrors":          []interface{}{},
		}}, nil
	})

	q := url.Values{}
	q.Set("code", "abc")
	q.Set("shop", shop)
	q.Set("state", "st-1")
	q.Set("timestamp", "1700000000")
	q.Set("hmac", shopify.SignQuery(q, apiSecret))

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?"+q.Encode(), nil)
	req.AddCookie(&http.Cookie{Name: "shopify_oauth_state", Value: "st-1"})
	w := h.do(req)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	s, err := h.repos.Session.GetByShop(context.Background(), shop)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "shpua_new", s.AccessToken)

	// a tampered query is rejected
	q.Set("shop", "other.myshopify.com")
	req = httptest.NewRequest(http.MethodGet, "/auth/callback?"+q.Encode(), nil)
	req.AddCookie(&http.Cookie{Name: "shopify_oauth_state", Value: "st-1"})
	assert.Equal(t, http.StatusUnauthorized, h.do(req).Code)
}

func TestAccessScopes(t *testing.T) {
	h := newHarness(t, "")
	h.fake.HandleGraphQL("accessScopes", func(call shopifyfake.GraphQLCall) (interface{}, error) {
		assert.Equal(t, "shpat_private", call.Token)
		return map[string]interface{}{"currentAppInstallation": map[string]interface{}{
			"accessScopes": []map[string]string{{"handle": "write_products"}},
		}}, nil
	})

	w := h.do(httptest.NewRequest(http.MethodGet, "/api/access-scopes", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := jsonBody(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, []interface{}{"write_themes"}, body["missing"])
}
