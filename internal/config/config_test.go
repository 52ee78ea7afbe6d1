package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "https://Demo-Store.myshopify.com/")
	t.Setenv("PRIVATE_APP_TOKEN", " shpat_abc ")
	t.Setenv("SCOPES", "read_products, write_themes ,")
	t.Setenv("BACKUP_DIR", "/tmp/iframe-backups")
	t.Setenv("THEME_SKIP_PATCHED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "demo-store.myshopify.com", cfg.Shopify.ShopDomain)
	assert.Equal(t, "shpat_abc", cfg.Shopify.AccessToken)
	assert.Equal(t, []string{"read_products", "write_themes"}, cfg.App.Scopes)
	assert.Equal(t, "/tmp/iframe-backups/index.db", cfg.Backup.IndexPath)
	assert.False(t, cfg.Theme.SkipPatched)
	assert.NoError(t, cfg.ThemeCredentials())
}

func TestThemeCredentialsMissing(t *testing.T) {
	cfg := &Config{}
	err := cfg.ThemeCredentials()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRIVATE_APP_TOKEN")
	assert.Contains(t, err.Error(), "SHOPIFY_SHOP_DOMAIN")

	cfg.Shopify.AccessToken = "token"
	err = cfg.ThemeCredentials()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "PRIVATE_APP_TOKEN")
}
