package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Database    DatabaseConfig
	Shopify     ShopifyConfig
	App         AppConfig
	Backup      BackupConfig
	Theme       ThemeConfig
	API         APIConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ShopifyConfig holds the Admin API target. AccessToken is the private app token
// (PRIVATE_APP_TOKEN) used for theme asset calls.
type ShopifyConfig struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	BaseURL     string // SHOPIFY_API_BASE_URL: replaces https://{shop}; /admin/api/{version} is still appended
}

// AppConfig is the public app registration used for OAuth and webhook signatures.
type AppConfig struct {
	APIKey    string
	APISecret string
	Scopes    []string
	AppURL    string
}

type BackupConfig struct {
	Dir       string
	IndexPath string
}

type ThemeConfig struct {
	StylesheetPath string
	SkipPatched    bool // THEME_SKIP_PATCHED: leave snippets that already reference iframe_url alone
}

type APIConfig struct {
	AdminKeyHash string // bcrypt hash; empty leaves /api open
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("SHOPIFY_API_VERSION", "2025-01")
	viper.SetDefault("BACKUP_DIR", "backups")
	viper.SetDefault("THEME_SKIP_PATCHED", true)

	viper.AutomaticEnv()

	// .env is optional
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	backupDir := getEnvOrViper("BACKUP_DIR", "backups")

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "iframeapp"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:  NormalizeShopDomain(getEnvOrViper("SHOPIFY_SHOP_DOMAIN", "")),
			AccessToken: strings.TrimSpace(getEnvOrViper("PRIVATE_APP_TOKEN", "")),
			APIVersion:  getEnvOrViper("SHOPIFY_API_VERSION", "2025-01"),
			BaseURL:     strings.TrimSuffix(strings.TrimSpace(getEnvOrViper("SHOPIFY_API_BASE_URL", "")), "/"),
		},
		App: AppConfig{
			APIKey:    strings.TrimSpace(getEnvOrViper("SHOPIFY_API_KEY", "")),
			APISecret: strings.TrimSpace(getEnvOrViper("SHOPIFY_API_SECRET", "")),
			Scopes:    splitScopes(getEnvOrViper("SCOPES", "write_products,read_products,write_themes,read_themes")),
			AppURL:    strings.TrimSuffix(strings.TrimSpace(getEnvOrViper("SHOPIFY_APP_URL", "")), "/"),
		},
		Backup: BackupConfig{
			Dir:       backupDir,
			IndexPath: getEnvOrViper("BACKUP_INDEX_PATH", filepath.Join(backupDir, "index.db")),
		},
		Theme: ThemeConfig{
			StylesheetPath: getEnvOrViper("STYLESHEET_PATH", filepath.Join("iframe-assets", "component-custom-iframe.css")),
			SkipPatched:    getBoolOrViper("THEME_SKIP_PATCHED", true),
		},
		API: APIConfig{
			AdminKeyHash: strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
		},
	}

	return cfg, nil
}

// ThemeCredentials reports the configuration error theme asset operations fail with
// when the private token or the shop domain is missing.
func (c *Config) ThemeCredentials() error {
	var missing []string
	if c.Shopify.AccessToken == "" {
		missing = append(missing, "PRIVATE_APP_TOKEN")
	}
	if c.Shopify.ShopDomain == "" {
		missing = append(missing, "SHOPIFY_SHOP_DOMAIN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing private app credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// NormalizeShopDomain strips scheme and trailing slashes from a shop domain.
func NormalizeShopDomain(shop string) string {
	shop = strings.TrimSpace(shop)
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	return strings.ToLower(strings.TrimSuffix(shop, "/"))
}

func splitScopes(raw string) []string {
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getBoolOrViper(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
		return defaultValue
	}
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return defaultValue
}
