package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/backup"
	"github.com/Muneebkh2/shopify-iframe-app/internal/config"
	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
	"github.com/Muneebkh2/shopify-iframe-app/internal/shopify"
	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

const (
	injectedMessage = "Iframe injected successfully"
	revertedMessage = "Theme files and CSS reverted successfully."
)

// ThemeService patches and restores the live theme's product snippets. Every step
// runs in order and the first failure is returned as is: steps already applied
// stay applied.
type ThemeService struct {
	cfg     *config.Config
	client  *shopify.Client
	backups *backup.Store
	logger  *zap.Logger
}

// NewThemeService creates a theme patcher. client must carry the private app token.
func NewThemeService(cfg *config.Config, client *shopify.Client, backups *backup.Store, logger *zap.Logger) *ThemeService {
	return &ThemeService{
		cfg:     cfg,
		client:  client,
		backups: backups,
		logger:  logger,
	}
}

func (s *ThemeService) mainTheme(ctx context.Context) (*domain.Theme, error) {
	if err := s.cfg.ThemeCredentials(); err != nil {
		return nil, &apperrors.ErrConfig{Message: err.Error()}
	}
	return s.client.MainTheme(ctx)
}

// Inject uploads the iframe stylesheet, links it from the layout and wraps the
// media markup of both product snippets in an iframe_url branch, backing each
// snippet up first.
func (s *ThemeService) Inject(ctx context.Context) (*InjectResult, error) {
	theme, err := s.mainTheme(ctx)
	if err != nil {
		return nil, err
	}
	shop := s.client.ShopDomain()
	log := s.logger.With(zap.String("shop", shop), zap.Int64("theme_id", theme.ID))

	if err := s.installStylesheet(ctx, theme.ID, log); err != nil {
		return nil, err
	}

	result := &InjectResult{
		Success: true,
		Message: injectedMessage,
		ThemeID: theme.ID,
		Patched: []string{},
		Skipped: []string{},
		Backups: []backup.Record{},
	}

	for _, patch := range injectOrder {
		asset, err := s.client.GetAsset(ctx, theme.ID, patch.Key)
		var notFound *apperrors.ErrNotFound
		if errors.As(err, &notFound) || (err == nil && asset.Value == "") {
			return nil, &apperrors.ErrValidation{Message: fmt.Sprintf("Original asset '%s' not found or empty", patch.Key)}
		}
		if err != nil {
			return nil, err
		}
		original := asset.Value

		if s.cfg.Theme.SkipPatched && strings.Contains(original, patchMarker) {
			log.Info("Snippet already references iframe_url, skipping", zap.String("asset_key", patch.Key))
			result.Skipped = append(result.Skipped, patch.Key)
			continue
		}

		rec, err := s.backups.Save(ctx, shop, theme.ID, patch.Key, original)
		if err != nil {
			return nil, err
		}
		result.Backups = append(result.Backups, *rec)

		updated, ok := wrapFirstMatch(original, patch)
		if !ok {
			return nil, &apperrors.ErrInjectionPoint{AssetKey: patch.Key}
		}

		if _, err := s.client.PutAsset(ctx, theme.ID, patch.Key, updated); err != nil {
			return nil, fmt.Errorf("failed to update asset %s: %w", patch.Key, err)
		}
		log.Info("Snippet patched", zap.String("asset_key", patch.Key), zap.String("backup", rec.Filename))
		result.Patched = append(result.Patched, patch.Key)
	}

	return result, nil
}

func (s *ThemeService) installStylesheet(ctx context.Context, themeID int64, log *zap.Logger) error {
	css, err := os.ReadFile(s.cfg.Theme.StylesheetPath)
	if err != nil {
		return &apperrors.ErrConfig{Message: fmt.Sprintf("Missing local CSS file: %s", s.cfg.Theme.StylesheetPath)}
	}
	if _, err := s.client.PutAsset(ctx, themeID, StylesheetAssetKey, string(css)); err != nil {
		return fmt.Errorf("failed to upload component-custom-iframe.css: %w", err)
	}

	layout, err := s.client.GetAsset(ctx, themeID, LayoutKey)
	if err != nil {
		return err
	}
	if layout.Value == "" {
		return &apperrors.ErrNotFound{Resource: "asset", ID: LayoutKey}
	}

	updated, changed := addStylesheetTag(layout.Value)
	if !changed {
		if !strings.Contains(layout.Value, StylesheetTag) {
			log.Warn("Layout has no <head> tag, stylesheet not linked")
		}
		return nil
	}
	if _, err := s.client.PutAsset(ctx, themeID, LayoutKey, updated); err != nil {
		return fmt.Errorf("failed to inject CSS tag into %s: %w", LayoutKey, err)
	}
	log.Info("Stylesheet linked from layout")
	return nil
}

// Revert writes the newest backup of each snippet back to the theme, then removes
// the stylesheet and its layout tag. Cleanup failures end up in Warnings.
func (s *ThemeService) Revert(ctx context.Context) (*RevertResult, error) {
	theme, err := s.mainTheme(ctx)
	if err != nil {
		return nil, err
	}
	shop := s.client.ShopDomain()
	log := s.logger.With(zap.String("shop", shop), zap.Int64("theme_id", theme.ID))

	result := &RevertResult{
		Success:  true,
		Message:  revertedMessage,
		ThemeID:  theme.ID,
		Restored: []string{},
		Warnings: []string{},
	}

	for _, key := range restoreOrder {
		rec, err := s.backups.Latest(ctx, shop, theme.ID, key)
		if err != nil {
			var notFound *apperrors.ErrNotFound
			if errors.As(err, &notFound) {
				return nil, &apperrors.ErrNotFound{Resource: "backup", ID: key}
			}
			return nil, err
		}
		content, err := s.backups.Read(ctx, rec)
		if err != nil {
			return nil, err
		}
		if _, err := s.client.PutAsset(ctx, theme.ID, key, content); err != nil {
			return nil, fmt.Errorf("failed to restore %s: %w", key, err)
		}
		log.Info("Snippet restored", zap.String("asset_key", key), zap.String("backup", rec.Filename))
		result.Restored = append(result.Restored, key)
	}

	if err := s.client.DeleteAsset(ctx, theme.ID, StylesheetAssetKey); err != nil {
		log.Warn("Failed to remove stylesheet asset", zap.Error(err))
		result.Warnings = append(result.Warnings, fmt.Sprintf("remove %s: %v", StylesheetAssetKey, err))
	}

	layout, err := s.client.GetAsset(ctx, theme.ID, LayoutKey)
	var notFound *apperrors.ErrNotFound
	switch {
	case errors.As(err, &notFound):
		// nothing to clean
	case err != nil:
		log.Warn("Failed to fetch layout for cleanup", zap.Error(err))
		result.Warnings = append(result.Warnings, fmt.Sprintf("fetch %s: %v", LayoutKey, err))
	default:
		if cleaned, changed := removeStylesheetTag(layout.Value); changed {
			if _, err := s.client.PutAsset(ctx, theme.ID, LayoutKey, cleaned); err != nil {
				log.Warn("Failed to clean layout", zap.Error(err))
				result.Warnings = append(result.Warnings, fmt.Sprintf("clean %s: %v", LayoutKey, err))
			} else {
				log.Info("Stylesheet tag removed from layout")
			}
		}
	}

	return result, nil
}

// Backups lists the backup records kept for the main theme, newest first.
func (s *ThemeService) Backups(ctx context.Context) (int64, []backup.Record, error) {
	theme, err := s.mainTheme(ctx)
	if err != nil {
		return 0, nil, err
	}
	records, err := s.backups.List(ctx, s.client.ShopDomain(), theme.ID)
	if err != nil {
		return 0, nil, err
	}
	if records == nil {
		records = []backup.Record{}
	}
	return theme.ID, records, nil
}

// LatestBackup returns the newest backup of one asset of the main theme along with its content.
func (s *ThemeService) LatestBackup(ctx context.Context, assetKey string) (*backup.Record, string, error) {
	theme, err := s.mainTheme(ctx)
	if err != nil {
		return nil, "", err
	}
	rec, err := s.backups.Latest(ctx, s.client.ShopDomain(), theme.ID, assetKey)
	if err != nil {
		return nil, "", err
	}
	content, err := s.backups.Read(ctx, rec)
	if err != nil {
		return nil, "", err
	}
	return rec, content, nil
}
