package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/config"
	"github.com/Muneebkh2/shopify-iframe-app/internal/repository"
	"github.com/Muneebkh2/shopify-iframe-app/internal/shopify"
)

// AccessReport compares the scopes the app asks for with what the token holds.
type AccessReport struct {
	Shop     string   `json:"shop"`
	Granted  []string `json:"granted"`
	Required []string `json:"required"`
	Missing  []string `json:"missing"`
}

// OK reports whether every required scope is granted.
func (r *AccessReport) OK() bool { return len(r.Missing) == 0 }

type AccessService struct {
	required []string
	client   *shopify.Client
	repos    *repository.Repositories
	logger   *zap.Logger
}

func NewAccessService(app config.AppConfig, client *shopify.Client, repos *repository.Repositories, logger *zap.Logger) *AccessService {
	return &AccessService{
		required: app.Scopes,
		client:   client,
		repos:    repos,
		logger:   logger,
	}
}

// Check asks Shopify which scopes the current token holds.
// A write_X grant implies read_X.
func (s *AccessService) Check(ctx context.Context) (*AccessReport, error) {
	client, err := adminClient(ctx, s.client, s.repos.Session, s.logger)
	if err != nil {
		return nil, err
	}

	resp, err := client.Execute(ctx, shopify.AccessScopesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query access scopes: %w", err)
	}

	var data struct {
		CurrentAppInstallation struct {
			AccessScopes []struct {
				Handle string `json:"handle"`
			} `json:"accessScopes"`
		} `json:"currentAppInstallation"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode access scopes: %w", err)
	}

	granted := make(map[string]bool)
	report := &AccessReport{
		Shop:     client.ShopDomain(),
		Granted:  []string{},
		Required: append([]string{}, s.required...),
		Missing:  []string{},
	}
	for _, scope := range data.CurrentAppInstallation.AccessScopes {
		granted[scope.Handle] = true
		report.Granted = append(report.Granted, scope.Handle)
	}
	sort.Strings(report.Granted)

	for _, scope := range s.required {
		if granted[scope] {
			continue
		}
		if resource, ok := strings.CutPrefix(scope, "read_"); ok && granted["write_"+resource] {
			continue
		}
		report.Missing = append(report.Missing, scope)
	}

	if !report.OK() {
		s.logger.Warn("Token is missing required scopes",
			zap.String("shop", report.Shop),
			zap.Strings("missing", report.Missing),
		)
	}
	return report, nil
}
