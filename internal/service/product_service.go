package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
	"github.com/Muneebkh2/shopify-iframe-app/internal/repository"
	"github.com/Muneebkh2/shopify-iframe-app/internal/shopify"
)

type ProductService struct {
	client   *shopify.Client
	sessions repository.SessionRepository
	logger   *zap.Logger
}

// NewProductService creates a new product reader
func NewProductService(client *shopify.Client, repos *repository.Repositories, logger *zap.Logger) *ProductService {
	s := &ProductService{client: client, logger: logger}
	if repos != nil {
		s.sessions = repos.Session
	}
	return s
}

type productsPage struct {
	Products struct {
		PageInfo struct {
			HasNextPage bool   `json:"hasNextPage"`
			EndCursor   string `json:"endCursor"`
		} `json:"pageInfo"`
		Edges []struct {
			Node struct {
				ID         string `json:"id"`
				Title      string `json:"title"`
				Metafields struct {
					Edges []struct {
						Node domain.Metafield `json:"node"`
					} `json:"edges"`
				} `json:"metafields"`
				Variants struct {
					Edges []struct {
						Node domain.Variant `json:"node"`
					} `json:"edges"`
				} `json:"variants"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

// List walks every product page and returns the products with only their
// iframe_url metafield kept. A failing page fails the whole list.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	client, err := adminClient(ctx, s.client, s.sessions, s.logger)
	if err != nil {
		return nil, err
	}

	products := []domain.Product{}
	var cursor *string
	pages := 0
	for {
		vars := map[string]interface{}{"first": shopify.ProductsPageSize}
		if cursor != nil {
			vars["after"] = *cursor
		}

		resp, err := client.Execute(ctx, shopify.ProductsWithMetafieldsQuery, vars)
		if err != nil {
			return nil, fmt.Errorf("products page %d: %w", pages+1, err)
		}
		var page productsPage
		if err := json.Unmarshal(resp.Data, &page); err != nil {
			return nil, fmt.Errorf("parse products page %d: %w", pages+1, err)
		}
		pages++

		for _, edge := range page.Products.Edges {
			p := domain.Product{
				ID:         edge.Node.ID,
				Title:      edge.Node.Title,
				Metafields: []domain.Metafield{},
				Variants:   []domain.Variant{},
			}
			for _, m := range edge.Node.Metafields.Edges {
				if m.Node.IsIframeURL() {
					p.Metafields = append(p.Metafields, m.Node)
				}
			}
			for _, v := range edge.Node.Variants.Edges {
				p.Variants = append(p.Variants, v.Node)
			}
			products = append(products, p)
		}

		info := page.Products.PageInfo
		if !info.HasNextPage || info.EndCursor == "" {
			break
		}
		next := info.EndCursor
		cursor = &next
	}

	s.logger.Debug("Products listed",
		zap.String("shop", client.ShopDomain()),
		zap.Int("count", len(products)),
		zap.Int("pages", pages),
	)
	return products, nil
}
