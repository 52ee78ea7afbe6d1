package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/config"
)

type Client struct {
	shopDomain  string
	shopURL     string
	overridden  bool
	accessToken string
	apiVersion  string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a Shopify Admin API client for cfg.ShopDomain authenticated
// with cfg.AccessToken. cfg.BaseURL replaces https://{shop} when set.
func NewClient(cfg config.ShopifyConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	shopDomain := config.NormalizeShopDomain(cfg.ShopDomain)
	shopURL := "https://" + shopDomain
	if cfg.BaseURL != "" {
		shopURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &Client{
		shopDomain:  shopDomain,
		shopURL:     shopURL,
		overridden:  cfg.BaseURL != "",
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// ForShop returns a copy of the client bound to another shop and token. A BaseURL
// override on the original client is kept.
func (c *Client) ForShop(shopDomain, accessToken string) *Client {
	cp := *c
	cp.shopDomain = config.NormalizeShopDomain(shopDomain)
	if !c.overridden {
		cp.shopURL = "https://" + cp.shopDomain
	}
	cp.accessToken = accessToken
	return &cp
}

// WithAccessToken returns a copy of the client using token.
func (c *Client) WithAccessToken(token string) *Client {
	cp := *c
	cp.accessToken = token
	return &cp
}

func (c *Client) ShopDomain() string { return c.shopDomain }

// HasAccessToken reports whether requests will carry a token.
func (c *Client) HasAccessToken() bool { return c.accessToken != "" }

func (c *Client) apiURL(path string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.shopURL, c.apiVersion, strings.TrimPrefix(path, "/"))
}

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

// Execute executes a GraphQL query/mutation
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) (*GraphQLResponse, error) {
	reqBody := GraphQLRequest{
		Query:     query,
		Variables: variables,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.apiURL("graphql.json"), jsonData)
	if err != nil {
		return nil, err
	}

	var graphQLResp GraphQLResponse
	if err := json.Unmarshal(body, &graphQLResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}

	if len(graphQLResp.Errors) > 0 {
		errorMessages := make([]string, len(graphQLResp.Errors))
		for i, err := range graphQLResp.Errors {
			errorMessages[i] = err.Message
		}
		return nil, fmt.Errorf("graphQL errors: %s", strings.Join(errorMessages, "; "))
	}

	return &graphQLResp, nil
}

// APIError is a non-2xx answer from the Admin API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("shopify API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("shopify API error: status %d, body: %s", e.StatusCode, e.Body)
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("Shopify API returned non-2xx",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return body, nil
}
