package shopify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var shopDomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]*\.myshopify\.com$`)

// IsValidShopDomain reports whether shop looks like name.myshopify.com.
func IsValidShopDomain(shop string) bool {
	return shopDomainPattern.MatchString(shop)
}

// AuthorizeURL builds the OAuth grant screen URL for shop.
func AuthorizeURL(shop, clientID string, scopes []string, redirectURI, state string) string {
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("scope", strings.Join(scopes, ","))
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	return fmt.Sprintf("https://%s/admin/oauth/authorize?%s", shop, q.Encode())
}

// AccessTokenResponse is the body of a successful code exchange.
type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// ExchangeCodeForToken trades an OAuth code for an offline access token for the
// client's shop.
func (c *Client) ExchangeCodeForToken(ctx context.Context, clientID, clientSecret, code string) (*AccessTokenResponse, error) {
	b, err := json.Marshal(map[string]string{
		"client_id":     clientID,
		"client_secret": clientSecret,
		"code":          code,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.shopURL+"/admin/oauth/access_token", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out AccessTokenResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("token exchange returned no access_token")
	}
	return &out, nil
}

// VerifyQueryHMAC checks the hmac parameter Shopify appends to OAuth redirects.
func VerifyQueryHMAC(q url.Values, secret string) bool {
	if secret == "" {
		return false
	}
	expected, err := hex.DecodeString(SignQuery(q, secret))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(q.Get("hmac"))
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}

// SignQuery returns the hex HMAC of the sorted query string without hmac and
// signature.
func SignQuery(q url.Values, secret string) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		if k == "hmac" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		for _, v := range q[k] {
			parts = append(parts, k+"="+v)
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookHMAC checks X-Shopify-Hmac-Sha256, the base64 HMAC of the raw body.
func VerifyWebhookHMAC(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(header)))
}

// SignWebhook computes the X-Shopify-Hmac-Sha256 value for body.
func SignWebhook(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// RegisterWebhook subscribes callbackURL to topic and returns the subscription id.
func (c *Client) RegisterWebhook(ctx context.Context, topic, callbackURL string) (string, error) {
	resp, err := c.Execute(ctx, WebhookSubscriptionCreateMutation, map[string]interface{}{
		"topic":       topic,
		"callbackUrl": callbackURL,
	})
	if err != nil {
		return "", fmt.Errorf("webhookSubscriptionCreate: %w", err)
	}

	var result struct {
		Create struct {
			WebhookSubscription *struct {
				ID string `json:"id"`
			} `json:"webhookSubscription"`
			UserErrors UserErrors `json:"userErrors"`
		} `json:"webhookSubscriptionCreate"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return "", fmt.Errorf("parse webhookSubscriptionCreate response: %w", err)
	}
	if err := result.Create.UserErrors.Err("webhookSubscriptionCreate"); err != nil {
		return "", err
	}
	if result.Create.WebhookSubscription == nil || result.Create.WebhookSubscription.ID == "" {
		return "", fmt.Errorf("no webhook id returned")
	}
	return result.Create.WebhookSubscription.ID, nil
}
