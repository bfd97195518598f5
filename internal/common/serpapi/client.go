// internal/common/serpapi/client.go
package serpapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"deal-hunter/internal/common/config"
	"deal-hunter/internal/common/errors"
	"deal-hunter/internal/models"
)

const (
	EngineGoogleLens     = "google_lens"
	EngineGoogleShopping = "google_shopping"

	providerName = "serpapi"
	maxBodyBytes = 8 << 20
)

// Client calls the SerpApi JSON search endpoint for a single market.
type Client struct {
	apiKey     string
	baseURL    string
	market     config.MarketConfig
	httpClient *http.Client
}

// NewClient fails with a configuration error when no API key is configured.
func NewClient(cfg config.SerpAPIConfig, market config.MarketConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigurationError("serpapi.api_key")
	}
	timeout := config.GetDuration(cfg.Timeout)
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		market:     market,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// VisualMatches runs a reverse image search for imageURL. A response without a
// visual_matches field yields (nil, nil). Entries that are not JSON objects are
// dropped; everything else is returned untouched for normalization.
func (c *Client) VisualMatches(ctx context.Context, imageURL string) ([]models.RawVisualMatch, error) {
	params := url.Values{}
	params.Set("engine", EngineGoogleLens)
	params.Set("url", imageURL)
	params.Set("country", c.market.Country)
	params.Set("currency", c.market.CurrencyCode)

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	raw, ok := body["visual_matches"]
	if !ok {
		return nil, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil
	}

	matches := make([]models.RawVisualMatch, 0, len(entries))
	for _, entry := range entries {
		var m models.RawVisualMatch
		if err := json.Unmarshal(entry, &m); err != nil || m == nil {
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// ShoppingQuery describes a shopping search.
type ShoppingQuery struct {
	Query        string
	GoogleDomain string
	Language     string
}

// Shopping runs a shopping search. found is false when the response carries no
// shopping_results field. Malformed entries are skipped.
func (c *Client) Shopping(ctx context.Context, q ShoppingQuery) (results []models.ShoppingResult, found bool, err error) {
	params := url.Values{}
	params.Set("engine", EngineGoogleShopping)
	params.Set("q", q.Query)
	params.Set("google_domain", q.GoogleDomain)
	params.Set("gl", c.market.Country)
	params.Set("hl", q.Language)
	params.Set("currency", c.market.CurrencyCode)

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, false, err
	}

	raw, ok := body["shopping_results"]
	if !ok {
		return nil, false, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, nil
	}

	results = make([]models.ShoppingResult, 0, len(entries))
	for _, entry := range entries {
		var r models.ShoppingResult
		if err := json.Unmarshal(entry, &r); err != nil {
			continue
		}
		if r.Link == "" {
			r.Link = r.ProductLink
		}
		results = append(results, r)
	}
	return results, true, nil
}

func (c *Client) get(ctx context.Context, params url.Values) (map[string]json.RawMessage, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, errors.NewProviderError(providerName, fmt.Errorf("invalid base url: %w", err))
	}
	params.Set("api_key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errors.NewProviderError(providerName, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewProviderError(providerName, fmt.Errorf("%s request failed: %w", params.Get("engine"), redact(err)))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.NewProviderError(providerName, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewProviderError(providerName, fmt.Errorf("%s returned status %d", params.Get("engine"), resp.StatusCode))
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, errors.NewProviderError(providerName, fmt.Errorf("failed to unmarshal response: %w", err))
	}
	return body, nil
}

// redact drops the request URL, which carries the API key, from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
