package search

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pricehound/logger"
	"pricehound/pkg/errors"
	"pricehound/services/cache"
)

// TavilyClient implements Client against a Tavily-style search endpoint.
// Responses are cached in the shared cache service to keep repeated queries
// off the rate-limited API.
type TavilyClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	cache      cache.CacheService
	cacheTTL   time.Duration
	log        *logger.Logger
}

// NewTavilyClient creates a search client. cacheSvc may be nil to disable
// response caching.
func NewTavilyClient(apiURL, apiKey string, timeout time.Duration, cacheSvc cache.CacheService, cacheTTL time.Duration) *TavilyClient {
	return &TavilyClient{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cacheSvc,
		cacheTTL:   cacheTTL,
		log:        logger.ForSearch(),
	}
}

type searchPayload struct {
	APIKey            string   `json:"api_key"`
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	MaxResults        int      `json:"max_results"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	IncludeRawContent bool     `json:"include_raw_content"`
	IncludeImages     bool     `json:"include_images"`
}

// Resolve returns the single best URL for the query on one domain
func (c *TavilyClient) Resolve(ctx context.Context, query, domain string) (string, error) {
	resp, err := c.Search(ctx, query, []string{domain}, 5)
	if err != nil {
		return "", errors.NewResolution(domain, "search for candidate URL failed", err)
	}
	for _, r := range resp.Results {
		if r.URL != "" && strings.Contains(r.URL, domain) {
			return r.URL, nil
		}
	}
	return "", nil
}

// Search runs a multi-result query restricted to the given domains
func (c *TavilyClient) Search(ctx context.Context, query string, domains []string, maxResults int) (*Response, error) {
	payload := searchPayload{
		APIKey:            c.apiKey,
		Query:             query,
		SearchDepth:       "basic",
		MaxResults:        maxResults,
		IncludeDomains:    domains,
		IncludeRawContent: true,
		IncludeImages:     true,
	}

	body, err := c.doRequest(ctx, payload)
	if err != nil {
		return nil, err
	}

	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &response, nil
}

// doRequest posts the payload, going through the response cache first
func (c *TavilyClient) doRequest(ctx context.Context, payload searchPayload) ([]byte, error) {
	key := c.cacheKey(payload)
	if c.cache != nil {
		if cached, err := c.cache.Get(key); err == nil {
			c.log.Debug().Str("query", payload.Query).Msg("Search cache hit")
			return cached, nil
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewTransport("", "search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewTransport("", fmt.Sprintf("search API returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(key, body, c.cacheTTL); err != nil {
			c.log.Debug().Err(err).Msg("Failed to cache search response")
		}
	}
	return body, nil
}

// cacheKey hashes everything that shapes the response except the API key
func (c *TavilyClient) cacheKey(payload searchPayload) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%v", payload.Query, strings.Join(payload.IncludeDomains, ","), payload.MaxResults, payload.IncludeRawContent)
	return "search:" + hex.EncodeToString(h.Sum(nil))[:32]
}
