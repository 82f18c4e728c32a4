// Package repo wraps the observability platform's HTTP APIs and maps their
// native payloads into the normalized record envelope consumed by the
// investigation engine.
package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/obskit/obsctl/internal/cache"
	"github.com/obskit/obsctl/internal/retry"
)

const (
	defaultSite      = "us1.obskit.io"
	defaultTimeout   = 10 * time.Second
	defaultRateLimit = 8
	defaultRateBurst = 4

	apiKeyHeader = "OBS-API-KEY"
	appKeyHeader = "OBS-APPLICATION-KEY"
)

// ClientConfig carries credentials and transport tuning for the platform API.
type ClientConfig struct {
	// Site selects the regional endpoint; the base URL becomes
	// https://api.<site>. BaseURL overrides it entirely when set.
	Site    string
	BaseURL string
	APIKey  string
	AppKey  string
	Timeout time.Duration
	// RateLimit bounds outgoing requests per second; RateBurst allows short
	// bursts above it.
	RateLimit float64
	RateBurst int
}

// Client is an HTTP JSON client for the platform API with client-side rate
// limiting and a read-through cache for idempotent lookups.
type Client struct {
	baseURL    string
	apiKey     string
	appKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.Provider
	logger     *slog.Logger
}

// NewClient constructs a platform API client.
func NewClient(cfg ClientConfig, provider cache.Provider, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == nil {
		provider = cache.NoopProvider{}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		site := cfg.Site
		if site == "" {
			site = defaultSite
		}
		baseURL = "https://api." + site
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = defaultRateBurst
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		appKey:     cfg.AppKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(limit), burst),
		cache:      provider,
		logger:     logger,
	}
}

func (c *Client) resolvePath(p string, query url.Values) string {
	cleaned := "/" + strings.TrimLeft(p, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	u.Path = path.Join(u.Path, cleaned)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, p string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, c.resolvePath(p, query), nil, out)
}

// cachedGetJSON is getJSON with a read-through cache keyed by the full URL.
// Only safe for idempotent inventory-style lookups.
func (c *Client) cachedGetJSON(ctx context.Context, p string, query url.Values, out any) error {
	endpoint := c.resolvePath(p, query)
	if data, err := c.cache.Get(ctx, endpoint); err == nil {
		return json.Unmarshal(data, out)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
		return err
	}
	if err := c.cache.Set(ctx, endpoint, raw); err != nil {
		c.logger.Debug("cache set failed", slog.String("endpoint", endpoint), slog.Any("error", err))
	}
	return json.Unmarshal(raw, out)
}

// postJSON issues a POST with a JSON payload and decodes the response.
func (c *Client) postJSON(ctx context.Context, p string, payload, out any) error {
	return c.do(ctx, http.MethodPost, c.resolvePath(p, nil), payload, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	if endpoint == "" {
		return fmt.Errorf("empty endpoint")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	if c.appKey != "" {
		req.Header.Set(appKeyHeader, c.appKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("platform api response",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Keep a short body tail for diagnostics.
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &retry.APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(tail))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
