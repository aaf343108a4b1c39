package hrapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/semaphore"
)

type Config struct {
	BaseURL string

	// Token auth, sent as "Authorization: token key:secret".
	APIKey    string
	APISecret string

	// OAuth client credentials. Takes precedence over token auth when ClientID is set.
	OAuthClientID     string
	OAuthClientSecret string
	OAuthTokenURL     string

	Timeout       time.Duration
	MaxConcurrent int
	PageSize      int
}

const (
	defaultTimeout       = 30 * time.Second
	defaultMaxConcurrent = 4
	defaultPageSize      = 500
)

// Client is a minimal client for the HR system's /api/resource list endpoints.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	authHeader string
	sem        *semaphore.Weighted
	pageSize   int
}

// APIError is a non-2xx answer from the HR system.
type APIError struct {
	StatusCode int
	Resource   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hr api error [%d] %s: %s", e.StatusCode, e.Resource, e.Message)
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("hr api base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid hr api base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	c := &Client{
		baseURL:  base,
		http:     &http.Client{Timeout: cfg.Timeout},
		sem:      semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		pageSize: cfg.PageSize,
	}

	switch {
	case cfg.OAuthClientID != "":
		cc := &clientcredentials.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			TokenURL:     cfg.OAuthTokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout})
		c.http = cc.Client(ctx)
		c.http.Timeout = cfg.Timeout
	case cfg.APIKey != "":
		c.authHeader = fmt.Sprintf("token %s:%s", cfg.APIKey, cfg.APISecret)
	}

	return c, nil
}

// Filter is one [field, operator, value] condition of a resource query.
type Filter [3]any

// list fetches every page of a resource list into T.
func list[T any](ctx context.Context, c *Client, resource string, fields []string, filters []Filter) ([]T, error) {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	if filters == nil {
		filters = []Filter{}
	}
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("encode filters: %w", err)
	}

	var all []T
	for start := 0; ; start += c.pageSize {
		q := url.Values{}
		q.Set("fields", string(fieldsJSON))
		q.Set("filters", string(filtersJSON))
		q.Set("order_by", "name asc")
		q.Set("limit_start", strconv.Itoa(start))
		q.Set("limit_page_length", strconv.Itoa(c.pageSize))

		var page struct {
			Data []T `json:"data"`
		}
		if err := c.get(ctx, resource, q, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if len(page.Data) < c.pageSize {
			return all, nil
		}
	}
}

func (c *Client) get(ctx context.Context, resource string, query url.Values, dst any) error {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.sem.Release(1)

	u := c.baseURL.JoinPath("api", "resource", resource)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			StatusCode: resp.StatusCode,
			Resource:   resource,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}
