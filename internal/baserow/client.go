// Package baserow provides a client for the Baserow database rows API.
package baserow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/petrolnearme/petrolnearme/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the hosted Baserow API.
	DefaultBaseURL = "https://api.baserow.io"

	// DefaultPageSize is the number of rows requested per page.
	DefaultPageSize = 100

	// ProviderName identifies this provider.
	ProviderName = "baserow"

	// maxBodySnippet caps how much of an error response body is kept.
	maxBodySnippet = 2048
)

// Row is a single table row as returned by the API. Field keys are the
// user-facing field names when available, or field_<id> identifiers.
type Row map[string]any

// RemoteFetchError is returned when the table API answers with a
// non-success status that retries could not recover from.
type RemoteFetchError struct {
	StatusCode int
	Body       string
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("baserow: fetch failed with status %d", e.StatusCode)
}

// ClientConfig holds configuration for the Baserow client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// Token is the database token sent on every request.
	Token string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 15s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Baserow database rows API client.
type Client struct {
	baseURL    string
	token      string
	httpClient HTTPDoer
}

// NewClient creates a new Baserow client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      4,
			InitialInterval: 1 * time.Second,
			MaxInterval:     30 * time.Second,
		})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
	}
}

// API response types (from the Baserow list rows endpoint).

type listRowsResponse struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results *[]Row  `json:"results"`
}

// FetchAllRows retrieves every row of the table by walking the cursor
// pagination. The "next" URL from each response is followed exactly as
// given rather than being rebuilt from page numbers, so server-side
// changes to the cursor format keep working. Any page failing after
// retries fails the whole fetch; partial results are never returned.
func (c *Client) FetchAllRows(ctx context.Context, tableID string, pageSize int) ([]Row, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	url := fmt.Sprintf("%s/api/database/rows/table/%s/?user_field_names=true&size=%d",
		c.baseURL, tableID, pageSize)

	var allRows []Row
	for url != "" {
		rows, next, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, err
		}
		allRows = append(allRows, rows...)
		url = next
	}

	return allRows, nil
}

// fetchPage fetches a single page of rows and returns the next page URL,
// or an empty string on the last page.
func (c *Client) fetchPage(ctx context.Context, url string) ([]Row, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch rows: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet))
		return nil, "", &RemoteFetchError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var result listRowsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("decode rows response: %w", err)
	}
	if result.Results == nil {
		return nil, "", fmt.Errorf("decode rows response: missing results array")
	}

	next := ""
	if result.Next != nil {
		next = *result.Next
	}

	return *result.Results, next, nil
}
