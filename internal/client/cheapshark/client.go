// Package cheapshark queries the CheapShark price aggregation API.
package cheapshark

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = "https://www.cheapshark.com"
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// SearchGames looks up catalog entries whose title resembles the query.
func (c *Client) SearchGames(ctx context.Context, title string, limit int) ([]Game, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	query := url.Values{}
	query.Set("title", title)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.doRequest(ctx, "/api/1.0/games", query)
	if err != nil {
		return nil, err
	}
	return parseGames(body)
}

// SearchDeals returns current store deals for titles resembling the query.
// Each deal carries the store's normal (pre-discount) price.
func (c *Client) SearchDeals(ctx context.Context, title string, pageSize int) ([]Deal, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	query := url.Values{}
	query.Set("title", title)
	if pageSize > 0 {
		query.Set("pageSize", strconv.Itoa(pageSize))
	}
	body, err := c.doRequest(ctx, "/api/1.0/deals", query)
	if err != nil {
		return nil, err
	}
	return parseDeals(body)
}
