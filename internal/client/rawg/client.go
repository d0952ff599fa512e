// Package rawg queries the RAWG video game database API.
package rawg

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
	key        string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

// NewClient builds a client for the RAWG API. All endpoints require a key.
func NewClient(httpClient *http.Client, host, key string) *Client {
	if host == "" {
		host = "https://api.rawg.io"
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		key:        key,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.key)
	fullURL := c.host + path + "?" + query.Encode()
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

// SearchGames returns catalog entries matching the search text.
func (c *Client) SearchGames(ctx context.Context, search string, pageSize int) ([]GameSummary, error) {
	if search == "" {
		return nil, fmt.Errorf("search is required")
	}
	query := url.Values{}
	query.Set("search", search)
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}
	body, err := c.doRequest(ctx, "/api/games", query)
	if err != nil {
		return nil, err
	}
	return parseSearch(body)
}

// GetGame fetches full details for a game by slug or numeric id.
func (c *Client) GetGame(ctx context.Context, slug string) (*GameDetail, error) {
	if slug == "" {
		return nil, fmt.Errorf("slug is required")
	}
	body, err := c.doRequest(ctx, "/api/games/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, err
	}
	return parseDetail(body)
}
