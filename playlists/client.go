/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playlists

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a ytmusicapi-compatible JSON bridge.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	backoff    time.Duration
}

var _ Catalog = (*Client)(nil)

func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
}

// WithRetry overrides the retry policy.
func (c *Client) WithRetry(maxRetries int, backoff time.Duration) *Client {
	c.maxRetries = maxRetries
	c.backoff = backoff
	return c
}

func (c *Client) MoodCategories(ctx context.Context) (MoodCategories, error) {
	var out MoodCategories
	if err := c.getJSON(ctx, "/moods", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MoodPlaylists(ctx context.Context, params string) ([]MoodGroup, error) {
	var out []MoodGroup
	if err := c.getJSON(ctx, "/moods/playlists", url.Values{"params": {params}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchPlaylists(ctx context.Context, query string, limit int) ([]RawPlaylist, error) {
	q := url.Values{
		"q":      {query},
		"filter": {"playlists"},
		"limit":  {strconv.Itoa(limit)},
	}

	var out []RawPlaylist
	if err := c.getJSON(ctx, "/search", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", path, err)
	}

	return nil
}
