// Package hn is a small read-only client for the Hacker News Firebase API.
package hn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public HN API root.
const DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"

const maxBodyBytes = 4 << 20

// ErrNotFound is returned when the API answers an item request with null.
var ErrNotFound = errors.New("hn: item not found")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hn: %s returned status %d", e.URL, e.StatusCode)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond caps outgoing requests; <= 0 disables limiting.
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client fetches the top-story list and individual items.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient builds a Client from opts, filling in defaults.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	c := &Client{baseURL: base, client: httpClient}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c
}

// TopStories returns up to limit ids from the top-stories endpoint, in rank
// order. limit <= 0 returns the full list.
func (c *Client) TopStories(ctx context.Context, limit int) ([]int, error) {
	var ids []int
	if err := c.getJSON(ctx, c.baseURL+"/topstories.json", &ids); err != nil {
		return nil, err
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Item fetches a single item by id.
func (c *Client) Item(ctx context.Context, id int) (Item, error) {
	var item *Item
	if err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", c.baseURL, id), &item); err != nil {
		return Item{}, err
	}
	if item == nil {
		return Item{}, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return *item, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("hn: rate limiter wait failed: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("hn: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("hn: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("hn: failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("hn: failed to parse %s: %w", url, err)
	}
	return nil
}
