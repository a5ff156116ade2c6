package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client downloads raw XML feeds from the goalserve feed API. Feed paths are
// appended to <baseURL>/<apiKey>/ and may carry their own query string.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a feed client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		maxRetries: 3,
		retryDelay: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WithRetries overrides the retry count and the base backoff delay
func (c *Client) WithRetries(maxRetries int, retryDelay time.Duration) *Client {
	c.maxRetries = maxRetries
	c.retryDelay = retryDelay
	return c
}

// URL returns the full address of a feed path
func (c *Client) URL(path string) string {
	path = strings.TrimLeft(path, "/")
	if c.apiKey == "" {
		return c.baseURL + "/" + path
	}
	return c.baseURL + "/" + c.apiKey + "/" + path
}

// Fetch downloads a feed with retry and exponential backoff.
// Only network errors and 429/502/503/504 responses are retried.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("path", path).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying feed request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, retry, err := c.fetchOnce(ctx, path, attempt)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, path string, attempt int) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(path), nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", "inplayrs-backoffice/1.0")

	log.Debug().
		Str("path", path).
		Int("attempt", attempt+1).
		Msg("Making feed request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		log.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("Feed request successful")
		return body, false, nil

	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		log.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempt+1).
			Msg("Received retryable error")
		return nil, true, fmt.Errorf("feed returned retryable status %d", resp.StatusCode)

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, false, fmt.Errorf("feed authentication failed (status %d)", resp.StatusCode)

	default:
		return nil, false, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}
}
