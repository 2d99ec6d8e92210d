// Package catalog lists showcase posts from the content backend and turns
// them into playable tracks.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	apperr "github.com/tessro/showcase/internal/errors"
)

const (
	// Retry configuration for transient errors
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client talks to the backend's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        logrus.FieldLogger
	retryWait  time.Duration
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log.WithField("component", "catalog"),
		retryWait:  baseRetryWait,
	}
}

// ListPosts fetches posts filtered by type and status. Empty filters are
// left out.
func (c *Client) ListPosts(ctx context.Context, postType, status string) ([]Post, error) {
	params := url.Values{}
	if postType != "" {
		params.Set("type", postType)
	}
	if status != "" {
		params.Set("status", status)
	}

	var posts []Post
	if err := c.get(ctx, "/posts/list.php", params, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}
	log := c.log.WithField("url", fullURL)
	log.Debug("GET")

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Wait before retry (skip on first attempt)
		if attempt > 0 {
			wait := c.retryWait * time.Duration(1<<(attempt-1)) // exponential backoff
			log.WithError(lastErr).Debugf("retry %d/%d after %v", attempt, maxRetries, wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			continue // Retry on network error
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		log.Debugf("response: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))

		// Retry on 5xx server errors
		if resp.StatusCode >= 500 {
			lastErr = apiError(resp.StatusCode, body)
			continue
		}

		// Don't retry 4xx errors
		if resp.StatusCode >= 400 {
			return apiError(resp.StatusCode, body)
		}

		if result != nil && len(body) > 0 {
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: request failed after %d retries: %w", apperr.ErrBackendUnavailable, maxRetries, lastErr)
}

func apiError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}
