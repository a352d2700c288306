// Package providers fetches raw payloads from the public baseball data
// sources and parses them into model rows. Fetching and parsing are split so
// callers can cache the raw bytes.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	// ErrUnexpectedStatus is returned for any non-200 response.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrNotFound marks a 404, which is never retried.
	ErrNotFound = errors.New("resource not found")
	// ErrEmptyPayload is returned when a source answers with no usable rows.
	ErrEmptyPayload = errors.New("empty payload")
)

// ClientConfig tunes the shared HTTP client.
type ClientConfig struct {
	Timeout           time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// Client performs rate-limited GETs with a fixed number of attempts and a
// fixed delay between them.
type Client struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	retryAttempts int
	retryDelay    time.Duration
	userAgent     string
	logger        *logrus.Logger
}

func NewClient(cfg ClientConfig, logger *logrus.Logger) *Client {
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:       rate.NewLimiter(limit, 1),
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		userAgent:     cfg.UserAgent,
		logger:        logger,
	}
}

// Get fetches url and returns the body of a 200 response.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		body, err := c.do(ctx, url)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, ErrNotFound) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err

		c.logger.WithFields(logrus.Fields{
			"url":     url,
			"attempt": attempt,
			"of":      c.retryAttempts,
		}).WithError(err).Warn("Request failed")
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.retryAttempts, lastErr)
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"url":   url,
		"bytes": len(body),
	}).Debug("Fetched payload")
	return body, nil
}
