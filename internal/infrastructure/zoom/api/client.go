// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

// Package api implements the low-level Zoom REST client used by the join
// service. Calls carry no business logic; they return raw responses with
// the HTTP status preserved so callers can react to conflicts and limits.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/joinflow/webinar-join-service/internal/logging"
)

// ClientAPI defines the interface for Zoom API operations.
// This allows for easy mocking and testing of the Zoom client.
type ClientAPI interface {
	GetWebinar(ctx context.Context, webinarID string) (*GetWebinarResponse, error)
	ListRegistrants(ctx context.Context, webinarID string, query ListRegistrantsQuery) (*RegistrantsPageResponse, error)
	CreateRegistrant(ctx context.Context, webinarID string, request *CreateRegistrantRequest) (*CreateRegistrantResponse, error)
}

const (
	// BaseURL is the base URL for the Zoom API
	BaseURL = "https://api.zoom.us/v2"
	// AuthURL is the OAuth token endpoint
	AuthURL = "https://zoom.us/oauth/token"
	// DefaultClientTimeout is the default HTTP client timeout for Zoom API requests
	DefaultClientTimeout = 30 * time.Second
	// Default retry configuration
	DefaultMaxRetries        = 3
	DefaultInitialBackoff    = 1 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// Client represents a Zoom API client
type Client struct {
	httpClient  *http.Client
	config      Config
	oauthConfig *clientcredentials.Config
}

// Config holds the configuration for the Zoom client
type Config struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override auth URL for testing
	AuthURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: retry configuration
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// Ensure that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new Zoom API client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.AuthURL == "" {
		config.AuthURL = AuthURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = DefaultInitialBackoff
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = DefaultMaxBackoff
	}
	if config.BackoffMultiplier == 0 {
		config.BackoffMultiplier = DefaultBackoffMultiplier
	}

	// Zoom server-to-server OAuth requires the account_credentials grant
	// plus the account ID as endpoint parameters.
	oauthConfig := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     config.AuthURL,
		EndpointParams: url.Values{
			"grant_type": []string{"account_credentials"},
			"account_id": []string{config.AccountID},
		},
		AuthStyle: oauth2.AuthStyleInParams,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:      config,
		oauthConfig: oauthConfig,
	}
}

// getAuthenticatedClient returns an HTTP client that automatically handles
// OAuth2 authentication. Token exchange failures surface as transport errors
// on the calling request; they are not retried separately.
func (c *Client) getAuthenticatedClient(ctx context.Context) *http.Client {
	ts := c.oauthConfig.TokenSource(ctx)
	return &http.Client{
		Timeout: c.config.Timeout,
		Transport: &oauth2.Transport{
			Base:   otelhttp.NewTransport(http.DefaultTransport),
			Source: ts,
		},
	}
}

// shouldRetry determines if an error or HTTP status code should be retried
func shouldRetry(statusCode int, err error) bool {
	// Don't retry if context was cancelled
	if err != nil {
		if ctx, ok := err.(interface{ Err() error }); ok {
			if ctx.Err() == context.Canceled || ctx.Err() == context.DeadlineExceeded {
				return false
			}
		}
	}

	// Retry on network/connection errors
	if err != nil {
		return true
	}

	// Retry on server errors (5xx)
	if statusCode >= 500 && statusCode < 600 {
		return true
	}

	// Retry on rate limiting (429)
	if statusCode == http.StatusTooManyRequests {
		return true
	}

	// Don't retry on client errors (4xx)
	return false
}

// calculateBackoff calculates the backoff duration for a retry attempt with jitter
func (c *Client) calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return c.config.InitialBackoff
	}

	backoff := float64(c.config.InitialBackoff) * math.Pow(c.config.BackoffMultiplier, float64(attempt))
	if time.Duration(backoff) > c.config.MaxBackoff {
		backoff = float64(c.config.MaxBackoff)
	}

	// Add jitter (±25% of backoff duration) to prevent thundering herd
	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	backoffWithJitter := time.Duration(backoff + jitter)
	if backoffWithJitter < c.config.InitialBackoff {
		backoffWithJitter = c.config.InitialBackoff
	}

	return backoffWithJitter
}

// doRequest performs an authenticated HTTP request to the Zoom API with retry logic
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	requestURL := c.config.BaseURL + path
	var lastErr error
	var lastResp *http.Response

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		var bodyReader io.Reader
		if jsonBody != nil {
			bodyReader = bytes.NewReader(jsonBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		slog.DebugContext(ctx, "making Zoom API request",
			"method", method,
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.config.MaxRetries,
		)

		startTime := time.Now()
		resp, err := c.getAuthenticatedClient(ctx).Do(req)
		duration := time.Since(startTime)

		if err == nil && resp != nil && resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
			slog.DebugContext(ctx, "Zoom API request completed",
				"method", method,
				"path", path,
				"status", resp.StatusCode,
				"duration", duration.String(),
				"attempt", attempt+1,
			)
			return resp, nil
		}

		if lastResp != nil && resp != nil {
			_ = lastResp.Body.Close()
		}
		lastErr = err
		if resp != nil {
			lastResp = resp
		}

		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}

		if !shouldRetry(statusCode, err) {
			slog.ErrorContext(ctx, "Zoom API request failed (not retryable)",
				"method", method,
				"path", path,
				"status", statusCode,
				"duration", duration.String(),
				"attempt", attempt+1,
				logging.ErrKey, err)
			break
		}

		if attempt < c.config.MaxRetries {
			backoff := c.calculateBackoff(attempt)
			slog.WarnContext(ctx, "Zoom API request failed, retrying",
				"method", method,
				"path", path,
				"status", statusCode,
				"duration", duration.String(),
				"attempt", attempt+1,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff.String(),
				logging.ErrKey, err)

			select {
			case <-ctx.Done():
				if lastResp != nil {
					_ = lastResp.Body.Close()
				}
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		} else {
			slog.ErrorContext(ctx, "Zoom API request failed after all retries",
				"method", method,
				"path", path,
				"status", statusCode,
				"duration", duration.String(),
				"attempts", attempt+1,
				logging.ErrKey, err,
				logging.PriorityCritical())
		}
	}

	if lastErr != nil {
		if lastResp != nil {
			_ = lastResp.Body.Close()
		}
		return nil, fmt.Errorf("request failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
	}

	// Preserve the body of the final error response for parsing and logging.
	if lastResp != nil && lastResp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(lastResp.Body)
		_ = lastResp.Body.Close()
		lastResp.Body = io.NopCloser(bytes.NewReader(body))
		slog.ErrorContext(ctx, "Zoom API error response",
			"method", method,
			"path", path,
			"status", lastResp.StatusCode,
			"body", string(body),
			logging.ErrKey, fmt.Errorf("status: %d", lastResp.StatusCode))
	}

	return lastResp, nil
}

// Error is a Zoom API error response with the HTTP status preserved, so
// callers can tell conflicts (400/409) and rate limits (429) apart from
// other failures.
type Error struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("zoom API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("zoom API error (status %d)", e.StatusCode)
}

// parseErrorResponse builds an *Error from a non-2xx response body
func parseErrorResponse(statusCode int, body []byte) *Error {
	var errResp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &Error{StatusCode: statusCode, Code: errResp.Code, Message: errResp.Message}
	}
	return &Error{StatusCode: statusCode, Message: string(body)}
}
