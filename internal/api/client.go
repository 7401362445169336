// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the REST client for the remote message API.
//
// The client performs single requests only; page-level retry, backoff and
// rate-limit pacing belong to the fetch package, which owns the paging
// policy.
package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/morganforge/chanmark/internal/model"
)

// Configuration constants for the message API.
const (
	// DefaultBaseURL is the base URL of the message API.
	DefaultBaseURL = "https://discord.com/api/v10"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// MaxPageSize is the largest page the messages endpoint serves.
	MaxPageSize = 100

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// sharedHTTPClient is the pooled HTTP client used for all API requests.
// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// Error variables for common API failures.
var (
	// ErrNotConfigured indicates no auth token is set.
	ErrNotConfigured = errors.New("API token not configured")

	// ErrForbidden indicates the token lacks permission to read the channel.
	ErrForbidden = errors.New("missing permissions")

	// ErrAuthFailed indicates the token was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotFound indicates the channel or guild does not exist.
	ErrNotFound = errors.New("not found")
)

// APIError represents a non-2xx response from the message API.
type APIError struct {
	Status  int
	Code    int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("API error [%d] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("API error (HTTP %d): %s", e.Status, e.Message)
}

// RateLimitError represents an HTTP 429 response. RetryAfter carries the
// server-indicated wait before the same request may be repeated.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// apiErrorBody is the JSON error envelope the API returns.
type apiErrorBody struct {
	Code       int     `json:"code"`
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after"` // seconds, present on 429
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the message API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a client authenticating with the given token. The
// token is sent verbatim in the Authorization header, so bot tokens must
// carry their "Bot " prefix. An empty token yields a client whose
// requests fail with ErrNotConfigured.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    DefaultBaseURL,
		httpClient: sharedHTTPClient,
		userAgent:  "chanmark/0.1.0",
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = trimTrailingSlash(u)
	return c
}

// WithHTTPClient sets a custom HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// NewHTTPClient returns an HTTP client with a custom request timeout
// that still shares the pooled transport. Non-positive timeouts select
// DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := *sharedHTTPClient
	hc.Timeout = timeout
	return &hc
}

// IsConfigured returns true if the client has a token configured.
func (c *Client) IsConfigured() bool {
	return c.token != ""
}

// Messages fetches one page of up to limit messages from a channel,
// newest first. A non-empty beforeID restricts the page to messages
// strictly older than that id.
func (c *Client) Messages(ctx context.Context, channelID string, limit int, beforeID string) ([]model.Message, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if beforeID != "" {
		q.Set("before", beforeID)
	}

	var page []model.Message
	endpoint := fmt.Sprintf("/channels/%s/messages?%s", url.PathEscape(channelID), q.Encode())
	if err := c.get(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	return page, nil
}

// Channel fetches channel metadata.
func (c *Client) Channel(ctx context.Context, channelID string) (*model.Channel, error) {
	var ch model.Channel
	if err := c.get(ctx, "/channels/"+url.PathEscape(channelID), &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// Guild fetches guild metadata.
func (c *Client) Guild(ctx context.Context, guildID string) (*model.Guild, error) {
	var g model.Guild
	if err := c.get(ctx, "/guilds/"+url.PathEscape(guildID), &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// get performs a single GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// setHeaders sets the required headers for API requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
}

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts HTTP error responses into typed errors.
func (c *Client) handleErrorResponse(resp *http.Response, body []byte) error {
	var errBody apiErrorBody
	_ = json.Unmarshal(body, &errBody) // best effort; fall back to raw body

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: retryAfter(resp, errBody)}
	case http.StatusForbidden:
		if errBody.Message != "" {
			return fmt.Errorf("%w: %s", ErrForbidden, errBody.Message)
		}
		return ErrForbidden
	case http.StatusUnauthorized:
		if errBody.Message != "" {
			return fmt.Errorf("%w: %s", ErrAuthFailed, errBody.Message)
		}
		return ErrAuthFailed
	case http.StatusNotFound:
		if errBody.Message != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, errBody.Message)
		}
		return ErrNotFound
	default:
		msg := errBody.Message
		if msg == "" {
			msg = string(body)
		}
		return &APIError{Status: resp.StatusCode, Code: errBody.Code, Message: msg}
	}
}

// defaultRetryAfter is the wait applied when a 429 carries no hint.
const defaultRetryAfter = 5 * time.Second

// retryAfter extracts the server-indicated wait from a 429 response,
// preferring the JSON body's retry_after (seconds) over the Retry-After
// header.
func retryAfter(resp *http.Response, errBody apiErrorBody) time.Duration {
	if errBody.RetryAfter > 0 {
		return time.Duration(errBody.RetryAfter * float64(time.Second))
	}
	if h := resp.Header.Get("Retry-After"); h != "" {
		if secs, err := strconv.ParseFloat(h, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return defaultRetryAfter
}

func trimTrailingSlash(u string) string {
	for len(u) > 0 && u[len(u)-1] == '/' {
		u = u[:len(u)-1]
	}
	return u
}
