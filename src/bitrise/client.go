// Package bitrise provides a client for the Bitrise v0.1 REST API.
package bitrise

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the base URL for the Bitrise API.
	DefaultBaseURL = "https://api.bitrise.io/v0.1"

	userAgent = "bitrise-mcp/1.0"
)

// Client is a Bitrise API client. It is safe for concurrent use; it holds
// no mutable state after construction.
type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(base, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client. Operators needing
// custom timeouts configure this rather than the Client itself.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Bitrise API client.
func NewClient(apiToken string, opts ...Option) *Client {
	c := &Client{
		apiToken: apiToken,
		baseURL:  DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request describes one API call. Path is relative to the base URL with all
// path parameters already substituted. Body, when non-nil, is marshalled
// to JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Do performs exactly one HTTP request and returns the response body
// verbatim. Error taxonomy: ErrMissingToken before any network activity,
// *CancelledError on caller cancellation, *TransportError when the network
// call fails, *RemoteError on a non-success status.
func (c *Client) Do(ctx context.Context, r Request) (string, error) {
	if c.apiToken == "" {
		return "", ErrMissingToken
	}
	if err := ctx.Err(); err != nil {
		return "", &CancelledError{OutcomeUnknown: false, Err: err}
	}

	u := c.baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var bodyReader io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return "", fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u, bodyReader)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request may already have been written to the wire when the
		// context fires, so the remote outcome is unknown.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return "", &CancelledError{OutcomeUnknown: true, Err: err}
		}
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return "", &CancelledError{OutcomeUnknown: true, Err: err}
		}
		return "", &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return string(body), nil
}

// Get is a convenience wrapper for retrieval-style calls with no query
// parameters, used by the build monitor and log processor.
func (c *Client) Get(ctx context.Context, path string) (string, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path})
}

// FetchURL retrieves an absolute URL (e.g. an expiring raw log URL) without
// attaching the Authorization header; these URLs are pre-signed.
func (c *Client) FetchURL(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return "", &CancelledError{OutcomeUnknown: true, Err: err}
		}
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return string(body), nil
}
