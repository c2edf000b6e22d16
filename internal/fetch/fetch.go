// Package fetch provides the HTTP client used to talk to the wiki API and to download images.
// This package centralizes request identity, TLS leniency and timeouts.
package fetch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultTextTimeout bounds requests for text and JSON documents.
	DefaultTextTimeout = 20 * time.Second
	// DefaultBytesTimeout bounds binary downloads.
	DefaultBytesTimeout = 25 * time.Second
	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes = 32 << 20
)

// DefaultUserAgent is a desktop browser identity; some wiki CDNs refuse bare clients.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	UserAgent    string
	TextTimeout  time.Duration
	BytesTimeout time.Duration
	MaxBodyBytes int64
	// Insecure disables TLS certificate verification.
	Insecure bool
	Headers  map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		UserAgent:    DefaultUserAgent,
		TextTimeout:  DefaultTextTimeout,
		BytesTimeout: DefaultBytesTimeout,
		MaxBodyBytes: DefaultMaxBodyBytes,
		Insecure:     true,
	}
}

// Result holds the raw body of a successful fetch.
type Result struct {
	URL         string
	Body        []byte
	ContentType string
	StatusCode  int
}

// Client issues GET requests with a fixed identity. It is safe to reuse.
type Client struct {
	http    *http.Client
	options Options
}

// NewClient creates a client. A nil opts uses DefaultOptions.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.TextTimeout <= 0 {
		o.TextTimeout = DefaultTextTimeout
	}
	if o.BytesTimeout <= 0 {
		o.BytesTimeout = DefaultBytesTimeout
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	//nolint:gosec // wiki mirrors and CDNs are frequently misconfigured; verification is opt-in
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: o.Insecure}

	return &Client{
		http:    &http.Client{Transport: transport},
		options: o,
	}
}

// Options returns a copy of the effective options.
func (c *Client) Options() Options {
	return c.options
}

// Text retrieves a document and returns it decoded as UTF-8 text.
// Invalid byte sequences are kept as-is rather than failing the request.
func (c *Client) Text(ctx context.Context, urlStr string) (string, error) {
	result, err := c.get(ctx, urlStr, c.options.TextTimeout, "application/json")
	if err != nil {
		return "", err
	}
	return string(result.Body), nil
}

// JSON retrieves a document and decodes it into v.
func (c *Client) JSON(ctx context.Context, urlStr string, v any) error {
	text, err := c.Text(ctx, urlStr)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return &Error{
			URL:     urlStr,
			Message: "failed to decode JSON response",
			Cause:   err,
		}
	}
	return nil
}

// Bytes downloads a binary resource and returns it with the server's content-type header.
func (c *Client) Bytes(ctx context.Context, urlStr string) ([]byte, string, error) {
	result, err := c.get(ctx, urlStr, c.options.BytesTimeout, "")
	if err != nil {
		return nil, "", err
	}
	return result.Body, result.ContentType, nil
}

func (c *Client) get(ctx context.Context, urlStr string, timeout time.Duration, accept string) (*Result, error) {
	// Validate URL
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", c.options.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	for key, value := range c.options.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.options.MaxBodyBytes+1))
	if err != nil {
		return nil, &Error{
			URL:        urlStr,
			Message:    "failed to read response body",
			StatusCode: resp.StatusCode,
			Cause:      err,
		}
	}
	if int64(len(body)) > c.options.MaxBodyBytes {
		return nil, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("response body exceeds %d bytes", c.options.MaxBodyBytes),
			StatusCode: resp.StatusCode,
		}
	}

	return &Result{
		URL:         urlStr,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}
