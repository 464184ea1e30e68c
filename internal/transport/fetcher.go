package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// XSRFHeader is the header Tornado checks for its xsrf cookie value
const XSRFHeader = "X-XSRFToken"

const DefaultTimeout = 30 * time.Second

// Fetcher retrieves the raw body of a list call.
// The caller owns and must close the returned reader.
type Fetcher interface {
	Fetch(ctx context.Context, path string, params url.Values) (io.ReadCloser, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, path string, params url.Values) (io.ReadCloser, error)

func (f FetcherFunc) Fetch(ctx context.Context, path string, params url.Values) (io.ReadCloser, error) {
	return f(ctx, path, params)
}

type HTTPFetcher struct {
	baseURL   string
	client    *http.Client
	xsrfToken string
	limiter   *rate.Limiter
	headers   http.Header
}

type HTTPOption func(*HTTPFetcher)

// WithXSRFToken sends token with every request
func WithXSRFToken(token string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.xsrfToken = token
	}
}

// WithRateLimit throttles outgoing requests to rps per second.
// rps <= 0 disables throttling.
func WithRateLimit(rps float64) HTTPOption {
	return func(f *HTTPFetcher) {
		if rps <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

func WithHeader(key, value string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.headers.Set(key, value)
	}
}

func NewHTTPFetcher(baseURL string, opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewHTTPFetcherFromConfig builds a fetcher from env based configuration
func NewHTTPFetcherFromConfig(cfg *Config) *HTTPFetcher {
	return NewHTTPFetcher(cfg.BaseURL,
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithXSRFToken(cfg.XSRFToken),
		WithRateLimit(cfg.RequestsPerSecond),
	)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, path string, params url.Values) (io.ReadCloser, error) {
	reqURL := f.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range f.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if f.xsrfToken != "" {
		req.Header.Set(XSRFHeader, f.xsrfToken)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	slog.Debug("Fetched page", "url", reqURL, "status", resp.StatusCode, "latency", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}

	return resp.Body, nil
}

// StatusError is returned for non 200 responses
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}
