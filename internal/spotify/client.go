package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL = "https://api.spotify.com/v1"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// maxResponseBytes bounds a successful response body. Spotify's largest
// pages are well under this.
var maxResponseBytes int64 = 32 << 20

// ErrResponseTooLarge is wrapped in an ErrTransport when a successful
// response body exceeds the client's read limit.
var ErrResponseTooLarge = errors.New("response body too large")

// Client issues authenticated GET requests against the Spotify Web API and
// maps the responses into this package's records. It holds no per-call
// state and is safe for concurrent use; every call carries its own token.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	baseURL    string
	logger     *zap.Logger
	metrics    *Metrics
}

type Option func(*Client)

// WithBaseURL points the client at a different API root (tests, proxies).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the default pooled client. WithTimeout is ignored
// when this option is used.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		timeout: defaultTimeout,
		baseURL: defaultBaseURL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = newHTTPClient(c.timeout)
	}
	c.logger = c.logger.With(zap.String("provider", "spotify"))
	return c
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

type request struct {
	endpoint string
	path     string
	query    url.Values
}

func (r request) url(baseURL string) string {
	u := baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	return u
}

// fetch performs one GET, decodes the body into T and maps it with mapFn.
// Failures are logged and counted here, then returned unchanged.
func fetch[T, R any](ctx context.Context, c *Client, token string, r request, mapFn func(*T) (R, error)) (R, error) {
	reqURL := r.url(c.baseURL)
	logger := c.logger.With(zap.String("endpoint", r.endpoint), zap.String("url", reqURL))
	logger.Info("Fetching from Spotify")

	start := time.Now()
	result, err := fetchAndMap(ctx, c, token, r.endpoint, reqURL, mapFn)
	elapsed := time.Since(start)
	c.metrics.observe(r.endpoint, err, elapsed)

	if err != nil {
		logger.Error("Error fetching from Spotify", zap.Error(err), zap.Duration("elapsed", elapsed))
		return result, err
	}
	logger.Debug("Fetched from Spotify", zap.Duration("elapsed", elapsed))
	return result, nil
}

func fetchAndMap[T, R any](ctx context.Context, c *Client, token, endpoint, reqURL string, mapFn func(*T) (R, error)) (R, error) {
	var zero R

	body, err := c.doRequest(ctx, endpoint, token, reqURL)
	if err != nil {
		return zero, err
	}

	var raw T
	if err := json.Unmarshal(body, &raw); err != nil {
		shapeErr := &ErrDataShape{Endpoint: endpoint, Cause: err}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			shapeErr.Field = typeErr.Field
		}
		return zero, shapeErr
	}

	mapped, err := mapFn(&raw)
	if err != nil {
		shapeErr := &ErrDataShape{Endpoint: endpoint, Cause: err}
		var mf *missingFieldError
		if errors.As(err, &mf) {
			shapeErr.Field = mf.path
		}
		return zero, shapeErr
	}
	return mapped, nil
}

// doRequest executes a GET and returns the body of a 2xx response.
func (c *Client) doRequest(ctx context.Context, endpoint, token, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &ErrTransport{Endpoint: endpoint, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ErrTransport{Endpoint: endpoint, Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, &ErrTransport{Endpoint: endpoint, Cause: fmt.Errorf("reading error body: %w", err)}
		}
		return nil, &ErrProviderRequest{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	// One byte past the limit tells a truncated body from one that fits.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, &ErrTransport{Endpoint: endpoint, Cause: fmt.Errorf("reading response body: %w", err)}
	}
	if int64(len(body)) > maxResponseBytes {
		return nil, &ErrTransport{
			Endpoint: endpoint,
			Cause:    fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxResponseBytes),
		}
	}
	return body, nil
}
