package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nmdb/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://api.m.nintendo.com"
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 5
	maxBackoffShift    = 16
)

// StatusError is returned for a response whose status is not 200 OK.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d (%s)", e.StatusCode, e.Status)
}

func (e *StatusError) Unwrap() error { return shared.ErrAPIRequest }

// ClientOpts contains configuration options for creating a [Client].
type ClientOpts struct {
	BaseURL           string
	HTTPClient        *http.Client
	UserAgent         string
	MaxAttempts       int           // total attempts per request (default: 5)
	RetryDelay        time.Duration // backoff before the second attempt, doubled after each failure; 0 retries immediately
	MaxRetryDelay     time.Duration // backoff cap; 0 means uncapped
	RequestsPerSecond float64       // 0 means unlimited
	Logger            *log.Logger
}

// Client performs retried, rate-limited JSON GET requests against the catalog API.
type Client struct {
	baseURL       string
	userAgent     string
	httpClient    *http.Client
	limiter       *rate.Limiter
	maxAttempts   int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	logger        *log.Logger
}

// NewClient creates a new catalog API client.
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		baseURL:       opts.BaseURL,
		userAgent:     opts.UserAgent,
		httpClient:    opts.HTTPClient,
		limiter:       rate.NewLimiter(limit, 1),
		maxAttempts:   opts.MaxAttempts,
		retryDelay:    opts.RetryDelay,
		maxRetryDelay: opts.MaxRetryDelay,
		logger:        opts.Logger,
	}
}

// WithToken returns a copy of the client that sends token as an OAuth2 bearer credential.
//
// The copy shares the rate limiter with its parent.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	clone.httpClient = &http.Client{
		Timeout:   c.httpClient.Timeout,
		Transport: &oauth2.Transport{Source: src, Base: c.httpClient.Transport},
	}
	return &clone
}

// Get fetches path with params and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	_, err := c.GetRaw(ctx, path, params, out)
	return err
}

// GetRaw fetches path with params, decodes the JSON body into out when out is non-nil, and returns the raw body.
//
// Network errors, non-200 statuses and bodies that do not decode into out are retried up to the
// configured attempt limit. Cancellation of ctx stops immediately.
func (c *Client) GetRaw(ctx context.Context, path string, params url.Values, out any) ([]byte, error) {
	target, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if len(params) > 0 {
		target.RawQuery = params.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.do(ctx, target.String())
		if err == nil && out != nil {
			if decodeErr := json.Unmarshal(body, out); decodeErr != nil {
				err = fmt.Errorf("%w: %v", shared.ErrUnexpectedPayload, decodeErr)
			}
		}
		if err == nil {
			return body, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		lastErr = err
		c.logger.Warn("request failed", "path", path, "attempt", attempt, "max", c.maxAttempts, "error", err)

		if attempt < c.maxAttempts {
			if err := sleepWithContext(ctx, c.backoffDelay(attempt)); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: GET %s after %d attempts: %w", shared.ErrRetriesExhausted, path, c.maxAttempts, lastErr)
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// backoffDelay returns the wait before attempt+1; attempt is 1-based.
func (c *Client) backoffDelay(attempt int) time.Duration {
	if c.retryDelay <= 0 {
		return 0
	}
	shift := attempt - 1
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	delay := c.retryDelay << shift
	if c.maxRetryDelay > 0 && delay > c.maxRetryDelay {
		delay = c.maxRetryDelay
	}
	return delay
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsExhausted reports whether err is a retry-exhaustion failure.
func IsExhausted(err error) bool {
	return errors.Is(err, shared.ErrRetriesExhausted)
}
