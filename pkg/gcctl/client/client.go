package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/telekom/gcctl/pkg/gcctl/auth"
	"github.com/telekom/gcctl/pkg/metrics"
)

// CorrelationHeader carries the per-invocation id the platform echoes in its
// logs, so support can trace every request of one gcctl run.
const CorrelationHeader = "ININ-Correlation-Id"

// TokenSource supplies the credential for each request and is told which
// access token the API rejected.
type TokenSource interface {
	Token(ctx context.Context) (auth.Credential, error)
	Invalidate(rejected string)
}

type Client struct {
	baseURL       string
	tokens        TokenSource
	userAgent     string
	timeout       time.Duration
	httpClient    *http.Client
	limiter       *rate.Limiter
	correlationID string
	log           *zap.SugaredLogger

	http *resty.Client
}

type Option func(*Client) error

func New(tokens TokenSource, opts ...Option) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("token source is required")
	}
	c := &Client{
		tokens:    tokens,
		userAgent: "gcctl",
		timeout:   30 * time.Second,
		log:       zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.baseURL == "" {
		return nil, errors.New("server is required")
	}

	if c.httpClient != nil {
		c.http = resty.NewWithClient(c.httpClient)
	} else {
		c.http = resty.New()
	}
	c.http.SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetLogger(c.log).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", c.userAgent)
	return c, nil
}

func WithServer(server string) Option {
	return func(c *Client) error {
		if server == "" {
			return errors.New("server is required")
		}
		parsed, err := url.Parse(server)
		if err != nil {
			return fmt.Errorf("invalid server: %w", err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid server: %s", server)
		}
		c.baseURL = strings.TrimSuffix(parsed.String(), "/")
		return nil
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		c.userAgent = userAgent
		return nil
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout <= 0 {
			return fmt.Errorf("invalid timeout: %s", timeout)
		}
		c.timeout = timeout
		return nil
	}
}

// WithRateLimit throttles outgoing requests to rps with the given burst. A
// non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) error {
		if rps <= 0 {
			c.limiter = nil
			return nil
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

func WithCorrelationID(id string) Option {
	return func(c *Client) error {
		c.correlationID = id
		return nil
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) error {
		if log != nil {
			c.log = log
		}
		return nil
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = httpClient
		return nil
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body any, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}
	cred, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", cred.AuthorizationHeader())
	if c.correlationID != "" {
		req.SetHeader(CorrelationHeader, c.correlationID)
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
		c.log.Debugw("Request", "method", method, "path", endpoint, "body", string(payload))
	} else {
		c.log.Debugw("Request", "method", method, "path", endpoint, "query", query.Encode())
	}

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		metrics.APIRequests.WithLabelValues(method, metrics.StatusLabel(0)).Inc()
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	status := resp.StatusCode()
	metrics.APIRequests.WithLabelValues(method, metrics.StatusLabel(status)).Inc()
	c.log.Debugw("Response", "method", method, "path", endpoint, "status", status)

	if status == http.StatusUnauthorized {
		c.tokens.Invalidate(cred.AccessToken)
	}
	if resp.IsError() || status >= http.StatusMultipleChoices {
		return newHTTPError(method, endpoint, status, resp.Status(), resp.Body())
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}
