package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/danmuck/megaverse/internal/megaverse"
	"github.com/danmuck/megaverse/internal/observability"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL           = "https://challenge.crossmint.io/api"
	DefaultRequestsPerSecond = 1.0
	DefaultTimeout           = 30 * time.Second
	DefaultRetryDelay        = 5 * time.Second
	DefaultGoalTTL           = 5 * time.Minute
	DefaultCurrentTTL        = 30 * time.Second
)

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodDelete: {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
}

// Config holds client behavior. Zero values are replaced by defaults in WithDefaults.
type Config struct {
	BaseURL           string
	CandidateID       string
	VerifySSL         bool
	RequestsPerSecond float64
	Timeout           time.Duration
	RetryDelay        time.Duration
	// MaxRetries caps 429 retries; 0 retries without bound.
	MaxRetries int
	GoalTTL    time.Duration
	CurrentTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Timeout:           DefaultTimeout,
		RetryDelay:        DefaultRetryDelay,
		GoalTTL:           DefaultGoalTTL,
		CurrentTTL:        DefaultCurrentTTL,
	}
}

func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = def.RequestsPerSecond
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = def.RetryDelay
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.GoalTTL <= 0 {
		c.GoalTTL = def.GoalTTL
	}
	if c.CurrentTTL <= 0 {
		c.CurrentTTL = def.CurrentTTL
	}
	return c
}

type Option func(*Client)

// WithClock replaces the wall clock used for caches, limiter waits and retry sleeps.
func WithClock(clk clock.Clock) Option {
	return func(c *Client) { c.clock = clk }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client talks to the megaverse API on behalf of one candidate.
type Client struct {
	cfg     Config
	http    *http.Client
	clock   clock.Clock
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu      sync.Mutex
	goal    cacheEntry[megaverse.GoalResponse]
	current cacheEntry[megaverse.MapResponse]
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.CandidateID == "" {
		return nil, megaverse.Invalid("candidate_id", "must be a non-empty string")
	}
	if strings.TrimSpace(cfg.CandidateID) == "" {
		return nil, megaverse.Invalid("candidate_id", "cannot be whitespace only")
	}
	cfg = cfg.WithDefaults()
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, megaverse.Invalid("base_url", "expected an absolute http(s) url, got %q", cfg.BaseURL)
	}

	c := &Client{
		cfg:     cfg,
		clock:   clock.NewClock(),
		limiter: newLimiter(cfg),
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = newHTTPClient(cfg.VerifySSL)
	}
	return c, nil
}

func newLimiter(cfg Config) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
}

func newHTTPClient(verifySSL bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !verifySSL,
	}
	return &http.Client{Transport: transport}
}

func (c *Client) CandidateID() string {
	return c.cfg.CandidateID
}

func (c *Client) Config() Config {
	return c.cfg
}

// Request sends one JSON request and returns the decoded document, or {} for an empty body.
// A 429 response is retried after RetryDelay with the identical request.
func (c *Client) Request(ctx context.Context, method, path string, body map[string]any, query url.Values) (json.RawMessage, error) {
	if _, ok := allowedMethods[method]; !ok {
		return nil, megaverse.Invalid("method", "invalid HTTP method %q", method)
	}
	if path == "" {
		return nil, megaverse.Invalid("path", "must be a non-empty string")
	}
	if !strings.HasPrefix(path, "/") {
		return nil, megaverse.Invalid("path", "must start with '/', got %q", path)
	}

	payload := make(map[string]any, len(body)+1)
	maps.Copy(payload, body)
	payload["candidateId"] = c.cfg.CandidateID
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("api: encode %s %s body: %w", method, path, err)
	}

	target := c.cfg.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	route := c.route(path)

	for attempt := 1; ; attempt++ {
		if err := c.waitTurn(ctx); err != nil {
			return nil, err
		}
		status, data, err := c.send(ctx, method, path, target, route, encoded)
		if err != nil {
			return nil, err
		}

		if status == http.StatusTooManyRequests {
			if c.cfg.MaxRetries > 0 && attempt > c.cfg.MaxRetries {
				return nil, &RateLimitError{Method: method, Path: path, Attempts: attempt, Body: truncateBody(data)}
			}
			c.logger.Warn().
				Str("method", method).
				Str("path", path).
				Int("attempt", attempt).
				Dur("retry_in", c.cfg.RetryDelay).
				Msg("rate limit exceeded, retrying")
			observability.RecordAPIRetry(method, route)
			if err := c.sleep(ctx, c.cfg.RetryDelay); err != nil {
				return nil, err
			}
			continue
		}

		if status < 200 || status > 299 {
			return nil, &APIError{
				Method:     method,
				Path:       path,
				StatusCode: status,
				Body:       truncateBody(data),
				Err:        ErrHTTPStatus,
			}
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return json.RawMessage("{}"), nil
		}
		if !json.Valid(data) {
			return nil, &APIError{
				Method:     method,
				Path:       path,
				StatusCode: status,
				Body:       truncateBody(data),
				Err:        ErrMalformedResponse,
			}
		}
		return json.RawMessage(data), nil
	}
}

// send performs one attempt. A non-nil error means no usable response was received.
func (c *Client) send(ctx context.Context, method, path, target, route string, body []byte) (int, []byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, target, bytes.NewReader(body))
	if err != nil {
		return 0, nil, &APIError{Method: method, Path: path, Err: ErrRequestFailed, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.RecordAPIRequest(method, route, 0, time.Since(start))
		return 0, nil, c.transportError(ctx, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	observability.RecordAPIRequest(method, route, resp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, c.transportError(ctx, method, path, err)
	}
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Msg("api response")
	return resp.StatusCode, data, nil
}

func (c *Client) transportError(ctx context.Context, method, path string, err error) error {
	// Caller cancellation is not a service failure.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, ctxErr)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &APIError{
			Method: method,
			Path:   path,
			Err:    ErrTimeout,
			Cause:  fmt.Errorf("no response after %s", c.cfg.Timeout),
		}
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return &APIError{Method: method, Path: path, Err: ErrConnection, Cause: err}
	}
	return &APIError{Method: method, Path: path, Err: ErrRequestFailed, Cause: err}
}

// waitTurn blocks until the limiter grants one request.
func (c *Client) waitTurn(ctx context.Context) error {
	now := c.clock.Now()
	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return fmt.Errorf("api: rate limiter cannot grant a request")
	}
	if err := c.sleep(ctx, r.DelayFrom(now)); err != nil {
		r.CancelAt(c.clock.Now())
		return err
	}
	return nil
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := c.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C():
		return nil
	}
}

// route collapses the candidate id out of path for metric labels.
func (c *Client) route(path string) string {
	prefix := "/map/" + url.PathEscape(c.cfg.CandidateID)
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok || (rest != "" && !strings.HasPrefix(rest, "/")) {
		return path
	}
	return "/map/:candidateId" + rest
}
