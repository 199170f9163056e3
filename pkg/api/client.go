// Package api is the REST collaborator of the console: authentication and
// the players, teams, members and comments collections.
//
// Every call carries a fresh X-Request-ID and, when a token is stored, a
// bearer Authorization header. Calls are throttled client-side with a
// token bucket. Failures are *Error values matching the package's error
// kinds, or ErrNetwork when the server could not be reached.
//
// Example usage:
//
//	c, err := api.New(api.Config{BaseURL: "http://localhost:5000/api"}, store, log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	players := api.Players(c)
//	page, err := players.List(ctx, model.ListParams{Search: "messi"})
package api

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

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/0xmhha/squad-console/pkg/logger"
	"github.com/0xmhha/squad-console/pkg/tokenstore"
)

// RequestIDHeader carries the per-call correlation id.
const RequestIDHeader = "X-Request-ID"

// Config contains client configuration.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:5000/api.
	BaseURL string

	// Timeout bounds each HTTP round trip.
	// Default: 15s.
	Timeout time.Duration

	// RateLimit is the sustained number of requests per second.
	// Zero disables throttling.
	RateLimit float64

	// Burst is the number of requests allowed at once.
	// Default: 1 when RateLimit is set.
	Burst int

	// UserAgent is sent with every request.
	UserAgent string

	// HTTPClient overrides the transport. Tests use httptest clients.
	HTTPClient *http.Client
}

// Client sends JSON requests to the API.
type Client struct {
	base      *url.URL
	http      *http.Client
	tokens    tokenstore.Reader
	limiter   *rate.Limiter
	logger    logger.Logger
	userAgent string
}

// New creates a client.
//
// Parameters:
//   - cfg: Client configuration
//   - tokens: Read-only token source; nil sends no Authorization header
//   - log: Logger instance
//
// Returns:
//   - Configured Client
//   - Error if BaseURL is invalid
func New(cfg Config, tokens tokenstore.Reader, log logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", cfg.BaseURL)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "squad-console"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = logger.Noop()
	}

	c := &Client{
		base:      base,
		http:      httpClient,
		tokens:    tokens,
		logger:    log.With("component", "api"),
		userAgent: cfg.UserAgent,
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// do sends a request authorised with the stored token.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	token := ""
	if c.tokens != nil {
		token, _ = c.tokens.Read()
	}
	return c.doWithToken(ctx, method, path, query, in, out, token)
}

// doWithToken sends a request authorised with an explicit token.
func (c *Client) doWithToken(ctx context.Context, method, path string, query url.Values, in, out any, token string) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}
	}

	// path arrives escaped; ids may contain reserved characters.
	rawPath := c.base.EscapedPath() + path
	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		return fmt.Errorf("invalid request path %q: %w", path, err)
	}
	u := *c.base
	u.Path, u.RawPath = decoded, rawPath
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"error", err)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode >= 400 {
		var eb errorBody
		// A non-JSON error body still yields a usable status-based error.
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&eb)
		return newError(resp.StatusCode, eb)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("malformed response: %v", err),
			kind:    ErrServer,
		}
	}
	return nil
}

// ack is the {success: bool} acknowledgement body.
type ack struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func (a ack) check(status int) error {
	if a.Success != nil && !*a.Success {
		msg := a.Message
		if msg == "" {
			msg = "request not acknowledged"
		}
		return &Error{Status: status, Message: msg, kind: ErrServer}
	}
	return nil
}
