package ayuutoclient

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
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout  = 15 * time.Second
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 4 << 20
)

// Client is a thin wrapper over the Ayuuto REST API. Every response is
// expected in the {success, data, message} envelope.
type Client struct {
	baseURL *url.URL
	public  *http.Client
	authed  *http.Client
	logger  *zap.Logger
}

// Option configures a Client
type Option func(*options)

type options struct {
	timeout   time.Duration
	transport http.RoundTripper
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithTransport overrides the base HTTP transport
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// NewClient creates a client for the API at baseURL. tokens supplies the
// bearer token for authenticated calls; it may be nil if only the public
// endpoints (login, register, password reset, shared links) are used.
func NewClient(baseURL string, tokens oauth2.TokenSource, logger *zap.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q: scheme and host are required", baseURL)
	}

	o := options{timeout: defaultTimeout, transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	if tokens == nil {
		tokens = missingTokenSource{}
	}

	return &Client{
		baseURL: u,
		public:  &http.Client{Timeout: o.timeout, Transport: o.transport},
		authed: &http.Client{
			Timeout: o.timeout,
			Transport: &oauth2.Transport{
				Source: tokens,
				Base:   o.transport,
			},
		},
		logger: logger,
	}, nil
}

type missingTokenSource struct{}

func (missingTokenSource) Token() (*oauth2.Token, error) {
	return nil, ErrNotLoggedIn
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do sends a request and decodes the envelope's data into out (if non-nil)
func (c *Client) do(ctx context.Context, method, path string, auth bool, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.public
	if auth {
		httpClient = c.authed
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrNotLoggedIn) {
			return fmt.Errorf("%s %s: %w", method, path, unwrapTokenError(err))
		}
		c.logger.Debug("Request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return decode(resp.StatusCode, data, out, auth)
}

// unwrapTokenError pulls the sentinel out of the *url.Error chain
func unwrapTokenError(err error) error {
	if errors.Is(err, ErrNotLoggedIn) {
		return ErrNotLoggedIn
	}
	return ErrSessionExpired
}

// decode unwraps the envelope. Only authenticated requests can report an
// expired session; public endpoints use the same words for OTPs and links.
func decode(status int, data []byte, out any, auth bool) error {
	ok := status >= 200 && status < 300

	if len(bytes.TrimSpace(data)) == 0 {
		if !ok {
			return newAPIError(status, http.StatusText(status), auth)
		}
		return newAPIError(status, "empty response from server", auth)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if !ok {
			return newAPIError(status, http.StatusText(status), auth)
		}
		return newAPIError(status, "invalid response from server", auth)
	}

	if !ok || !env.Success {
		return newAPIError(status, env.Message, auth)
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return newAPIError(status, "response is missing data", auth)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return newAPIError(status, fmt.Sprintf("invalid response data: %v", err), auth)
	}
	return nil
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
