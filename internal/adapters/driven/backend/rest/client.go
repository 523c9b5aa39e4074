package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
	"github.com/s-nishad/DueDiligence/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Backend = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultReadAttempts = 3
	DefaultRetryBackoff = 250 * time.Millisecond
	DefaultMaxBackoff   = 4 * time.Second
	DefaultUserAgent    = "duediligence-cli"
)

// IdempotencyHeader carries the request-identity guard on mutations.
const IdempotencyHeader = "Idempotency-Key"

// Config holds client settings.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:8000/api.
	BaseURL string

	// Timeout bounds one HTTP exchange. Zero uses DefaultTimeout.
	Timeout time.Duration

	// RequestsPerSecond paces calls. Zero disables pacing.
	RequestsPerSecond float64

	// ReadAttempts is the maximum number of tries for a GET.
	ReadAttempts int

	// RetryBackoff is the first delay between read attempts.
	RetryBackoff time.Duration

	// MaxBackoff caps the delay between read attempts.
	MaxBackoff time.Duration

	// UserAgent is sent on every request.
	UserAgent string

	// HTTPClient overrides the HTTP client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client is the HTTP implementation of driven.Backend.
type Client struct {
	httpclient *http.Client
	base       *url.URL
	limiter    *rate.Limiter
	cfg        Config
	log        *slog.Logger
}

// New creates a client for the backend at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, domain.Invalid("backend base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, domain.Invalid("backend base URL %q is not an absolute URL", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ReadAttempts <= 0 {
		cfg.ReadAttempts = DefaultReadAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	if cfg.MaxBackoff < cfg.RetryBackoff {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	httpclient := cfg.HTTPClient
	if httpclient == nil {
		httpclient = &http.Client{Timeout: cfg.Timeout}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		httpclient: httpclient,
		base:       base,
		limiter:    limiter,
		cfg:        cfg,
		log:        logger.For("backend"),
	}, nil
}

// NewFromSettings creates a client from application settings.
func NewFromSettings(s domain.BackendSettings) (*Client, error) {
	return New(Config{
		BaseURL:           s.BaseURL,
		Timeout:           s.Timeout,
		RequestsPerSecond: s.RequestsPerSecond,
		ReadAttempts:      s.ReadAttempts,
	})
}

type idempotencyKey struct{}

// WithIdempotencyKey pins the Idempotency-Key used for mutations made with
// ctx. A caller retrying a mutation passes the same key each time.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

func idempotencyKeyFrom(ctx context.Context) string {
	if key, ok := ctx.Value(idempotencyKey{}).(string); ok && key != "" {
		return key
	}
	return uuid.NewString()
}

// apipath joins path segments onto the base URL, escaping each segment.
func (c *Client) apipath(query url.Values, segments ...string) string {
	u := *c.base
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(escaped, "/")
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// payload builds a fresh request body for each attempt.
type payload func() (io.Reader, string, error)

func jsonPayload(v any) payload {
	return func() (io.Reader, string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("marshal request: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

// multipartPayload buffers the upload once so the body can be rebuilt.
func multipartPayload(upload domain.Upload) (payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", upload.Filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return nil, fmt.Errorf("read upload %s: %w", upload.Filename, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}
	data := buf.Bytes()
	contentType := w.FormDataContentType()
	return func() (io.Reader, string, error) {
		return bytes.NewReader(data), contentType, nil
	}, nil
}

// get performs a GET with retries and decodes the JSON response into v.
func get[T any](ctx context.Context, c *Client, target string, v *T) error {
	return c.withRetry(ctx, target, func() error {
		resp, err := c.send(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		return decodeResponse(resp, v)
	})
}

// post performs a single POST and decodes the JSON response into v.
func post[T any](ctx context.Context, c *Client, target string, body payload, v *T) error {
	resp, err := c.send(ctx, http.MethodPost, target, body)
	if err != nil {
		return err
	}
	return decodeResponse(resp, v)
}

// send executes one HTTP exchange. Transport failures are normalized.
func (c *Client) send(ctx context.Context, method, target string, body payload) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &domain.Error{Kind: domain.ErrorKindTransport, Message: "request cancelled while waiting for rate limit", Cause: err}
		}
	}

	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		var err error
		reader, contentType, err = body()
		if err != nil {
			return nil, &domain.Error{Kind: domain.ErrorKindValidation, Message: "cannot encode request", Cause: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &domain.Error{Kind: domain.ErrorKindValidation, Message: "cannot build request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet {
		req.Header.Set(IdempotencyHeader, idempotencyKeyFrom(ctx))
	}

	c.log.Debug("request", "method", method, "url", target)
	resp, err := c.httpclient.Do(req)
	if err != nil {
		msg := "cannot reach backend"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "backend request timed out"
		}
		return nil, &domain.Error{Kind: domain.ErrorKindTransport, Message: msg, Cause: err}
	}
	c.log.Debug("response", "method", method, "url", target, "status", resp.StatusCode)
	return resp, nil
}

// Health checks the backend is reachable. The health route sits beside
// the API root rather than under it.
func (c *Client) Health(ctx context.Context) error {
	u := *c.base
	u.Path = strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/api") + "/health"
	u.RawPath = ""
	return get[struct{}](ctx, c, u.String(), nil)
}
