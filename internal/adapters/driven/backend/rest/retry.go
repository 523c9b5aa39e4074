package rest

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// withRetry runs fn up to ReadAttempts times while it fails transiently.
// Only reads go through here; mutations are never retried.
func (c *Client) withRetry(ctx context.Context, target string, fn func() error) error {
	var err error
	for attempt := 0; attempt < c.cfg.ReadAttempts; attempt++ {
		err = fn()
		if err == nil || !isRetryable(err) || attempt == c.cfg.ReadAttempts-1 {
			return err
		}
		delay := c.backoff(attempt)
		c.log.Debug("retrying read", "url", target, "attempt", attempt+1, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return &domain.Error{Kind: domain.ErrorKindTransport, Message: "request cancelled", Cause: ctx.Err()}
		case <-time.After(delay):
		}
	}
	return err
}

// backoff returns the delay before retry attempt+1, with up to 20% jitter.
func (c *Client) backoff(attempt int) time.Duration {
	d := float64(c.cfg.RetryBackoff) * math.Pow(2, float64(attempt))
	if d > float64(c.cfg.MaxBackoff) {
		d = float64(c.cfg.MaxBackoff)
	}
	d += d * 0.2 * rand.Float64()
	return time.Duration(d)
}

// isRetryable reports whether a read failure is worth repeating.
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var de *domain.Error
	if errors.As(err, &de) && de.Cause == nil {
		return de.Kind.Transient()
	}
	if de != nil && !de.Kind.Transient() {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"connection refused", "connection reset", "broken pipe",
		"no such host", "network is unreachable", "i/o timeout", "eof",
	} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return de != nil
}
