package rest

import (
	"context"
	"net/url"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// GetRequest fetches the current snapshot of a job.
func (c *Client) GetRequest(ctx context.Context, requestID string) (*domain.Request, error) {
	if err := requireID("request id", requestID); err != nil {
		return nil, err
	}
	var w requestWire
	q := url.Values{"request_id": {requestID}}
	if err := get(ctx, c, c.apipath(q, "requests", "get-request-status"), &w); err != nil {
		return nil, err
	}
	if w.RequestID == "" {
		w.RequestID = requestID
	}
	return w.request()
}
