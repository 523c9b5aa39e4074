package driving

import (
	"context"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// JobHandle observes one tracked job.
type JobHandle interface {
	// ID returns the request ID.
	ID() string

	// Snapshot returns the last observed request state.
	Snapshot() domain.Request

	// Subscribe registers a callback for job events. The returned function
	// removes it; calling it more than once has no further effect.
	Subscribe(fn func(domain.JobEvent)) (unsubscribe func())

	// Cancel stops local tracking. It never cancels the backend job.
	Cancel()

	// Done is closed when tracking has stopped for any reason.
	Done() <-chan struct{}

	// Wait blocks until tracking stops and returns the final snapshot.
	Wait(ctx context.Context) (domain.Request, error)
}

// JobTracker tracks backend jobs until they finish.
type JobTracker interface {
	// Track starts polling a job and returns its handle.
	Track(ctx context.Context, handle domain.RequestHandle) JobHandle

	// Get fetches the backend truth about a job, bypassing any tracker.
	Get(ctx context.Context, requestID string) (*domain.Request, error)
}
