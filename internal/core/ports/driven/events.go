package driven

import (
	"context"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// JobEventPublisher forwards job events to an external consumer.
type JobEventPublisher interface {
	// Publish sends one event. Implementations must not block past ctx.
	Publish(ctx context.Context, event domain.JobEvent) error

	// Close releases the underlying connection.
	Close() error
}
