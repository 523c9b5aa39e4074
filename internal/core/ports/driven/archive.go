package driven

import (
	"context"
	"time"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// SnapshotArchive persists cache snapshots so a later run can start warm.
// Saving a snapshot replaces any earlier one with the same ID.
type SnapshotArchive interface {
	// SaveProject stores a project snapshot.
	SaveProject(ctx context.Context, info domain.ProjectInfo) error

	// LoadProjects returns every stored project snapshot.
	LoadProjects(ctx context.Context) ([]domain.ProjectInfo, error)

	// SaveRequest stores a request snapshot.
	SaveRequest(ctx context.Context, req domain.Request) error

	// LoadRequests returns every stored request snapshot.
	LoadRequests(ctx context.Context) ([]domain.Request, error)

	// Close releases the underlying connection.
	Close() error
}

// RequestPruner is implemented by archives that keep request snapshots
// until told to drop them. Archives with their own expiry need not
// implement it.
type RequestPruner interface {
	// PruneRequests deletes finished request snapshots saved before
	// cutoff and returns how many were removed.
	PruneRequests(ctx context.Context, cutoff time.Time) (int64, error)
}
