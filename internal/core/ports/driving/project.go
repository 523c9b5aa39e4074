package driving

import (
	"context"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// ProjectService manages questionnaire projects.
type ProjectService interface {
	// Create creates a project and selects it as current.
	Create(ctx context.Context, in domain.CreateProjectInput) (domain.ProjectStatusInfo, error)

	// Get fetches a project from the backend and caches the snapshot.
	Get(ctx context.Context, projectID string) (*domain.ProjectInfo, error)

	// Status fetches the current project status.
	Status(ctx context.Context, projectID string) (domain.ProjectStatusInfo, error)

	// List lists all projects.
	List(ctx context.Context) ([]domain.Project, error)

	// Update changes mutable project fields.
	Update(ctx context.Context, projectID string, in domain.UpdateProjectInput) (domain.ProjectStatusInfo, error)

	// Refresh re-reads a project into the cache. On failure the previously
	// cached snapshot is left untouched.
	Refresh(ctx context.Context, projectID string) error

	// Cached returns the cached snapshot without calling the backend.
	Cached(projectID string) (domain.ProjectInfo, bool)
}
