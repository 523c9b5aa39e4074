package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
	"github.com/s-nishad/DueDiligence/internal/logger"
)

// Ensure ProjectService implements the interface.
var _ driving.ProjectService = (*ProjectService)(nil)

// ProjectService reads and writes projects through the backend and keeps
// the snapshot cache current.
type ProjectService struct {
	backend driven.Backend
	store   driven.SnapshotStore
	log     *slog.Logger
	now     func() time.Time
}

// NewProjectService creates a new project service.
func NewProjectService(backend driven.Backend, store driven.SnapshotStore) *ProjectService {
	return &ProjectService{
		backend: backend,
		store:   store,
		log:     logger.For("projects"),
		now:     time.Now,
	}
}

// Create creates a project, caches a placeholder snapshot and selects it
// as the current project.
func (s *ProjectService) Create(ctx context.Context, in domain.CreateProjectInput) (domain.ProjectStatusInfo, error) {
	out, err := s.backend.CreateProject(ctx, in)
	if err != nil {
		return domain.ProjectStatusInfo{}, fmt.Errorf("create project %q: %w", in.Name, err)
	}

	now := s.now().UTC()
	s.store.PutProject(domain.ProjectInfo{
		Project: domain.Project{
			ID:        out.ProjectID,
			Name:      in.Name,
			Status:    out.Status,
			Scope:     in.Scope,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Sections:  []domain.Section{},
		Documents: []domain.Document{},
	})
	s.store.SetCurrentProject(out.ProjectID)
	s.log.Debug("project created", "project_id", out.ProjectID, "scope", in.Scope)
	return out, nil
}

// Get fetches a project and caches it. The cached status reflects
// document changes the backend has not folded in yet.
func (s *ProjectService) Get(ctx context.Context, projectID string) (*domain.ProjectInfo, error) {
	info, err := s.fetch(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := info.Clone()
	return &out, nil
}

// Status fetches the project status. When a snapshot is cached, the
// status is derived from its documents the same way Get derives it, and
// the snapshot is updated so later reads agree.
func (s *ProjectService) Status(ctx context.Context, projectID string) (domain.ProjectStatusInfo, error) {
	out, err := s.backend.GetProjectStatus(ctx, projectID)
	if err != nil {
		return domain.ProjectStatusInfo{}, fmt.Errorf("get status of project %s: %w", projectID, err)
	}
	cached, ok := s.store.Project(projectID)
	if !ok {
		return out, nil
	}

	previous := cached.Status
	cached.Status = out.Status
	if effective := cached.EffectiveStatus(); effective != out.Status {
		s.log.Debug("project status derived from documents",
			"project_id", projectID, "reported", out.Status, "effective", effective)
		out.Status = effective
	}
	if previous != out.Status {
		cached.Status = out.Status
		s.store.PutProject(cached)
	}
	return out, nil
}

// List lists all projects.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	projects, err := s.backend.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Update changes mutable project fields. The backend marks the project
// OUTDATED; the cache follows.
func (s *ProjectService) Update(
	ctx context.Context,
	projectID string,
	in domain.UpdateProjectInput,
) (domain.ProjectStatusInfo, error) {
	out, err := s.backend.UpdateProject(ctx, projectID, in)
	if err != nil {
		return domain.ProjectStatusInfo{}, fmt.Errorf("update project %s: %w", projectID, err)
	}
	if cached, ok := s.store.Project(projectID); ok {
		cached.Name = in.Name
		cached.Status = out.Status
		cached.UpdatedAt = s.now().UTC()
		s.store.PutProject(cached)
	}
	return out, nil
}

// Refresh re-reads a project into the cache. On failure the previously
// cached snapshot is left untouched.
func (s *ProjectService) Refresh(ctx context.Context, projectID string) error {
	_, err := s.fetch(ctx, projectID)
	return err
}

// Cached returns the cached snapshot without calling the backend.
func (s *ProjectService) Cached(projectID string) (domain.ProjectInfo, bool) {
	return s.store.Project(projectID)
}

func (s *ProjectService) fetch(ctx context.Context, projectID string) (domain.ProjectInfo, error) {
	info, err := s.backend.GetProjectInfo(ctx, projectID)
	if err != nil {
		s.log.Debug("project read failed, keeping cached snapshot", "project_id", projectID, "error", err)
		return domain.ProjectInfo{}, fmt.Errorf("get project %s: %w", projectID, err)
	}
	if info.ID == "" {
		info.ID = projectID
	}
	if err := info.Validate(); err != nil {
		s.log.Warn("backend returned an inconsistent project", "project_id", projectID, "error", err)
	}
	if effective := info.EffectiveStatus(); effective != info.Status {
		s.log.Debug("project status derived from documents",
			"project_id", projectID, "reported", info.Status, "effective", effective)
		info.Status = effective
	}
	s.store.PutProject(*info)
	return *info, nil
}
