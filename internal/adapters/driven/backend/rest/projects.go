package rest

import (
	"context"
	"net/url"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

func requireID(what, id string) error {
	if id == "" {
		return domain.Invalid("%s is required", what)
	}
	return nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, in domain.CreateProjectInput) (domain.ProjectStatusInfo, error) {
	if err := in.Validate(); err != nil {
		return domain.ProjectStatusInfo{}, err
	}
	var out domain.ProjectStatusInfo
	err := post(ctx, c, c.apipath(nil, "projects", "create-project"), jsonPayload(in), &out)
	if err != nil {
		return domain.ProjectStatusInfo{}, err
	}
	if out.Status == "" {
		out.Status = domain.ProjectStatusCreated
	}
	return out, nil
}

// GetProjectInfo fetches a full project snapshot.
func (c *Client) GetProjectInfo(ctx context.Context, projectID string) (*domain.ProjectInfo, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}
	var w projectWire
	q := url.Values{"project_id": {projectID}}
	if err := get(ctx, c, c.apipath(q, "projects", "get-project-info"), &w); err != nil {
		return nil, err
	}
	info := w.info()
	if info.ID == "" {
		info.ID = projectID
	}
	return info, nil
}

// GetProjectStatus fetches the project status.
func (c *Client) GetProjectStatus(ctx context.Context, projectID string) (domain.ProjectStatusInfo, error) {
	if err := requireID("project id", projectID); err != nil {
		return domain.ProjectStatusInfo{}, err
	}
	var out domain.ProjectStatusInfo
	q := url.Values{"project_id": {projectID}}
	if err := get(ctx, c, c.apipath(q, "projects", "get-project-status"), &out); err != nil {
		return domain.ProjectStatusInfo{}, err
	}
	if out.ProjectID == "" {
		out.ProjectID = projectID
	}
	return out, nil
}

// ListProjects lists project summaries.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var ws []projectWire
	if err := get(ctx, c, c.apipath(nil, "projects", "list-projects"), &ws); err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(ws))
	for i := range ws {
		out = append(out, ws[i].project())
	}
	return out, nil
}

// UpdateProject renames a project.
func (c *Client) UpdateProject(
	ctx context.Context,
	projectID string,
	in domain.UpdateProjectInput,
) (domain.ProjectStatusInfo, error) {
	if err := requireID("project id", projectID); err != nil {
		return domain.ProjectStatusInfo{}, err
	}
	if err := in.Validate(); err != nil {
		return domain.ProjectStatusInfo{}, err
	}
	var out domain.ProjectStatusInfo
	q := url.Values{"project_id": {projectID}, "name": {in.Name}}
	if err := post(ctx, c, c.apipath(q, "projects", "update-project-async"), nil, &out); err != nil {
		return domain.ProjectStatusInfo{}, err
	}
	if out.ProjectID == "" {
		out.ProjectID = projectID
	}
	if out.Status == "" {
		out.Status = domain.ProjectStatusOutdated
	}
	return out, nil
}
