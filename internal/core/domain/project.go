package domain

import "time"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

// Project statuses. The backend owns the value; the client only derives it
// to detect stale snapshots.
const (
	// ProjectStatusCreated is a project with no processed documents yet.
	ProjectStatusCreated ProjectStatus = "CREATED"

	// ProjectStatusIndexing is a project with documents still being indexed.
	ProjectStatusIndexing ProjectStatus = "INDEXING"

	// ProjectStatusReady is a project whose in-scope documents are all indexed.
	ProjectStatusReady ProjectStatus = "READY"

	// ProjectStatusOutdated is a project whose document set changed after
	// it was last READY.
	ProjectStatusOutdated ProjectStatus = "OUTDATED"
)

// IsValid returns true if the project status is recognised.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusCreated, ProjectStatusIndexing, ProjectStatusReady, ProjectStatusOutdated:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s ProjectStatus) String() string {
	return string(s)
}

// DocumentScope selects which documents a project answers from.
type DocumentScope string

// Document scopes.
const (
	// ScopeAllDocs uses every document of the project.
	ScopeAllDocs DocumentScope = "ALL_DOCS"

	// ScopeSelectedDocs uses only documents marked as selected.
	ScopeSelectedDocs DocumentScope = "SELECTED_DOCS"
)

// IsValid returns true if the scope is recognised.
func (s DocumentScope) IsValid() bool {
	return s == ScopeAllDocs || s == ScopeSelectedDocs
}

// String returns the string representation.
func (s DocumentScope) String() string {
	return string(s)
}

// Description returns a human-readable description of the scope.
func (s DocumentScope) Description() string {
	switch s {
	case ScopeAllDocs:
		return "All documents"
	case ScopeSelectedDocs:
		return "Selected documents only"
	default:
		return "Unknown"
	}
}

// Project is the summary of a questionnaire project.
type Project struct {
	// ID uniquely identifies the project.
	ID string `json:"project_id" validate:"required"`

	// Name is the display name.
	Name string `json:"name" validate:"required"`

	// Status is the backend-reported lifecycle state.
	Status ProjectStatus `json:"status" validate:"required"`

	// Scope selects the documents used for answers.
	Scope DocumentScope `json:"scope" validate:"required"`

	// CreatedAt is when the project was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the project was last modified.
	UpdatedAt time.Time `json:"updated_at"`

	// ReadyAt is when the project last became READY. Nil if never.
	ReadyAt *time.Time `json:"ready_at,omitempty"`
}

// ProjectStatusInfo is the light-weight status returned by status polls
// and mutations.
type ProjectStatusInfo struct {
	ProjectID string        `json:"project_id"`
	Status    ProjectStatus `json:"status"`
}

// ProjectInfo is a full project snapshot: summary, questionnaire and
// document corpus.
type ProjectInfo struct {
	Project

	// Sections is the ordered questionnaire.
	Sections []Section `json:"sections"`

	// Documents is the project corpus.
	Documents []Document `json:"documents"`
}

// Validate checks the snapshot is internally consistent.
func (p *ProjectInfo) Validate() error {
	if err := validateStruct("project", &p.Project); err != nil {
		return err
	}
	if !p.Status.IsValid() {
		return Invalid("project %s: unknown status %q", p.ID, p.Status)
	}
	if !p.Scope.IsValid() {
		return Invalid("project %s: unknown scope %q", p.ID, p.Scope)
	}
	seen := make(map[string]struct{})
	for i := range p.Sections {
		for j := range p.Sections[i].Questions {
			q := &p.Sections[i].Questions[j]
			if _, dup := seen[q.ID]; dup {
				return Invalid("project %s: duplicate question id %q", p.ID, q.ID)
			}
			seen[q.ID] = struct{}{}
			if q.Answer == nil {
				continue
			}
			if q.Answer.QuestionID != "" && q.Answer.QuestionID != q.ID {
				return Invalid("question %s: attached answer references question %q", q.ID, q.Answer.QuestionID)
			}
			if err := q.Answer.Validate(); err != nil {
				return err
			}
		}
	}
	for i := range p.Documents {
		if err := p.Documents[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Questions returns every question in questionnaire order.
func (p *ProjectInfo) Questions() []Question {
	var out []Question
	for _, s := range p.Sections {
		out = append(out, s.Questions...)
	}
	return out
}

// Question finds a question by ID.
func (p *ProjectInfo) Question(id string) (Question, bool) {
	for _, s := range p.Sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// InScope returns the documents that count toward the project status.
func (p *ProjectInfo) InScope() []Document {
	if p.Scope != ScopeSelectedDocs {
		return p.Documents
	}
	var out []Document
	for _, d := range p.Documents {
		if d.Scope == ScopeSelectedDocs {
			out = append(out, d)
		}
	}
	return out
}

// EffectiveStatus returns the status the snapshot should be presented
// with. A backend status of READY is downgraded to OUTDATED when the
// document set shows a change after ReadyAt, so a stale READY is never
// shown after a document failed or was added.
func (p *ProjectInfo) EffectiveStatus() ProjectStatus {
	derived := DeriveProjectStatus(p.InScope(), p.ReadyAt)
	if derived == ProjectStatusOutdated {
		return ProjectStatusOutdated
	}
	if p.Status.IsValid() {
		return p.Status
	}
	return derived
}

// Clone returns a deep copy so cached snapshots stay immutable.
func (p *ProjectInfo) Clone() ProjectInfo {
	out := *p
	if p.ReadyAt != nil {
		t := *p.ReadyAt
		out.ReadyAt = &t
	}
	if p.Sections != nil {
		out.Sections = make([]Section, len(p.Sections))
		for i := range p.Sections {
			out.Sections[i] = p.Sections[i].Clone()
		}
	}
	if p.Documents != nil {
		out.Documents = make([]Document, len(p.Documents))
		for i := range p.Documents {
			out.Documents[i] = p.Documents[i].Clone()
		}
	}
	return out
}

// DeriveProjectStatus computes a project status from its in-scope
// documents and the time it was last READY.
//
// Once a project has been READY, any document created or changed after
// that instant, and any FAILED document, yields OUTDATED. Before the first
// READY, an empty corpus is CREATED, in-flight documents give INDEXING, a
// FAILED document gives OUTDATED, and a fully indexed corpus gives READY.
func DeriveProjectStatus(docs []Document, readyAt *time.Time) ProjectStatus {
	if readyAt != nil {
		for _, d := range docs {
			if d.Status == DocumentStatusFailed || d.ChangedAt().After(*readyAt) {
				return ProjectStatusOutdated
			}
		}
	}
	if len(docs) == 0 {
		if readyAt != nil {
			return ProjectStatusReady
		}
		return ProjectStatusCreated
	}
	var inFlight, failed bool
	for _, d := range docs {
		switch d.Status {
		case DocumentStatusPending, DocumentStatusIndexing:
			inFlight = true
		case DocumentStatusFailed:
			failed = true
		}
	}
	switch {
	case inFlight:
		return ProjectStatusIndexing
	case failed:
		return ProjectStatusOutdated
	default:
		return ProjectStatusReady
	}
}

// CreateProjectInput holds the fields for a new project.
type CreateProjectInput struct {
	Name  string        `json:"name" validate:"required"`
	Scope DocumentScope `json:"scope" validate:"required,oneof=ALL_DOCS SELECTED_DOCS"`
}

// Validate checks the input before it is sent.
func (in CreateProjectInput) Validate() error {
	return validateStruct("create project", in)
}

// UpdateProjectInput holds mutable project fields.
type UpdateProjectInput struct {
	Name string `json:"name" validate:"required"`
}

// Validate checks the input before it is sent.
func (in UpdateProjectInput) Validate() error {
	return validateStruct("update project", in)
}
