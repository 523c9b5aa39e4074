package domain

import (
	"io"
	"time"
)

// DocumentStatus is the indexing state of a document.
type DocumentStatus string

// Document statuses. PENDING → INDEXING → INDEXED | FAILED.
const (
	DocumentStatusPending  DocumentStatus = "PENDING"
	DocumentStatusIndexing DocumentStatus = "INDEXING"
	DocumentStatusIndexed  DocumentStatus = "INDEXED"
	DocumentStatusFailed   DocumentStatus = "FAILED"
)

// IsValid returns true if the document status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusIndexing, DocumentStatusIndexed, DocumentStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once indexing has finished either way.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusIndexed || s == DocumentStatusFailed
}

// CanTransition reports whether the lifecycle allows moving to next.
func (s DocumentStatus) CanTransition(next DocumentStatus) bool {
	switch s {
	case DocumentStatusPending:
		return next == DocumentStatusIndexing || next == DocumentStatusFailed
	case DocumentStatusIndexing:
		return next == DocumentStatusIndexed || next == DocumentStatusFailed
	default:
		return false
	}
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// Document is an uploaded file belonging to a project.
type Document struct {
	// ID uniquely identifies the document.
	ID string `json:"document_id" validate:"required"`

	// Name is the original filename.
	Name string `json:"name"`

	// Status is the indexing state.
	Status DocumentStatus `json:"status" validate:"required"`

	// Scope marks membership: SELECTED_DOCS means the document belongs to
	// the selected subset of a SELECTED_DOCS project.
	Scope DocumentScope `json:"scope,omitempty"`

	// Error is the indexing failure reason when Status is FAILED.
	Error string `json:"error,omitempty"`

	// IndexedAt is when indexing finished successfully.
	IndexedAt *time.Time `json:"indexed_at,omitempty"`

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the document last changed state.
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the document fields.
func (d *Document) Validate() error {
	if err := validateStruct("document", d); err != nil {
		return err
	}
	if !d.Status.IsValid() {
		return Invalid("document %s: unknown status %q", d.ID, d.Status)
	}
	if d.Scope != "" && !d.Scope.IsValid() {
		return Invalid("document %s: unknown scope %q", d.ID, d.Scope)
	}
	return nil
}

// ChangedAt is the latest known mutation time of the document.
func (d *Document) ChangedAt() time.Time {
	t := d.CreatedAt
	if d.UpdatedAt.After(t) {
		t = d.UpdatedAt
	}
	if d.IndexedAt != nil && d.IndexedAt.After(t) {
		t = *d.IndexedAt
	}
	return t
}

// Clone returns a deep copy.
func (d *Document) Clone() Document {
	out := *d
	if d.IndexedAt != nil {
		t := *d.IndexedAt
		out.IndexedAt = &t
	}
	return out
}

// Upload is a file handed to the backend for indexing or parsing.
type Upload struct {
	// Filename is sent as the multipart filename.
	Filename string

	// Content is read once while the request body is streamed.
	Content io.Reader
}

// Validate checks an upload has a name and content.
func (u Upload) Validate() error {
	if u.Filename == "" {
		return Invalid("upload: filename is required")
	}
	if u.Content == nil {
		return Invalid("upload %s: content is required", u.Filename)
	}
	return nil
}
