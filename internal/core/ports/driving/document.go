package driving

import (
	"context"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// DocumentService uploads and lists project documents.
type DocumentService interface {
	// Index uploads a document and returns the indexing job handle.
	Index(ctx context.Context, projectID string, upload domain.Upload) (domain.RequestHandle, error)

	// List lists the documents of a project.
	List(ctx context.Context, projectID string) ([]domain.Document, error)
}
