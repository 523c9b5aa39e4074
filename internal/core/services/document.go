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

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService uploads documents for indexing and lists them.
type DocumentService struct {
	backend driven.Backend
	store   driven.SnapshotStore
	log     *slog.Logger
	now     func() time.Time
}

// NewDocumentService creates a new document service.
func NewDocumentService(backend driven.Backend, store driven.SnapshotStore) *DocumentService {
	return &DocumentService{
		backend: backend,
		store:   store,
		log:     logger.For("documents"),
		now:     time.Now,
	}
}

// Index uploads a document and returns the indexing job handle. The job
// is cached and becomes the current request.
func (s *DocumentService) Index(ctx context.Context, projectID string, upload domain.Upload) (domain.RequestHandle, error) {
	handle, err := s.backend.IndexDocument(ctx, projectID, upload)
	if err != nil {
		return domain.RequestHandle{}, fmt.Errorf("index %s: %w", upload.Filename, err)
	}
	if handle.ProjectID == "" {
		handle.ProjectID = projectID
	}

	s.store.PutRequest(domain.Request{
		ID:        handle.ID,
		Kind:      handle.Kind,
		ProjectID: handle.ProjectID,
		Status:    handle.Status,
		CreatedAt: s.now().UTC(),
	})
	s.store.SetCurrentRequest(handle.ID)
	s.log.Debug("document submitted", "project_id", projectID, "file", upload.Filename, "request_id", handle.ID)
	return handle, nil
}

// List lists the documents of a project.
func (s *DocumentService) List(ctx context.Context, projectID string) ([]domain.Document, error) {
	docs, err := s.backend.ListDocuments(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list documents of project %s: %w", projectID, err)
	}
	return docs, nil
}
