package rest

import (
	"context"
	"net/url"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// IndexDocument uploads a document and returns the indexing job handle.
func (c *Client) IndexDocument(ctx context.Context, projectID string, upload domain.Upload) (domain.RequestHandle, error) {
	if err := requireID("project id", projectID); err != nil {
		return domain.RequestHandle{}, err
	}
	if err := upload.Validate(); err != nil {
		return domain.RequestHandle{}, err
	}
	body, err := multipartPayload(upload)
	if err != nil {
		return domain.RequestHandle{}, &domain.Error{Kind: domain.ErrorKindValidation, Message: "cannot prepare upload", Cause: err}
	}

	var out struct {
		RequestID string               `json:"request_id"`
		Status    domain.RequestStatus `json:"status"`
	}
	q := url.Values{"project_id": {projectID}}
	if err := post(ctx, c, c.apipath(q, "documents", "index-document-async"), body, &out); err != nil {
		return domain.RequestHandle{}, err
	}
	if out.RequestID == "" {
		return domain.RequestHandle{}, &domain.Error{Kind: domain.ErrorKindServer, Message: "backend returned no request id"}
	}
	if out.Status == "" {
		out.Status = domain.RequestStatusQueued
	}
	return domain.RequestHandle{
		ID:        out.RequestID,
		Status:    out.Status,
		Kind:      domain.RequestKindIndexDocument,
		ProjectID: projectID,
	}, nil
}

// ListDocuments lists the documents of a project.
func (c *Client) ListDocuments(ctx context.Context, projectID string) ([]domain.Document, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}
	var out struct {
		Documents []documentWire `json:"documents"`
	}
	q := url.Values{"project_id": {projectID}}
	if err := get(ctx, c, c.apipath(q, "documents", "project-documents"), &out); err != nil {
		return nil, err
	}
	docs := make([]domain.Document, 0, len(out.Documents))
	for i := range out.Documents {
		docs = append(docs, out.Documents[i].document())
	}
	return docs, nil
}
