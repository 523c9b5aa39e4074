package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RequestStatus is the state of a backend job.
type RequestStatus string

// Request statuses. COMPLETED and FAILED are terminal.
const (
	RequestStatusQueued    RequestStatus = "QUEUED"
	RequestStatusRunning   RequestStatus = "RUNNING"
	RequestStatusCompleted RequestStatus = "COMPLETED"
	RequestStatusFailed    RequestStatus = "FAILED"
)

// IsValid returns true if the request status is recognised.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusQueued, RequestStatusRunning, RequestStatusCompleted, RequestStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once the job can no longer change.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusFailed
}

// String returns the string representation.
func (s RequestStatus) String() string {
	return string(s)
}

// RequestKind names the operation that started a job. It selects the
// shape of the job result.
type RequestKind string

// Request kinds.
const (
	RequestKindIndexDocument   RequestKind = "index_document"
	RequestKindGenerateAnswers RequestKind = "generate_answers"
	RequestKindUpdateProject   RequestKind = "update_project"
)

// RequestResult is the outcome of a completed job. Each RequestKind has
// exactly one concrete result type.
type RequestResult interface {
	Kind() RequestKind
}

// IndexDocumentResult is the result of an index_document job.
type IndexDocumentResult struct {
	ProjectID  string `json:"project_id"`
	DocumentID string `json:"document_id,omitempty"`
	Filename   string `json:"filename"`
}

// Kind implements RequestResult.
func (IndexDocumentResult) Kind() RequestKind { return RequestKindIndexDocument }

// GenerateAnswersResult is the result of a generate_answers job.
type GenerateAnswersResult struct {
	ProjectID string   `json:"project_id"`
	Answers   []Answer `json:"answers"`
}

// Kind implements RequestResult.
func (GenerateAnswersResult) Kind() RequestKind { return RequestKindGenerateAnswers }

// UpdateProjectResult is the result of an update_project job.
type UpdateProjectResult struct {
	ProjectID string        `json:"project_id"`
	Status    ProjectStatus `json:"status"`
}

// Kind implements RequestResult.
func (UpdateProjectResult) Kind() RequestKind { return RequestKindUpdateProject }

// DecodeResult decodes a raw job result into the variant for kind.
// An empty payload decodes to nil.
func DecodeResult(kind RequestKind, raw json.RawMessage) (RequestResult, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch kind {
	case RequestKindIndexDocument:
		var r IndexDocumentResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode %s result: %w", kind, err)
		}
		return r, nil
	case RequestKindGenerateAnswers:
		var r GenerateAnswersResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode %s result: %w", kind, err)
		}
		for i := range r.Answers {
			r.Answers[i].Normalize()
		}
		return r, nil
	case RequestKindUpdateProject:
		var r UpdateProjectResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode %s result: %w", kind, err)
		}
		return r, nil
	default:
		return nil, Invalid("unknown request kind %q", kind)
	}
}

// RequestHandle identifies a job just started on the backend, together
// with what started it and which project it belongs to.
type RequestHandle struct {
	ID        string        `json:"request_id"`
	Status    RequestStatus `json:"status"`
	Kind      RequestKind   `json:"kind"`
	ProjectID string        `json:"project_id"`
}

// Request is a snapshot of a backend job.
type Request struct {
	// ID uniquely identifies the job.
	ID string

	// Kind is the operation that started the job.
	Kind RequestKind

	// ProjectID is the project the job belongs to.
	ProjectID string

	// Status is the job state.
	Status RequestStatus

	// Progress is an opaque, non-decreasing progress value while RUNNING.
	Progress *float64

	// Error is the backend failure text when Status is FAILED.
	Error string

	// Result is set when Status is COMPLETED and the job produced output.
	Result RequestResult

	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Handle returns the identity part of the snapshot.
func (r *Request) Handle() RequestHandle {
	return RequestHandle{ID: r.ID, Status: r.Status, Kind: r.Kind, ProjectID: r.ProjectID}
}

// Clone returns a deep copy. The progress value, completion time and any
// answers in the result are copied.
func (r *Request) Clone() Request {
	out := *r
	if r.Progress != nil {
		p := *r.Progress
		out.Progress = &p
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		out.CompletedAt = &t
	}
	if res, ok := r.Result.(GenerateAnswersResult); ok && res.Answers != nil {
		answers := make([]Answer, len(res.Answers))
		for i := range res.Answers {
			answers[i] = res.Answers[i].Clone()
		}
		res.Answers = answers
		out.Result = res
	}
	return out
}

// Advance merges a newer observation into r and returns the result.
// A terminal request is never resurrected and progress never moves
// backwards while RUNNING.
func (r Request) Advance(next Request) (Request, error) {
	if next.ID != r.ID {
		return r, Invalid("request %s: observation for %s", r.ID, next.ID)
	}
	if r.Status.IsTerminal() {
		if next.Status != r.Status {
			return r, Invalid("request %s: %s is terminal, got %s", r.ID, r.Status, next.Status)
		}
		return r, nil
	}
	if next.Kind == "" {
		next.Kind = r.Kind
	}
	if next.ProjectID == "" {
		next.ProjectID = r.ProjectID
	}
	if r.Progress != nil && (next.Progress == nil || *next.Progress < *r.Progress) &&
		!next.Status.IsTerminal() {
		p := *r.Progress
		next.Progress = &p
	}
	return next, nil
}

// FailureError returns the job failure as a normalized error, or nil when
// the job did not fail.
func (r *Request) FailureError() error {
	if r.Status != RequestStatusFailed {
		return nil
	}
	msg := r.Error
	if msg == "" {
		msg = "job " + r.ID + " failed"
	}
	return &Error{Kind: ErrorKindJobFailed, Message: msg, Cause: ErrJobFailed}
}

// requestJSON is the serialized form used by snapshot archives.
type requestJSON struct {
	ID          string          `json:"request_id"`
	Kind        RequestKind     `json:"kind,omitempty"`
	ProjectID   string          `json:"project_id,omitempty"`
	Status      RequestStatus   `json:"status"`
	Progress    *float64        `json:"progress,omitempty"`
	Error       string          `json:"error,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// MarshalJSON encodes the result variant inline.
func (r Request) MarshalJSON() ([]byte, error) {
	out := requestJSON{
		ID:          r.ID,
		Kind:        r.Kind,
		ProjectID:   r.ProjectID,
		Status:      r.Status,
		Progress:    r.Progress,
		Error:       r.Error,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
	if r.Result != nil {
		raw, err := json.Marshal(r.Result)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", r.Kind, err)
		}
		out.Result = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the result using the kind field.
func (r *Request) UnmarshalJSON(data []byte) error {
	var in requestJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Request{
		ID:          in.ID,
		Kind:        in.Kind,
		ProjectID:   in.ProjectID,
		Status:      in.Status,
		Progress:    in.Progress,
		Error:       in.Error,
		CreatedAt:   in.CreatedAt,
		CompletedAt: in.CompletedAt,
	}
	if in.Kind == "" {
		return nil
	}
	result, err := DecodeResult(in.Kind, in.Result)
	if err != nil {
		return err
	}
	r.Result = result
	return nil
}
