package driven

import "github.com/s-nishad/DueDiligence/internal/core/domain"

// StoreEventKind names what changed in a SnapshotStore.
type StoreEventKind string

// Store event kinds.
const (
	StoreEventProject        StoreEventKind = "project"
	StoreEventRequest        StoreEventKind = "request"
	StoreEventAnswer         StoreEventKind = "answer"
	StoreEventCurrentProject StoreEventKind = "current_project"
	StoreEventCurrentRequest StoreEventKind = "current_request"
)

// StoreEvent describes one write to a SnapshotStore.
type StoreEvent struct {
	Kind StoreEventKind

	// ID is the key that was written. Empty when a current pointer was
	// cleared.
	ID string
}

// Listener is notified synchronously after every write.
type Listener func(StoreEvent)

// SnapshotStore is the observable client cache.
//
// Every mutating method writes then notifies every listener before it
// returns. There is no batching and no deduplication: writing an identical
// value still notifies. Reads return copies, so snapshots held by callers
// never change underneath them. The store never calls the backend.
type SnapshotStore interface {
	// CurrentProject returns the selected project ID.
	CurrentProject() (string, bool)

	// SetCurrentProject selects a project. An empty ID clears the selection.
	SetCurrentProject(projectID string)

	// CurrentRequest returns the selected request ID.
	CurrentRequest() (string, bool)

	// SetCurrentRequest selects a request. An empty ID clears the selection.
	SetCurrentRequest(requestID string)

	// Project returns a cached project snapshot.
	Project(projectID string) (domain.ProjectInfo, bool)

	// Projects returns every cached project snapshot.
	Projects() []domain.ProjectInfo

	// PutProject caches a project snapshot.
	PutProject(info domain.ProjectInfo)

	// Request returns a cached request snapshot.
	Request(requestID string) (domain.Request, bool)

	// Requests returns every cached request snapshot.
	Requests() []domain.Request

	// PutRequest caches a request snapshot.
	PutRequest(req domain.Request)

	// Answer returns a cached answer.
	Answer(answerID string) (domain.Answer, bool)

	// PutAnswer caches an answer.
	PutAnswer(answer domain.Answer)

	// Subscribe registers a listener. The returned function removes it;
	// calling it more than once has no further effect.
	Subscribe(l Listener) (unsubscribe func())
}
