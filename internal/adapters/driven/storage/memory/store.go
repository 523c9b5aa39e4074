package memory

import (
	"sort"
	"sync"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SnapshotStore = (*Store)(nil)

// Store is the in-memory observable snapshot cache.
// Create one per consumer; there is no shared instance.
type Store struct {
	mu             sync.RWMutex
	currentProject string
	currentRequest string
	projects       map[string]domain.ProjectInfo
	requests       map[string]domain.Request
	answers        map[string]domain.Answer
	listeners      map[uint64]driven.Listener
	nextListener   uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		projects:  make(map[string]domain.ProjectInfo),
		requests:  make(map[string]domain.Request),
		answers:   make(map[string]domain.Answer),
		listeners: make(map[uint64]driven.Listener),
	}
}

// CurrentProject returns the selected project ID.
func (s *Store) CurrentProject() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentProject, s.currentProject != ""
}

// SetCurrentProject selects a project. An empty ID clears the selection.
func (s *Store) SetCurrentProject(projectID string) {
	s.mu.Lock()
	s.currentProject = projectID
	s.mu.Unlock()
	s.notify(driven.StoreEvent{Kind: driven.StoreEventCurrentProject, ID: projectID})
}

// CurrentRequest returns the selected request ID.
func (s *Store) CurrentRequest() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRequest, s.currentRequest != ""
}

// SetCurrentRequest selects a request. An empty ID clears the selection.
func (s *Store) SetCurrentRequest(requestID string) {
	s.mu.Lock()
	s.currentRequest = requestID
	s.mu.Unlock()
	s.notify(driven.StoreEvent{Kind: driven.StoreEventCurrentRequest, ID: requestID})
}

// Project returns a copy of a cached project snapshot.
func (s *Store) Project(projectID string) (domain.ProjectInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.projects[projectID]
	if !ok {
		return domain.ProjectInfo{}, false
	}
	return info.Clone(), true
}

// Projects returns copies of every cached project, ordered by ID.
func (s *Store) Projects() []domain.ProjectInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ProjectInfo, 0, len(s.projects))
	for _, info := range s.projects {
		out = append(out, info.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PutProject caches a copy of a project snapshot.
func (s *Store) PutProject(info domain.ProjectInfo) {
	s.mu.Lock()
	s.projects[info.ID] = info.Clone()
	s.mu.Unlock()
	s.notify(driven.StoreEvent{Kind: driven.StoreEventProject, ID: info.ID})
}

// Request returns a cached request snapshot.
func (s *Store) Request(requestID string) (domain.Request, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok {
		return domain.Request{}, false
	}
	return req.Clone(), true
}

// Requests returns every cached request, ordered by ID.
func (s *Store) Requests() []domain.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Request, 0, len(s.requests))
	for _, req := range s.requests {
		out = append(out, req.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PutRequest caches a copy of a request snapshot.
func (s *Store) PutRequest(req domain.Request) {
	s.mu.Lock()
	s.requests[req.ID] = req.Clone()
	s.mu.Unlock()
	s.notify(driven.StoreEvent{Kind: driven.StoreEventRequest, ID: req.ID})
}

// Answer returns a copy of a cached answer.
func (s *Store) Answer(answerID string) (domain.Answer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.answers[answerID]
	if !ok {
		return domain.Answer{}, false
	}
	return a.Clone(), true
}

// PutAnswer caches a copy of an answer.
func (s *Store) PutAnswer(answer domain.Answer) {
	s.mu.Lock()
	s.answers[answer.ID] = answer.Clone()
	s.mu.Unlock()
	s.notify(driven.StoreEvent{Kind: driven.StoreEventAnswer, ID: answer.ID})
}

// Subscribe registers a listener and returns an idempotent unsubscribe.
func (s *Store) Subscribe(l driven.Listener) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// notify calls every listener registered at the time of the write.
// The lock is released first so listeners may read or write the store.
func (s *Store) notify(ev driven.StoreEvent) {
	s.mu.RLock()
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	ls := make([]driven.Listener, len(ids))
	for i, id := range ids {
		ls[i] = s.listeners[id]
	}
	s.mu.RUnlock()

	for _, l := range ls {
		l(ev)
	}
}
