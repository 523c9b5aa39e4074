package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s-nishad/DueDiligence/internal/adapters/driven/storage/memory"
	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
)

var fastTracker = domain.TrackerSettings{
	PollInterval:           5 * time.Millisecond,
	MaxInterval:            20 * time.Millisecond,
	BackoffMultiplier:      2,
	MaxConsecutiveFailures: 3,
}

// script replays request snapshots in order and repeats the last one.
type script struct {
	mu    sync.Mutex
	steps []func() (*domain.Request, error)
	gate  chan struct{}
}

func (s *script) next(string) (*domain.Request, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	step := s.steps[0]
	if len(s.steps) > 1 {
		s.steps = s.steps[1:]
	}
	s.mu.Unlock()
	return step()
}

func snapshot(status domain.RequestStatus, progress *float64) func() (*domain.Request, error) {
	return func() (*domain.Request, error) {
		return &domain.Request{ID: "r-1", Status: status, Progress: progress}, nil
	}
}

func failing(err error) func() (*domain.Request, error) {
	return func() (*domain.Request, error) { return nil, err }
}

// eventLog collects job events safely.
type eventLog struct {
	mu     sync.Mutex
	events []domain.JobEvent
}

func (l *eventLog) add(ev domain.JobEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) all() []domain.JobEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.JobEvent(nil), l.events...)
}

func (l *eventLog) terminal() []domain.JobEvent {
	var out []domain.JobEvent
	for _, ev := range l.all() {
		if ev.Type.IsTerminal() {
			out = append(out, ev)
		}
	}
	return out
}

type mockPublisher struct {
	eventLog
	closed bool
}

func (p *mockPublisher) Publish(_ context.Context, ev domain.JobEvent) error {
	p.add(ev)
	return nil
}

func (p *mockPublisher) Close() error {
	p.closed = true
	return nil
}

type trackerFixture struct {
	backend   *mockBackend
	store     *memory.Store
	tracker   *JobTracker
	publisher *mockPublisher
}

func newTrackerFixture(s *script) *trackerFixture {
	backend := &mockBackend{
		getRequest: s.next,
		getProjectInfo: func(id string) (*domain.ProjectInfo, error) {
			info := sampleProject(domain.ProjectStatusReady,
				domain.Document{ID: "d-1", Name: "a.pdf", Status: domain.DocumentStatusIndexed})
			return info, nil
		},
	}
	store := memory.NewStore()
	publisher := &mockPublisher{}
	projects := NewProjectService(backend, store)
	return &trackerFixture{
		backend:   backend,
		store:     store,
		tracker:   NewJobTracker(backend, store, projects, fastTracker, publisher),
		publisher: publisher,
	}
}

var indexHandle = domain.RequestHandle{
	ID:        "r-1",
	Status:    domain.RequestStatusQueued,
	Kind:      domain.RequestKindIndexDocument,
	ProjectID: "p-1",
}

func track(t *testing.T, f *trackerFixture, s *script) (driving.JobHandle, *eventLog) {
	t.Helper()
	s.gate = make(chan struct{})
	job := f.tracker.Track(context.Background(), indexHandle)
	log := &eventLog{}
	job.Subscribe(log.add)
	close(s.gate)
	return job, log
}

func wait(t *testing.T, job driving.JobHandle) (domain.Request, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := job.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return req, err
}

func TestTracker_CompletesWithOneTerminalEvent(t *testing.T) {
	s := &script{steps: []func() (*domain.Request, error){
		snapshot(domain.RequestStatusQueued, nil),
		snapshot(domain.RequestStatusRunning, ptr(0.4)),
		func() (*domain.Request, error) {
			return &domain.Request{
				ID: "r-1", Status: domain.RequestStatusCompleted, Progress: ptr(1.0),
				Result: domain.IndexDocumentResult{ProjectID: "p-1", Filename: "a.pdf"},
			}, nil
		},
	}}
	f := newTrackerFixture(s)

	var cachedAtCompletion bool
	job, log := track(t, f, s)
	job.Subscribe(func(ev domain.JobEvent) {
		if ev.Type == domain.JobEventCompleted {
			_, cachedAtCompletion = f.store.Project("p-1")
		}
	})

	req, err := wait(t, job)

	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, req.Status)
	assert.Equal(t, domain.RequestKindIndexDocument, req.Kind)
	assert.True(t, cachedAtCompletion)

	events := log.all()
	require.Len(t, events, 2)
	assert.Equal(t, domain.JobEventProgress, events[0].Type)
	assert.InDelta(t, 0.4, *events[0].Request.Progress, 1e-9)
	assert.Equal(t, domain.JobEventCompleted, events[1].Type)
	assert.NoError(t, events[1].RefreshErr)

	polls := f.backend.count("GetRequest")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, polls, f.backend.count("GetRequest"))
	assert.Equal(t, 3, polls)

	cached, ok := f.store.Request("r-1")
	require.True(t, ok)
	assert.Equal(t, domain.RequestStatusCompleted, cached.Status)
	assert.Len(t, f.publisher.all(), 1)
}

func TestTracker_FailedJobSurfacesBackendError(t *testing.T) {
	s := &script{steps: []func() (*domain.Request, error){
		snapshot(domain.RequestStatusRunning, ptr(0.1)),
		func() (*domain.Request, error) {
			return &domain.Request{ID: "r-1", Status: domain.RequestStatusFailed, Progress: ptr(0.1), Error: "cannot extract text"}, nil
		},
	}}
	f := newTrackerFixture(s)
	job, log := track(t, f, s)

	req, err := wait(t, job)

	assert.ErrorIs(t, err, domain.ErrJobFailed)
	assert.Equal(t, "cannot extract text", err.Error())
	assert.Equal(t, domain.RequestStatusFailed, req.Status)
	terminal := log.terminal()
	require.Len(t, terminal, 1)
	assert.Equal(t, domain.JobEventFailed, terminal[0].Type)
	assert.Equal(t, "cannot extract text", terminal[0].ErrMessage)
	assert.Zero(t, f.backend.count("GetProjectInfo"))
}

func TestTracker_GivesUpAfterConsecutiveFailures(t *testing.T) {
	s := &script{steps: []func() (*domain.Request, error){failing(serverError("unavailable"))}}
	f := newTrackerFixture(s)
	job, log := track(t, f, s)

	_, err := wait(t, job)

	assert.ErrorIs(t, err, domain.ErrTrackerGaveUp)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, fastTracker.MaxConsecutiveFailures, f.backend.count("GetRequest"))
	terminal := log.terminal()
	require.Len(t, terminal, 1)
	assert.Equal(t, domain.JobEventTrackerFailed, terminal[0].Type)
}

func TestTracker_RecoversFromTransientFailures(t *testing.T) {
	s := &script{steps: []func() (*domain.Request, error){
		failing(serverError("unavailable")),
		failing(&domain.Error{Kind: domain.ErrorKindTransport, Message: "cannot reach backend"}),
		snapshot(domain.RequestStatusRunning, ptr(0.5)),
		failing(serverError("unavailable")),
		failing(serverError("unavailable")),
		snapshot(domain.RequestStatusCompleted, ptr(1.0)),
	}}
	f := newTrackerFixture(s)
	job, log := track(t, f, s)

	_, err := wait(t, job)

	require.NoError(t, err)
	terminal := log.terminal()
	require.Len(t, terminal, 1)
	assert.Equal(t, domain.JobEventCompleted, terminal[0].Type)
	assert.Equal(t, 6, f.backend.count("GetRequest"))
}

func TestTracker_NotFoundStopsImmediately(t *testing.T) {
	s := &script{steps: []func() (*domain.Request, error){
		failing(&domain.Error{Kind: domain.ErrorKindNotFound, Message: "Request not found"}),
	}}
	f := newTrackerFixture(s)
	job, log := track(t, f, s)

	_, err := wait(t, job)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, f.backend.count("GetRequest"))
	require.Len(t, log.terminal(), 1)
	assert.Equal(t, domain.JobEventTrackerFailed, log.terminal()[0].Type)
}

func TestTracker_CancelStopsNotifications(t *testing.T) {
	progress := 0.1
	finished := false
	var mu sync.Mutex
	s := &script{steps: []func() (*domain.Request, error){
		func() (*domain.Request, error) {
			mu.Lock()
			defer mu.Unlock()
			if finished {
				return &domain.Request{ID: "r-1", Status: domain.RequestStatusCompleted, Progress: ptr(1.0)}, nil
			}
			progress += 0.01
			return &domain.Request{ID: "r-1", Status: domain.RequestStatusRunning, Progress: ptr(progress)}, nil
		},
	}}
	f := newTrackerFixture(s)
	job, log := track(t, f, s)

	require.Eventually(t, func() bool { return len(log.all()) >= 2 }, time.Second, time.Millisecond)
	job.Cancel()

	_, err := wait(t, job)
	assert.ErrorIs(t, err, domain.ErrTrackingCancelled)
	assert.True(t, IsCancelled(err))
	seen := len(log.all())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, seen, len(log.all()))
	assert.Empty(t, log.terminal())
	assert.Empty(t, f.publisher.all())

	// The job keeps running on the backend; a direct read sees its end.
	mu.Lock()
	finished = true
	mu.Unlock()
	truth, err := f.tracker.Get(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, truth.Status)
	assert.Empty(t, log.terminal())
}

func TestTracker_StoreSeesRefreshedProjectBeforeCompletion(t *testing.T) {
	s := &script{steps: []func() (*domain.Request, error){
		snapshot(domain.RequestStatusRunning, ptr(0.1)),
		snapshot(domain.RequestStatusCompleted, ptr(1.0)),
	}}
	f := newTrackerFixture(s)

	var (
		mu        sync.Mutex
		completed int
		stale     int
	)
	f.store.Subscribe(func(ev driven.StoreEvent) {
		if ev.Kind != driven.StoreEventRequest {
			return
		}
		req, ok := f.store.Request(ev.ID)
		if !ok || req.Status != domain.RequestStatusCompleted {
			return
		}
		_, cached := f.store.Project("p-1")
		mu.Lock()
		defer mu.Unlock()
		completed++
		if !cached {
			stale++
		}
	})
	job, _ := track(t, f, s)

	_, err := wait(t, job)

	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, completed)
	assert.Zero(t, stale)
}

func TestTracker_CompletedRefreshFailureKeepsCache(t *testing.T) {
	s := &script{steps: []func() (*domain.Request, error){snapshot(domain.RequestStatusCompleted, ptr(1.0))}}
	f := newTrackerFixture(s)
	previous := sampleProject(domain.ProjectStatusIndexing)
	f.store.PutProject(*previous)
	f.backend.getProjectInfo = func(string) (*domain.ProjectInfo, error) {
		return nil, serverError("backend down")
	}
	job, log := track(t, f, s)

	_, err := wait(t, job)

	require.NoError(t, err)
	terminal := log.terminal()
	require.Len(t, terminal, 1)
	assert.Equal(t, domain.JobEventCompleted, terminal[0].Type)
	assert.ErrorIs(t, terminal[0].RefreshErr, domain.ErrTransport)

	cached, ok := f.store.Project("p-1")
	require.True(t, ok)
	assert.Equal(t, domain.ProjectStatusIndexing, cached.Status)
}

func TestTracker_ProgressNeverMovesBackwards(t *testing.T) {
	s := &script{steps: []func() (*domain.Request, error){
		snapshot(domain.RequestStatusRunning, ptr(0.6)),
		snapshot(domain.RequestStatusRunning, ptr(0.3)),
		snapshot(domain.RequestStatusCompleted, ptr(1.0)),
	}}
	f := newTrackerFixture(s)
	job, log := track(t, f, s)

	_, err := wait(t, job)

	require.NoError(t, err)
	for _, ev := range log.all() {
		if ev.Type == domain.JobEventProgress {
			assert.GreaterOrEqual(t, *ev.Request.Progress, 0.6)
		}
	}
}

func TestTracker_SubscriptionLifecycle(t *testing.T) {
	s := &script{steps: []func() (*domain.Request, error){snapshot(domain.RequestStatusCompleted, ptr(1.0))}}
	f := newTrackerFixture(s)
	job, _ := track(t, f, s)

	removed := &eventLog{}
	dispose := job.Subscribe(removed.add)
	dispose()
	dispose()

	_, err := wait(t, job)
	require.NoError(t, err)
	assert.Empty(t, removed.all())

	late := &eventLog{}
	job.Subscribe(late.add)
	require.Len(t, late.all(), 1)
	assert.Equal(t, domain.JobEventCompleted, late.all()[0].Type)
}

func TestTracker_TrackIsIdempotentWhileRunning(t *testing.T) {
	s := &script{steps: []func() (*domain.Request, error){snapshot(domain.RequestStatusRunning, ptr(0.2))}}
	f := newTrackerFixture(s)
	job, _ := track(t, f, s)
	defer job.Cancel()

	again := f.tracker.Track(context.Background(), indexHandle)

	assert.Same(t, job, again)
}
