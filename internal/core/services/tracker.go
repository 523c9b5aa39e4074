package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
	"github.com/s-nishad/DueDiligence/internal/logger"
)

// Ensure JobTracker and Job implement the interfaces.
var (
	_ driving.JobTracker = (*JobTracker)(nil)
	_ driving.JobHandle  = (*Job)(nil)
)

// publishTimeout bounds delivery of one event to the publisher.
const publishTimeout = 5 * time.Second

// projectRefresher re-reads a project into the cache.
type projectRefresher interface {
	Refresh(ctx context.Context, projectID string) error
}

// JobTracker polls backend jobs until they finish. Each tracked job runs
// in its own goroutine; jobs are independent of each other.
type JobTracker struct {
	backend   driven.Backend
	store     driven.SnapshotStore
	projects  projectRefresher
	publisher driven.JobEventPublisher
	cfg       domain.TrackerSettings
	log       *slog.Logger

	mu   sync.Mutex
	jobs map[string]*Job
}

// NewJobTracker creates a job tracker. publisher may be nil.
func NewJobTracker(
	backend driven.Backend,
	store driven.SnapshotStore,
	projects driving.ProjectService,
	cfg domain.TrackerSettings,
	publisher driven.JobEventPublisher,
) *JobTracker {
	defaults := domain.DefaultSettings().Tracker
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.MaxInterval < cfg.PollInterval {
		cfg.MaxInterval = cfg.PollInterval
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = defaults.BackoffMultiplier
	}
	if cfg.MaxConsecutiveFailures < 1 {
		cfg.MaxConsecutiveFailures = defaults.MaxConsecutiveFailures
	}
	return &JobTracker{
		backend:   backend,
		store:     store,
		projects:  projects,
		publisher: publisher,
		cfg:       cfg,
		log:       logger.For("tracker"),
		jobs:      make(map[string]*Job),
	}
}

// Track starts polling a job and returns its handle. Polling begins
// immediately. Tracking a job that is already being tracked returns the
// existing handle.
//
// Cancelling ctx stops tracking the same way Job.Cancel does.
func (t *JobTracker) Track(ctx context.Context, handle domain.RequestHandle) driving.JobHandle {
	t.mu.Lock()
	if existing, ok := t.jobs[handle.ID]; ok {
		t.mu.Unlock()
		return existing
	}

	status := handle.Status
	if !status.IsValid() {
		status = domain.RequestStatusQueued
	}
	initial := domain.Request{
		ID:        handle.ID,
		Kind:      handle.Kind,
		ProjectID: handle.ProjectID,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if cached, ok := t.store.Request(handle.ID); ok {
		if merged, err := cached.Advance(initial); err == nil {
			initial = merged
		} else {
			initial = cached
		}
	}

	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		tracker:   t,
		kind:      handle.Kind,
		snapshot:  initial,
		listeners: make(map[uint64]func(domain.JobEvent)),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	t.jobs[handle.ID] = job
	t.mu.Unlock()

	t.store.PutRequest(initial)
	go job.run(jobCtx)
	return job
}

// Get fetches the backend truth about a job, bypassing any tracker, and
// caches it.
func (t *JobTracker) Get(ctx context.Context, requestID string) (*domain.Request, error) {
	req, err := t.backend.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request %s: %w", requestID, err)
	}
	if cached, ok := t.store.Request(requestID); ok {
		if req.Kind == "" {
			req.Kind = cached.Kind
		}
		if req.ProjectID == "" {
			req.ProjectID = cached.ProjectID
		}
	}
	t.store.PutRequest(*req)
	return req, nil
}

func (t *JobTracker) forget(id string) {
	t.mu.Lock()
	delete(t.jobs, id)
	t.mu.Unlock()
}

// Job is one tracked backend job.
type Job struct {
	tracker *JobTracker
	kind    domain.RequestKind
	cancel  context.CancelFunc
	done    chan struct{}

	mu        sync.Mutex
	snapshot  domain.Request
	listeners map[uint64]func(domain.JobEvent)
	nextID    uint64
	terminal  *domain.JobEvent
	cancelled bool
	err       error
}

// ID returns the request ID.
func (j *Job) ID() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snapshot.ID
}

// Snapshot returns the last observed request state.
func (j *Job) Snapshot() domain.Request {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snapshot
}

// Subscribe registers a callback for job events. A subscriber added after
// the job finished receives the terminal event straight away.
func (j *Job) Subscribe(fn func(domain.JobEvent)) func() {
	j.mu.Lock()
	if j.terminal != nil || j.cancelled {
		ev, cancelled := j.terminal, j.cancelled
		j.mu.Unlock()
		if ev != nil && !cancelled {
			fn(*ev)
		}
		return func() {}
	}
	id := j.nextID
	j.nextID++
	j.listeners[id] = fn
	j.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			j.mu.Lock()
			delete(j.listeners, id)
			j.mu.Unlock()
		})
	}
}

// Cancel stops local tracking. No further events are delivered. The
// backend job keeps running.
func (j *Job) Cancel() {
	j.mu.Lock()
	if j.terminal == nil && !j.cancelled {
		j.cancelled = true
		j.err = domain.ErrTrackingCancelled
		j.listeners = make(map[uint64]func(domain.JobEvent))
	}
	j.mu.Unlock()
	j.cancel()
}

// Done is closed when tracking has stopped for any reason.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until tracking stops and returns the final snapshot. The
// error is the job failure, the tracker failure, or ErrTrackingCancelled.
func (j *Job) Wait(ctx context.Context) (domain.Request, error) {
	select {
	case <-j.done:
	case <-ctx.Done():
		return j.Snapshot(), ctx.Err()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snapshot, j.err
}

func (j *Job) run(ctx context.Context) {
	t := j.tracker
	id := j.ID()
	log := t.log.With("request_id", id)

	defer func() {
		j.mu.Lock()
		if j.terminal == nil && !j.cancelled {
			j.cancelled = true
			j.err = domain.ErrTrackingCancelled
		}
		j.mu.Unlock()
		t.forget(id)
		close(j.done)
	}()

	interval := t.cfg.PollInterval
	failures := 0
	for {
		req, err := t.backend.GetRequest(ctx, id)
		if ctx.Err() != nil {
			log.Debug("tracking stopped")
			return
		}

		switch {
		case err != nil && !domain.IsTransient(err):
			log.Warn("job can no longer be tracked", "error", err)
			j.finish(ctx, domain.JobEventTrackerFailed, err)
			return

		case err != nil:
			failures++
			if failures >= t.cfg.MaxConsecutiveFailures {
				log.Warn("giving up on job", "failures", failures, "error", err)
				j.finish(ctx, domain.JobEventTrackerFailed,
					fmt.Errorf("%w after %d attempts: %w", domain.ErrTrackerGaveUp, failures, err))
				return
			}
			interval = nextInterval(interval, t.cfg)
			log.Debug("poll failed, backing off", "failures", failures, "delay", interval, "error", err)

		default:
			failures = 0
			interval = t.cfg.PollInterval
			if done := j.observe(ctx, *req, log); done {
				return
			}
		}

		select {
		case <-ctx.Done():
			log.Debug("tracking stopped")
			return
		case <-time.After(interval):
		}
	}
}

// observe merges one snapshot and emits the matching event. It returns
// true once the job reached a terminal state.
func (j *Job) observe(ctx context.Context, req domain.Request, log *slog.Logger) bool {
	t := j.tracker
	if j.kind != "" && req.Kind != j.kind {
		req.Kind = j.kind
		if req.Result != nil && req.Result.Kind() != j.kind {
			req.Result = nil
		}
	}

	j.mu.Lock()
	prev := j.snapshot
	merged, err := prev.Advance(req)
	if err != nil {
		j.mu.Unlock()
		log.Warn("ignoring inconsistent job snapshot", "error", err)
		return false
	}
	j.snapshot = merged
	j.mu.Unlock()

	// A completed job refreshes its project before the request is cached,
	// so store subscribers never see completion against a stale project.
	if merged.Status == domain.RequestStatusCompleted {
		var refreshErr error
		if merged.ProjectID != "" && t.projects != nil {
			refreshErr = t.projects.Refresh(ctx, merged.ProjectID)
			if refreshErr != nil {
				log.Warn("job completed but project refresh failed", "project_id", merged.ProjectID, "error", refreshErr)
			}
		}
		t.store.PutRequest(merged)
		j.emit(ctx, domain.JobEvent{Type: domain.JobEventCompleted, RefreshErr: refreshErr})
		return true
	}

	t.store.PutRequest(merged)

	if merged.Status == domain.RequestStatusFailed {
		j.finish(ctx, domain.JobEventFailed, merged.FailureError())
		return true
	}

	if changed(prev, merged) {
		j.emit(ctx, domain.JobEvent{Type: domain.JobEventProgress})
	}
	return false
}

func (j *Job) finish(ctx context.Context, typ domain.JobEventType, err error) {
	j.emit(ctx, domain.JobEvent{Type: typ, Err: err})
}

// emit stamps and delivers one event. Terminal events are emitted at most
// once and are also handed to the publisher.
func (j *Job) emit(ctx context.Context, ev domain.JobEvent) {
	ev.ID = uuid.NewString()
	ev.At = time.Now().UTC()
	if ev.Err != nil {
		ev.ErrMessage = ev.Err.Error()
	}

	j.mu.Lock()
	if j.cancelled || j.terminal != nil {
		j.mu.Unlock()
		return
	}
	ev.Request = j.snapshot
	if ev.Type.IsTerminal() {
		j.terminal = &ev
		j.err = ev.Err
	}
	listeners := make([]func(domain.JobEvent), 0, len(j.listeners))
	for _, fn := range j.listeners {
		listeners = append(listeners, fn)
	}
	j.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}

	if ev.Type.IsTerminal() && j.tracker.publisher != nil {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := j.tracker.publisher.Publish(pctx, ev); err != nil {
			j.tracker.log.Warn("cannot publish job event", "request_id", ev.Request.ID, "type", ev.Type, "error", err)
		}
	}
}

func changed(prev, next domain.Request) bool {
	if prev.Status != next.Status {
		return true
	}
	switch {
	case prev.Progress == nil && next.Progress == nil:
		return false
	case prev.Progress == nil || next.Progress == nil:
		return true
	default:
		return *prev.Progress != *next.Progress
	}
}

// nextInterval grows the poll interval after a transient failure, capped
// at MaxInterval.
func nextInterval(cur time.Duration, cfg domain.TrackerSettings) time.Duration {
	next := time.Duration(float64(cur) * cfg.BackoffMultiplier)
	if next > cfg.MaxInterval {
		return cfg.MaxInterval
	}
	return next
}

// IsCancelled reports whether err means tracking was stopped locally.
func IsCancelled(err error) bool {
	return errors.Is(err, domain.ErrTrackingCancelled)
}
