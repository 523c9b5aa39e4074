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
)

var _ driven.SnapshotArchive = (*mockArchive)(nil)

type mockArchive struct {
	mu       sync.Mutex
	projects map[string]domain.ProjectInfo
	requests map[string]domain.Request
}

func newMockArchive() *mockArchive {
	return &mockArchive{
		projects: make(map[string]domain.ProjectInfo),
		requests: make(map[string]domain.Request),
	}
}

func (a *mockArchive) SaveProject(_ context.Context, info domain.ProjectInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.projects[info.ID] = info
	return nil
}

func (a *mockArchive) LoadProjects(context.Context) ([]domain.ProjectInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.ProjectInfo, 0, len(a.projects))
	for _, p := range a.projects {
		out = append(out, p)
	}
	return out, nil
}

func (a *mockArchive) SaveRequest(_ context.Context, req domain.Request) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests[req.ID] = req
	return nil
}

func (a *mockArchive) LoadRequests(context.Context) ([]domain.Request, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Request, 0, len(a.requests))
	for _, r := range a.requests {
		out = append(out, r)
	}
	return out, nil
}

func (a *mockArchive) Close() error { return nil }

func (a *mockArchive) request(id string) (domain.Request, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.requests[id]
	return r, ok
}

func TestSnapshotPersister_WritesBehind(t *testing.T) {
	store := memory.NewStore()
	archive := newMockArchive()
	p := NewSnapshotPersister(store, archive)
	p.Start(context.Background())

	store.PutProject(*sampleProject(domain.ProjectStatusCreated))
	store.PutRequest(domain.Request{ID: "r-1", Status: domain.RequestStatusQueued, CreatedAt: time.Now().UTC()})
	store.PutRequest(domain.Request{ID: "r-1", Status: domain.RequestStatusRunning, Progress: ptr(0.4)})
	store.SetCurrentProject("p-1")
	p.Stop()

	projects, err := archive.LoadProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "p-1", projects[0].ID)

	req, ok := archive.request("r-1")
	require.True(t, ok)
	assert.Equal(t, domain.RequestStatusRunning, req.Status)
}

func TestSnapshotPersister_StopIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	p := NewSnapshotPersister(store, newMockArchive())
	p.Start(context.Background())

	p.Stop()
	p.Stop()

	assert.NotPanics(t, func() { store.PutProject(*sampleProject(domain.ProjectStatusCreated)) })
}

func TestSnapshotPersister_Restore(t *testing.T) {
	archive := newMockArchive()
	require.NoError(t, archive.SaveProject(context.Background(), *sampleProject(domain.ProjectStatusReady)))
	require.NoError(t, archive.SaveRequest(context.Background(), domain.Request{ID: "r-1", Status: domain.RequestStatusCompleted}))
	store := memory.NewStore()

	require.NoError(t, NewSnapshotPersister(store, archive).Restore(context.Background()))

	info, ok := store.Project("p-1")
	require.True(t, ok)
	assert.Equal(t, domain.ProjectStatusReady, info.Status)
	req, ok := store.Request("r-1")
	require.True(t, ok)
	assert.Equal(t, domain.RequestStatusCompleted, req.Status)
}

// pruningArchive records prune calls.
type pruningArchive struct {
	*mockArchive
	cutoffs []time.Time
}

func (a *pruningArchive) PruneRequests(_ context.Context, cutoff time.Time) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cutoffs = append(a.cutoffs, cutoff)
	var n int64
	for id, r := range a.requests {
		if r.Status.IsTerminal() && r.CompletedAt != nil && r.CompletedAt.Before(cutoff) {
			delete(a.requests, id)
			n++
		}
	}
	return n, nil
}

func TestSnapshotPersister_RestorePrunesOldRequests(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-30 * 24 * time.Hour)
	recent := now.Add(-time.Hour)
	archive := &pruningArchive{mockArchive: newMockArchive()}
	ctx := context.Background()
	require.NoError(t, archive.SaveRequest(ctx, domain.Request{ID: "r-old", Status: domain.RequestStatusCompleted, CompletedAt: &old}))
	require.NoError(t, archive.SaveRequest(ctx, domain.Request{ID: "r-new", Status: domain.RequestStatusCompleted, CompletedAt: &recent}))
	store := memory.NewStore()
	p := NewSnapshotPersister(store, archive)
	p.now = func() time.Time { return now }

	require.NoError(t, p.Restore(ctx))

	require.Len(t, archive.cutoffs, 1)
	assert.Equal(t, now.Add(-DefaultRequestRetention), archive.cutoffs[0])
	_, ok := store.Request("r-old")
	assert.False(t, ok)
	_, ok = store.Request("r-new")
	assert.True(t, ok)
}

func TestSnapshotPersister_ZeroRetentionSkipsPruning(t *testing.T) {
	archive := &pruningArchive{mockArchive: newMockArchive()}
	p := NewSnapshotPersister(memory.NewStore(), archive)
	p.SetRetention(0)

	require.NoError(t, p.Restore(context.Background()))

	assert.Empty(t, archive.cutoffs)
}
