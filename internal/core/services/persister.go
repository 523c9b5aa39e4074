package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
	"github.com/s-nishad/DueDiligence/internal/logger"
)

// persistQueueSize bounds the number of pending snapshot writes.
const persistQueueSize = 256

// DefaultRequestRetention is how long finished request snapshots are kept
// in archives that do not expire them on their own.
const DefaultRequestRetention = 7 * 24 * time.Hour

// SnapshotPersister mirrors cached project and request snapshots into a
// SnapshotArchive so a later run can start warm.
//
// Store listeners run synchronously inside the writer's call, so the
// persister only queues the changed ID there; a background goroutine
// reads the latest snapshot and writes it to the archive.
type SnapshotPersister struct {
	store     driven.SnapshotStore
	archive   driven.SnapshotArchive
	log       *slog.Logger
	retention time.Duration
	now       func() time.Time

	queue       chan driven.StoreEvent
	unsubscribe func()
	wg          sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewSnapshotPersister creates a persister. Call Start to begin mirroring.
func NewSnapshotPersister(store driven.SnapshotStore, archive driven.SnapshotArchive) *SnapshotPersister {
	return &SnapshotPersister{
		store:     store,
		archive:   archive,
		log:       logger.For("persister"),
		retention: DefaultRequestRetention,
		now:       time.Now,
		queue:     make(chan driven.StoreEvent, persistQueueSize),
	}
}

// SetRetention changes how long finished requests are kept. Zero keeps
// them forever.
func (p *SnapshotPersister) SetRetention(d time.Duration) {
	p.retention = d
}

// Restore loads archived snapshots into the store. Finished requests older
// than the retention are pruned first when the archive supports it.
// Terminal requests are restored as-is; the tracker never resumes them.
func (p *SnapshotPersister) Restore(ctx context.Context) error {
	if pruner, ok := p.archive.(driven.RequestPruner); ok && p.retention > 0 {
		n, err := pruner.PruneRequests(ctx, p.now().Add(-p.retention))
		if err != nil {
			p.log.Warn("cannot prune archived requests", "error", err)
		} else if n > 0 {
			p.log.Debug("archived requests pruned", "count", n)
		}
	}

	projects, err := p.archive.LoadProjects(ctx)
	if err != nil {
		return fmt.Errorf("restore projects: %w", err)
	}
	for i := range projects {
		p.store.PutProject(projects[i])
	}

	requests, err := p.archive.LoadRequests(ctx)
	if err != nil {
		return fmt.Errorf("restore requests: %w", err)
	}
	for i := range requests {
		p.store.PutRequest(requests[i])
	}
	p.log.Debug("snapshots restored", "projects", len(projects), "requests", len(requests))
	return nil
}

// Start subscribes to the store and writes changed snapshots until Stop
// is called.
func (p *SnapshotPersister) Start(ctx context.Context) {
	p.unsubscribe = p.store.Subscribe(func(ev driven.StoreEvent) {
		if ev.Kind != driven.StoreEventProject && ev.Kind != driven.StoreEventRequest {
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.stopped {
			return
		}
		select {
		case p.queue <- ev:
		default:
			p.log.Warn("snapshot queue full, dropping write", "kind", ev.Kind, "id", ev.ID)
		}
	})

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for ev := range p.queue {
			if err := p.persist(ctx, ev); err != nil {
				p.log.Warn("cannot archive snapshot", "kind", ev.Kind, "id", ev.ID, "error", err)
			}
		}
	}()
}

// Stop unsubscribes from the store and flushes pending writes.
func (p *SnapshotPersister) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	p.wg.Wait()
}

func (p *SnapshotPersister) persist(ctx context.Context, ev driven.StoreEvent) error {
	ctx = context.WithoutCancel(ctx)
	switch ev.Kind {
	case driven.StoreEventProject:
		info, ok := p.store.Project(ev.ID)
		if !ok {
			return nil
		}
		return p.archive.SaveProject(ctx, info)
	case driven.StoreEventRequest:
		req, ok := p.store.Request(ev.ID)
		if !ok {
			return nil
		}
		return p.archive.SaveRequest(ctx, req)
	}
	return nil
}
