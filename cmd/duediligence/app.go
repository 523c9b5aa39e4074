package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/s-nishad/DueDiligence/internal/adapters/driven/backend/rest"
	"github.com/s-nishad/DueDiligence/internal/adapters/driven/config/file"
	"github.com/s-nishad/DueDiligence/internal/adapters/driven/events/rabbitmq"
	"github.com/s-nishad/DueDiligence/internal/adapters/driven/storage/memory"
	"github.com/s-nishad/DueDiligence/internal/adapters/driven/storage/redis"
	"github.com/s-nishad/DueDiligence/internal/adapters/driven/storage/sqlite"
	"github.com/s-nishad/DueDiligence/internal/adapters/driving/cli"
	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
	"github.com/s-nishad/DueDiligence/internal/core/services"
	"github.com/s-nishad/DueDiligence/internal/logger"
)

// application owns the wired services and the resources behind them.
type application struct {
	services  cli.Services
	persister *services.SnapshotPersister
	archive   driven.SnapshotArchive
	publisher driven.JobEventPublisher
}

// bootstrap wires adapters into services. Only an unreadable config file
// is fatal: a bad backend, archive or broker setting leaves the affected
// commands unconfigured so `settings set` can still repair it.
func bootstrap(ctx context.Context) (*application, error) {
	log := logger.For("bootstrap")

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	app := &application{}
	app.services.Settings = settingsService

	settings, err := settingsService.Get()
	if err != nil {
		log.Warn("invalid settings, using defaults", "path", configStore.Path(), "error", err)
		defaults := settingsService.GetDefaults()
		settings = &defaults
	}

	store := memory.NewStore()
	app.services.Store = store

	app.archive = openArchive(ctx, settings.Archive)
	if app.archive != nil {
		app.persister = services.NewSnapshotPersister(store, app.archive)
		app.persister.SetRetention(settings.Archive.TTL)
		if err := app.persister.Restore(ctx); err != nil {
			log.Warn("snapshot restore failed", "error", err)
		}
		app.persister.Start(ctx)
	}

	if settings.Events.Enabled() {
		publisher, err := rabbitmq.Dial(ctx, settings.Events.AMQPURL, settings.Events.Queue)
		if err != nil {
			log.Warn("job events disabled", "error", err)
		} else {
			app.publisher = publisher
		}
	}

	backend, err := rest.NewFromSettings(settings.Backend)
	if err != nil {
		log.Warn("backend not configured", "error", err)
		return app, nil
	}

	app.services.Health = backend.Health

	projects := services.NewProjectService(backend, store)
	review := services.NewReviewController(backend, store)
	app.services.Projects = projects
	app.services.Documents = services.NewDocumentService(backend, store)
	app.services.Review = review
	app.services.Answers = services.NewAnswerService(backend, store, review)
	app.services.Evaluation = services.NewEvaluationService(backend, review)
	app.services.Questionnaires = services.NewQuestionnaireService(backend, store)
	app.services.Tracker = services.NewJobTracker(backend, store, projects, settings.Tracker, app.publisher)
	return app, nil
}

// openArchive returns the configured snapshot archive, or nil when
// snapshots stay in memory.
func openArchive(ctx context.Context, cfg domain.ArchiveSettings) driven.SnapshotArchive {
	log := logger.For("bootstrap")

	switch cfg.Kind {
	case domain.ArchiveSQLite:
		s, err := sqlite.NewStore(cfg.Path)
		if err != nil {
			log.Warn("sqlite archive unavailable", "error", err)
			return nil
		}
		return s
	case domain.ArchiveRedis:
		a, err := redis.New(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTL,
		})
		if err != nil {
			log.Warn("redis archive unavailable", "error", err)
			return nil
		}
		return a
	default:
		return nil
	}
}

// Close flushes pending snapshots and releases connections.
func (a *application) Close() {
	var errs []error
	if a.persister != nil {
		a.persister.Stop()
	}
	if a.archive != nil {
		errs = append(errs, a.archive.Close())
	}
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warn("shutdown", "error", err)
	}
}
