package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/s-nishad/DueDiligence/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var (
	_ driven.SnapshotArchive = (*Store)(nil)
	_ driven.RequestPruner   = (*Store)(nil)
)

// dbFile is the database file name inside the data directory.
const dbFile = "snapshots.db"

// Store is a SQLite-backed snapshot archive.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.duediligence/data/snapshots.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".duediligence", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_snapshots.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Projects ====================

// SaveProject stores a project snapshot, replacing any earlier one.
func (s *Store) SaveProject(ctx context.Context, info domain.ProjectInfo) error {
	if info.ID == "" {
		return domain.Invalid("project snapshot without id")
	}
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshalling project %s: %w", info.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO project_snapshots (id, name, status, payload, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			payload = excluded.payload,
			saved_at = excluded.saved_at
	`, info.ID, info.Name, string(info.Status), string(payload), s.now().UTC())
	if err != nil {
		return fmt.Errorf("saving project %s: %w", info.ID, err)
	}
	return nil
}

// LoadProjects returns every stored project snapshot ordered by ID.
func (s *Store) LoadProjects(ctx context.Context) ([]domain.ProjectInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, payload FROM project_snapshots ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var out []domain.ProjectInfo
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		var info domain.ProjectInfo
		if err := json.Unmarshal([]byte(payload), &info); err != nil {
			return nil, fmt.Errorf("unmarshalling project %s: %w", id, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// ==================== Requests ====================

// SaveRequest stores a request snapshot, replacing any earlier one.
func (s *Store) SaveRequest(ctx context.Context, req domain.Request) error {
	if req.ID == "" {
		return domain.Invalid("request snapshot without id")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshalling request %s: %w", req.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO request_snapshots (id, project_id, kind, status, payload, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			kind = excluded.kind,
			status = excluded.status,
			payload = excluded.payload,
			saved_at = excluded.saved_at
	`, req.ID, req.ProjectID, string(req.Kind), string(req.Status), string(payload), s.now().UTC())
	if err != nil {
		return fmt.Errorf("saving request %s: %w", req.ID, err)
	}
	return nil
}

// LoadRequests returns every stored request snapshot ordered by ID.
func (s *Store) LoadRequests(ctx context.Context) ([]domain.Request, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, payload FROM request_snapshots ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying requests: %w", err)
	}
	defer rows.Close()

	var out []domain.Request
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		var req domain.Request
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return nil, fmt.Errorf("unmarshalling request %s: %w", id, err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// PruneRequests deletes finished request snapshots saved before cutoff
// and returns how many were removed. Running jobs are kept.
func (s *Store) PruneRequests(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM request_snapshots
		WHERE saved_at < ? AND status IN (?, ?)
	`, cutoff.UTC(), string(domain.RequestStatusCompleted), string(domain.RequestStatusFailed))
	if err != nil {
		return 0, fmt.Errorf("pruning requests: %w", err)
	}
	return res.RowsAffected()
}
