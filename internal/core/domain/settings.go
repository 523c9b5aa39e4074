package domain

import (
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// ArchiveKind selects where cache snapshots are persisted between runs.
type ArchiveKind string

// Available archive kinds.
const (
	// ArchiveNone keeps snapshots in memory only.
	ArchiveNone ArchiveKind = "none"

	// ArchiveSQLite writes snapshots to a local database file.
	ArchiveSQLite ArchiveKind = "sqlite"

	// ArchiveRedis writes snapshots to a shared Redis instance.
	ArchiveRedis ArchiveKind = "redis"
)

// IsValid returns true if the archive kind is recognised.
func (k ArchiveKind) IsValid() bool {
	switch k {
	case ArchiveNone, ArchiveSQLite, ArchiveRedis:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k ArchiveKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the archive kind.
func (k ArchiveKind) Description() string {
	switch k {
	case ArchiveNone:
		return "In-memory only"
	case ArchiveSQLite:
		return "Local SQLite file"
	case ArchiveRedis:
		return "Shared Redis"
	default:
		return unknownDescription
	}
}

// BackendSettings configures the resource client.
type BackendSettings struct {
	// BaseURL is the API root, e.g. http://localhost:8000/api.
	BaseURL string `validate:"required,url"`

	// Timeout bounds a single HTTP call.
	Timeout time.Duration `validate:"gt=0"`

	// RequestsPerSecond paces outgoing calls. Zero disables pacing.
	RequestsPerSecond float64 `validate:"gte=0"`

	// ReadAttempts is the maximum number of tries for a read.
	ReadAttempts int `validate:"gte=1"`
}

// TrackerSettings configures job polling.
type TrackerSettings struct {
	// PollInterval is the delay between polls while a job is healthy.
	PollInterval time.Duration `validate:"gt=0"`

	// MaxInterval caps the backoff after transient failures.
	MaxInterval time.Duration `validate:"gtefield=PollInterval"`

	// BackoffMultiplier grows the interval after each consecutive failure.
	BackoffMultiplier float64 `validate:"gte=1"`

	// MaxConsecutiveFailures stops tracking after this many transient
	// failures in a row.
	MaxConsecutiveFailures int `validate:"gte=1"`
}

// ArchiveSettings configures the snapshot archive.
type ArchiveSettings struct {
	Kind ArchiveKind

	// Path is the SQLite data directory. Empty uses the default.
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int           `validate:"gte=0"`

	// TTL is how long archived snapshots are kept. Zero keeps them.
	TTL time.Duration `validate:"gte=0"`
}

// EventSettings configures job event publishing.
type EventSettings struct {
	// AMQPURL enables publishing when set.
	AMQPURL string

	// Queue is the durable queue name.
	Queue string
}

// Enabled reports whether job events should be published.
func (e EventSettings) Enabled() bool {
	return strings.TrimSpace(e.AMQPURL) != ""
}

// Settings holds all client configuration.
type Settings struct {
	Backend BackendSettings
	Tracker TrackerSettings
	Archive ArchiveSettings
	Events  EventSettings
}

// Default values.
const (
	DefaultBaseURL                = "http://localhost:8000/api"
	DefaultTimeout                = 30 * time.Second
	DefaultReadAttempts           = 3
	DefaultPollInterval           = 2 * time.Second
	DefaultMaxInterval            = 30 * time.Second
	DefaultBackoffMultiplier      = 2.0
	DefaultMaxConsecutiveFailures = 5
	DefaultEventQueue             = "duediligence.jobs"
	DefaultSnapshotTTL            = 24 * time.Hour
)

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() Settings {
	return Settings{
		Backend: BackendSettings{
			BaseURL:      DefaultBaseURL,
			Timeout:      DefaultTimeout,
			ReadAttempts: DefaultReadAttempts,
		},
		Tracker: TrackerSettings{
			PollInterval:           DefaultPollInterval,
			MaxInterval:            DefaultMaxInterval,
			BackoffMultiplier:      DefaultBackoffMultiplier,
			MaxConsecutiveFailures: DefaultMaxConsecutiveFailures,
		},
		Archive: ArchiveSettings{
			Kind: ArchiveSQLite,
			TTL:  DefaultSnapshotTTL,
		},
		Events: EventSettings{
			Queue: DefaultEventQueue,
		},
	}
}

// Validate checks the settings are usable.
func (s *Settings) Validate() error {
	if err := validateStruct("settings", s); err != nil {
		return err
	}
	if !s.Archive.Kind.IsValid() {
		return Invalid("settings: unknown archive kind %q", s.Archive.Kind)
	}
	if s.Archive.Kind == ArchiveRedis && s.Archive.RedisAddr == "" {
		return Invalid("settings: archive.redis_addr is required for the redis archive")
	}
	if s.Events.Enabled() && s.Events.Queue == "" {
		return Invalid("settings: events.queue is required when events.amqp_url is set")
	}
	return nil
}
