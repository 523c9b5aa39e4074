package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyBackendBaseURL     = "backend.base_url"
	keyBackendTimeout     = "backend.timeout"
	keyBackendRate        = "backend.requests_per_second"
	keyBackendAttempts    = "backend.read_attempts"
	keyTrackerInterval    = "tracker.poll_interval"
	keyTrackerMaxInterval = "tracker.max_interval"
	keyTrackerMultiplier  = "tracker.backoff_multiplier"
	keyTrackerMaxFailures = "tracker.max_consecutive_failures"
	keyArchiveKind        = "archive.kind"
	keyArchivePath        = "archive.path"
	keyArchiveRedisAddr   = "archive.redis_addr"
	keyArchiveRedisPass   = "archive.redis_password"
	keyArchiveRedisDB     = "archive.redis_db"
	keyArchiveTTL         = "archive.ttl"
	keyEventsAMQPURL      = "events.amqp_url"
	keyEventsQueue        = "events.queue"
)

// setting binds one config key to its field in domain.Settings.
type setting struct {
	// parse converts CLI text into the stored value.
	parse func(string) (any, error)
	// apply writes a stored value into settings.
	apply func(*domain.Settings, any)
	// read extracts the stored value from settings.
	read func(*domain.Settings) any
	// secret values are only written when non-empty.
	secret bool
}

func stringSetting(field func(*domain.Settings) *string) setting {
	return setting{
		parse: func(v string) (any, error) { return strings.TrimSpace(v), nil },
		apply: func(s *domain.Settings, v any) { *field(s) = v.(string) },
		read:  func(s *domain.Settings) any { return *field(s) },
	}
}

func intSetting(field func(*domain.Settings) *int) setting {
	return setting{
		parse: func(v string) (any, error) { return strconv.Atoi(strings.TrimSpace(v)) },
		apply: func(s *domain.Settings, v any) { *field(s) = v.(int) },
		read:  func(s *domain.Settings) any { return *field(s) },
	}
}

func floatSetting(field func(*domain.Settings) *float64) setting {
	return setting{
		parse: func(v string) (any, error) { return strconv.ParseFloat(strings.TrimSpace(v), 64) },
		apply: func(s *domain.Settings, v any) { *field(s) = v.(float64) },
		read:  func(s *domain.Settings) any { return *field(s) },
	}
}

// Durations are stored as Go duration strings so the TOML file stays
// readable ("2s", "1m30s").
func durationSetting(field func(*domain.Settings) *time.Duration) setting {
	return setting{
		parse: func(v string) (any, error) {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				return nil, err
			}
			return d.String(), nil
		},
		apply: func(s *domain.Settings, v any) {
			if d, err := time.ParseDuration(v.(string)); err == nil {
				*field(s) = d
			}
		},
		read: func(s *domain.Settings) any { return field(s).String() },
	}
}

var settingsTable = map[string]setting{
	keyBackendBaseURL:  stringSetting(func(s *domain.Settings) *string { return &s.Backend.BaseURL }),
	keyBackendTimeout:  durationSetting(func(s *domain.Settings) *time.Duration { return &s.Backend.Timeout }),
	keyBackendRate:     floatSetting(func(s *domain.Settings) *float64 { return &s.Backend.RequestsPerSecond }),
	keyBackendAttempts: intSetting(func(s *domain.Settings) *int { return &s.Backend.ReadAttempts }),

	keyTrackerInterval:    durationSetting(func(s *domain.Settings) *time.Duration { return &s.Tracker.PollInterval }),
	keyTrackerMaxInterval: durationSetting(func(s *domain.Settings) *time.Duration { return &s.Tracker.MaxInterval }),
	keyTrackerMultiplier:  floatSetting(func(s *domain.Settings) *float64 { return &s.Tracker.BackoffMultiplier }),
	keyTrackerMaxFailures: intSetting(func(s *domain.Settings) *int { return &s.Tracker.MaxConsecutiveFailures }),

	keyArchiveKind: {
		parse: func(v string) (any, error) {
			kind := domain.ArchiveKind(strings.ToLower(strings.TrimSpace(v)))
			if !kind.IsValid() {
				return nil, fmt.Errorf("unknown archive kind %q", v)
			}
			return kind.String(), nil
		},
		apply: func(s *domain.Settings, v any) { s.Archive.Kind = domain.ArchiveKind(v.(string)) },
		read:  func(s *domain.Settings) any { return s.Archive.Kind.String() },
	},
	keyArchivePath:      stringSetting(func(s *domain.Settings) *string { return &s.Archive.Path }),
	keyArchiveRedisAddr: stringSetting(func(s *domain.Settings) *string { return &s.Archive.RedisAddr }),
	keyArchiveRedisPass: func() setting {
		st := stringSetting(func(s *domain.Settings) *string { return &s.Archive.RedisPassword })
		st.secret = true
		return st
	}(),
	keyArchiveRedisDB: intSetting(func(s *domain.Settings) *int { return &s.Archive.RedisDB }),
	keyArchiveTTL:     durationSetting(func(s *domain.Settings) *time.Duration { return &s.Archive.TTL }),

	keyEventsAMQPURL: func() setting {
		st := stringSetting(func(s *domain.Settings) *string { return &s.Events.AMQPURL })
		st.secret = true
		return st
	}(),
	keyEventsQueue: stringSetting(func(s *domain.Settings) *string { return &s.Events.Queue }),
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Unset or unreadable keys take their
// default values.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()
	for key, st := range settingsTable {
		raw, ok := s.configStore.Get(key)
		if !ok {
			continue
		}
		v, err := st.parse(fmt.Sprint(raw))
		if err != nil {
			continue
		}
		st.apply(&settings, v)
	}
	return &settings, nil
}

// Save validates and persists settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	for _, key := range s.Keys() {
		st := settingsTable[key]
		v := st.read(settings)
		if st.secret && v == "" {
			continue
		}
		if err := s.configStore.Set(key, v); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// Set parses and stores a single key. The resulting settings must still
// be valid.
func (s *SettingsService) Set(key, value string) error {
	st, ok := settingsTable[key]
	if !ok {
		return domain.Invalid("unknown setting %q (known: %s)", key, strings.Join(s.Keys(), ", "))
	}
	v, err := st.parse(value)
	if err != nil {
		return domain.Invalid("setting %s: %v", key, err)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	st.apply(settings, v)
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.configStore.Set(key, v); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the settable keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingsTable))
	for key := range settingsTable {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}
