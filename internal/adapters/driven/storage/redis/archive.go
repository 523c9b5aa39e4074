package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
)

// Ensure Archive implements the interface.
var _ driven.SnapshotArchive = (*Archive)(nil)

// DefaultPrefix namespaces every key written by the archive.
const DefaultPrefix = "dd:"

// scanCount is the SCAN page size hint.
const scanCount = 100

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int

	// TTL expires snapshots. Zero keeps them forever.
	TTL time.Duration

	// Prefix namespaces keys. Empty uses DefaultPrefix.
	Prefix string
}

// Archive stores snapshots in Redis.
type Archive struct {
	client *redisv9.Client
	ttl    time.Duration
	prefix string
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Archive, error) {
	if cfg.Addr == "" {
		return nil, domain.Invalid("redis address is required")
	}
	client := redisv9.NewClient(&redisv9.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}

	return NewWithClient(client, cfg.TTL, cfg.Prefix), nil
}

// NewWithClient wraps an existing client. The archive owns the client and
// closes it on Close.
func NewWithClient(client *redisv9.Client, ttl time.Duration, prefix string) *Archive {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Archive{client: client, ttl: ttl, prefix: prefix}
}

// SaveProject stores a project snapshot.
func (a *Archive) SaveProject(ctx context.Context, info domain.ProjectInfo) error {
	if info.ID == "" {
		return domain.Invalid("project snapshot without id")
	}
	return a.set(ctx, a.projectKey(info.ID), info)
}

// LoadProjects returns every stored project snapshot.
func (a *Archive) LoadProjects(ctx context.Context) ([]domain.ProjectInfo, error) {
	var out []domain.ProjectInfo
	err := a.scan(ctx, a.prefix+"project:*", func(key string, raw []byte) error {
		var info domain.ProjectInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			return fmt.Errorf("unmarshal %s failed: %w", key, err)
		}
		out = append(out, info)
		return nil
	})
	return out, err
}

// SaveRequest stores a request snapshot.
func (a *Archive) SaveRequest(ctx context.Context, req domain.Request) error {
	if req.ID == "" {
		return domain.Invalid("request snapshot without id")
	}
	return a.set(ctx, a.requestKey(req.ID), req)
}

// LoadRequests returns every stored request snapshot.
func (a *Archive) LoadRequests(ctx context.Context) ([]domain.Request, error) {
	var out []domain.Request
	err := a.scan(ctx, a.prefix+"request:*", func(key string, raw []byte) error {
		var req domain.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			return fmt.Errorf("unmarshal %s failed: %w", key, err)
		}
		out = append(out, req)
		return nil
	})
	return out, err
}

// Close closes the Redis client.
func (a *Archive) Close() error {
	return a.client.Close()
}

func (a *Archive) set(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	if err := a.client.Set(ctx, key, payload, a.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s failed: %w", key, err)
	}
	return nil
}

// scan visits every key matching pattern. Keys that expire between SCAN
// and GET are skipped.
func (a *Archive) scan(ctx context.Context, pattern string, fn func(key string, raw []byte) error) error {
	iter := a.client.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := a.client.Get(ctx, key).Bytes()
		if errors.Is(err, redisv9.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis get %s failed: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s failed: %w", pattern, err)
	}
	return nil
}

func (a *Archive) projectKey(id string) string {
	return a.prefix + "project:" + id
}

func (a *Archive) requestKey(id string) string {
	return a.prefix + "request:" + id
}
