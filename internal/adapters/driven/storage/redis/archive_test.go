package redis

import (
	"context"
	"testing"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

func TestNewWithClient_Defaults(t *testing.T) {
	client := redisv9.NewClient(&redisv9.Options{Addr: "localhost:0"})
	a := NewWithClient(client, -time.Second, "")
	defer a.Close()

	assert.Equal(t, DefaultPrefix, a.prefix)
	assert.Zero(t, a.ttl)
	assert.Equal(t, "dd:project:p-1", a.projectKey("p-1"))
	assert.Equal(t, "dd:request:r-1", a.requestKey("r-1"))
}

func TestNew_RequiresAddress(t *testing.T) {
	_, err := New(context.Background(), Config{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestArchive_RejectsSnapshotsWithoutID(t *testing.T) {
	client := redisv9.NewClient(&redisv9.Options{Addr: "localhost:0"})
	a := NewWithClient(client, 0, "test:")
	defer a.Close()

	require.ErrorIs(t, a.SaveProject(context.Background(), domain.ProjectInfo{}), domain.ErrInvalidInput)
	require.ErrorIs(t, a.SaveRequest(context.Background(), domain.Request{}), domain.ErrInvalidInput)
}
