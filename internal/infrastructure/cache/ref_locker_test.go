package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/stocksync/internal/domain/integration"
	"github.com/erp/stocksync/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func TestInMemoryRefLocker(t *testing.T) {
	ctx := context.Background()
	l := NewInMemoryRefLocker()

	release, err := l.TryLock(ctx, "1042", time.Minute)
	require.NoError(t, err)

	_, err = l.TryLock(ctx, "1042", time.Minute)
	assert.ErrorIs(t, err, integration.ErrLockHeld)

	other, err := l.TryLock(ctx, "1043", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	again, err := l.TryLock(ctx, "1042", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestInMemoryRefLocker_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := NewInMemoryRefLocker()
	l.clock = func() time.Time { return now }

	stale, err := l.TryLock(ctx, "1042", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := l.TryLock(ctx, "1042", time.Minute)
	require.NoError(t, err)

	// Releasing the expired lease must not free the new holder.
	require.NoError(t, stale(ctx))
	_, err = l.TryLock(ctx, "1042", time.Minute)
	assert.ErrorIs(t, err, integration.ErrLockHeld)
	require.NoError(t, fresh(ctx))
}

func TestInMemoryRefLocker_Concurrent(t *testing.T) {
	ctx := context.Background()
	l := NewInMemoryRefLocker()

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.TryLock(ctx, "same", time.Minute); err == nil {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), winners.Load())
}

func TestNewRefLocker_Fallback(t *testing.T) {
	ctx := context.Background()

	l, closeFn := NewRefLocker(ctx, config.RedisConfig{Enabled: false}, zap.NewNop())
	assert.IsType(t, &InMemoryRefLocker{}, l)
	assert.NoError(t, closeFn())

	// Nothing listens on port 1.
	l, closeFn = NewRefLocker(ctx, config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, zap.NewNop())
	assert.IsType(t, &InMemoryRefLocker{}, l)
	assert.NoError(t, closeFn())
}

func TestRedisRefLocker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	first := NewRedisRefLocker(client)
	second := NewRedisRefLocker(client)

	release, err := first.TryLock(ctx, "1042", 5*time.Second)
	require.NoError(t, err)

	_, err = second.TryLock(ctx, "1042", 5*time.Second)
	assert.ErrorIs(t, err, integration.ErrLockHeld)

	require.NoError(t, release(ctx))
	// A second release after the key is gone is harmless.
	require.NoError(t, release(ctx))

	again, err := second.TryLock(ctx, "1042", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}
