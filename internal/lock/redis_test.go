package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	l := NewRedisLocker(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { l.Close() })
	return l, mr
}

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	l, mr := newTestRedisLocker(t)
	ctx := context.Background()

	ok, err := l.TryAcquire(ctx, "run", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("run"))

	ok, err = l.TryAcquire(ctx, "run", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, "run", "a"))
	assert.False(t, mr.Exists("run"))

	ok, err = l.TryAcquire(ctx, "run", "b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_OnlyOwnerReleases(t *testing.T) {
	l, mr := newTestRedisLocker(t)
	ctx := context.Background()

	ok, err := l.TryAcquire(ctx, "run", "a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Release(ctx, "run", "b"))
	got, err := mr.Get("run")
	require.NoError(t, err)
	assert.Equal(t, "a", got)

	ok, _ = l.TryAcquire(ctx, "run", "b", time.Minute)
	assert.False(t, ok)
}

func TestRedisLocker_ExpiredHolderCannotDropNewLock(t *testing.T) {
	l, mr := newTestRedisLocker(t)
	ctx := context.Background()

	ok, err := l.TryAcquire(ctx, "run", "a", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = l.TryAcquire(ctx, "run", "b", time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "lock must be free once the TTL lapses")

	// stale owner releasing late leaves b's lock alone
	require.NoError(t, l.Release(ctx, "run", "a"))
	got, err := mr.Get("run")
	require.NoError(t, err)
	assert.Equal(t, "b", got)
}

func TestRedisLocker_ErrorsWhenUnreachable(t *testing.T) {
	l, mr := newTestRedisLocker(t)
	ctx := context.Background()
	require.NoError(t, l.Ping(ctx))

	mr.Close()

	assert.Error(t, l.Ping(ctx))
	_, err := l.TryAcquire(ctx, "run", "a", time.Minute)
	assert.ErrorContains(t, err, "acquire lock run")
	assert.ErrorContains(t, l.Release(ctx, "run", "a"), "release lock run")
}
