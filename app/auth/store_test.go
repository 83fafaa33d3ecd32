package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)

	ok, err := s.Touch(ctx, "sid1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Create(ctx, "sid1", time.Minute))
	ok, err = s.Touch(ctx, "sid1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Create(ctx, "sid2", 50*time.Millisecond))
	time.Sleep(100 * time.Millisecond)
	ok, err = s.Touch(ctx, "sid2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "expired")

	require.NoError(t, s.Delete(ctx, "sid1"))
	ok, err = s.Touch(ctx, "sid1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "deleted")
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	s := NewRedisStore(client, "sws:")

	ok, err := s.Touch(ctx, "sid1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Create(ctx, "sid1", time.Minute))
	assert.True(t, mr.Exists("sws:sid1"))
	assert.Equal(t, time.Minute, mr.TTL("sws:sid1"))

	mr.FastForward(30 * time.Second)
	ok, err = s.Touch(ctx, "sid1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("sws:sid1"), "ttl extended")

	mr.FastForward(2 * time.Minute)
	ok, err = s.Touch(ctx, "sid1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "expired")

	require.NoError(t, s.Create(ctx, "sid2", time.Minute))
	require.NoError(t, s.Delete(ctx, "sid2"))
	assert.False(t, mr.Exists("sws:sid2"))

	mr.Close()
	_, err = s.Touch(ctx, "sid1", time.Minute)
	require.Error(t, err)
}
