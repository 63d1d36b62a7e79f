package caching

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCachingService(t *testing.T) {
	s := miniredis.RunT(t)

	rdb := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	svc := NewRedisCachingService(rdb, "wetransfer:")
	ctx := context.Background()

	val, err := svc.Get(ctx, "token")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, svc.Set(ctx, "token", "jwt", time.Minute))
	assert.True(t, s.Exists("wetransfer:token"))

	val, err = svc.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "jwt", val)

	s.FastForward(2 * time.Minute)
	val, err = svc.Get(ctx, "token")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, svc.Set(ctx, "token", "jwt", 0))
	require.NoError(t, svc.Delete(ctx, "token"))
	assert.False(t, s.Exists("wetransfer:token"))

	require.NoError(t, svc.Shutdown(ctx))
}

func TestNullCachingService(t *testing.T) {
	svc := NewNullCachingService()
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "k", "v", time.Minute))
	val, err := svc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, val)
	assert.NoError(t, svc.Delete(ctx, "k"))
}
