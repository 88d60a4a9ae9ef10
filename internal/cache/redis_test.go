package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRedisOptionsFromFields(t *testing.T) {
	opts, err := redisOptions(RedisConfig{Address: "cache.internal:6380", Password: "secret", DB: 2, TLS: true})
	require.NoError(t, err)
	require.Equal(t, "cache.internal:6380", opts.Addr)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, defaultRedisTimeout, opts.DialTimeout)
	require.NotNil(t, opts.TLSConfig)
	require.Equal(t, "cache.internal", opts.TLSConfig.ServerName)
}

func TestRedisOptionsFromURL(t *testing.T) {
	opts, err := redisOptions(RedisConfig{URL: "redis://:pw@localhost:6379/3", Address: "ignored:1", Timeout: time.Second})
	require.NoError(t, err)
	require.Equal(t, "localhost:6379", opts.Addr)
	require.Equal(t, 3, opts.DB)
	require.Equal(t, "pw", opts.Password)
	require.Equal(t, time.Second, opts.ReadTimeout)
}

func TestRedisOptionsRequiresAddress(t *testing.T) {
	_, err := redisOptions(RedisConfig{})
	require.Error(t, err)

	_, err = redisOptions(RedisConfig{URL: "http://nope"})
	require.Error(t, err)
}

func TestNilRedisStore(t *testing.T) {
	var store *RedisStore
	_, _, err := store.IncrementWithTTL(context.Background(), "k", time.Second)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.NoError(t, store.Close())
}

// TestRedisStoreRoundTrip runs against a live server when DIRECTORY_TEST_REDIS_URL is set.
func TestRedisStoreRoundTrip(t *testing.T) {
	url := os.Getenv("DIRECTORY_TEST_REDIS_URL")
	if url == "" {
		t.Skip("DIRECTORY_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, RedisConfig{URL: url, KeyPrefix: "directory-test:" + uuid.NewString() + ":"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), value)

	count, ttl, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, "k", "counter"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}
