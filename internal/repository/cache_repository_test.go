package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safe-return-server/config"
	"safe-return-server/internal/model"
	"safe-return-server/internal/repository"
)

func newTestCache(t *testing.T, ttl time.Duration) (*repository.CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repository.NewCacheRepository(&config.RedisClient{Client: client}, ttl), server
}

func TestCacheRepository_SetGetDelete(t *testing.T) {
	cache, server := newTestCache(t, 5*time.Minute)
	ctx := context.Background()

	key := "profiles/1/a"
	member := &model.Member{
		ID:              1,
		ExternalID:      "u1",
		PasswordHash:    "secret-hash",
		Name:            "Kim",
		ProfileImageKey: &key,
		CreatedAt:       time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, cache.SetMember(ctx, member))
	assert.True(t, server.Exists("member:1"))
	assert.Equal(t, 5*time.Minute, server.TTL("member:1"))

	got, err := cache.GetMember(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ExternalID)
	assert.Equal(t, key, *got.ProfileImageKey)
	assert.Empty(t, got.PasswordHash, "хэш пароля не должен попадать в кэш")

	require.NoError(t, cache.DeleteMember(ctx, 1))
	got, err = cache.GetMember(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheRepository_Expiry(t *testing.T) {
	cache, server := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetMember(ctx, &model.Member{ID: 2}))
	server.FastForward(2 * time.Minute)

	got, err := cache.GetMember(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheRepository_CorruptedEntry(t *testing.T) {
	cache, server := newTestCache(t, time.Minute)
	require.NoError(t, server.Set("member:3", "{not json"))

	_, err := cache.GetMember(context.Background(), 3)
	assert.Error(t, err)
}

func TestCacheRepository_ServerDown(t *testing.T) {
	cache, server := newTestCache(t, time.Minute)
	server.Close()

	_, err := cache.GetMember(context.Background(), 1)
	assert.Error(t, err)
}
