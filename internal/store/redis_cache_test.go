package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/click-tracker/internal/store"
	"github.com/serroba/click-tracker/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo counts lookups that reach the underlying store.
type countingRepo struct {
	*store.MemoryStore

	gets int
	err  error
}

func (c *countingRepo) GetByToken(ctx context.Context, value string) (*tracking.Token, error) {
	c.gets++
	if c.err != nil {
		return nil, c.err
	}

	return c.MemoryStore.GetByToken(ctx, value)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisCacheRepository_GetByToken(t *testing.T) {
	ctx := context.Background()

	t.Run("serves repeated lookups from cache", func(t *testing.T) {
		_, client := newTestRedis(t)
		backing := &countingRepo{MemoryStore: store.NewMemoryStore()}
		expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
		token := newToken("cached1", "a@example.com", "spring")
		token.ExpiresAt = &expires
		require.NoError(t, backing.Save(ctx, token))

		repo := store.NewRedisCacheRepository(backing, client, time.Hour)

		first, err := repo.GetByToken(ctx, "cached1")
		require.NoError(t, err)

		second, err := repo.GetByToken(ctx, "cached1")
		require.NoError(t, err)

		assert.Equal(t, 1, backing.gets)
		assert.Equal(t, first.TargetURL, second.TargetURL)
		assert.Equal(t, "spring", second.Campaign)
		require.NotNil(t, second.ExpiresAt)
		assert.True(t, expires.Equal(*second.ExpiresAt))
	})

	t.Run("keeps tokens without expiry open ended", func(t *testing.T) {
		_, client := newTestRedis(t)
		backing := &countingRepo{MemoryStore: store.NewMemoryStore()}
		require.NoError(t, backing.Save(ctx, newToken("forever", "a@example.com", "")))

		repo := store.NewRedisCacheRepository(backing, client, 0)
		_, _ = repo.GetByToken(ctx, "forever")

		got, err := repo.GetByToken(ctx, "forever")

		require.NoError(t, err)
		assert.Nil(t, got.ExpiresAt)
	})

	t.Run("applies ttl to cached entries", func(t *testing.T) {
		mr, client := newTestRedis(t)
		backing := &countingRepo{MemoryStore: store.NewMemoryStore()}
		require.NoError(t, backing.Save(ctx, newToken("ttl1", "a@example.com", "")))

		repo := store.NewRedisCacheRepository(backing, client, time.Minute)
		_, _ = repo.GetByToken(ctx, "ttl1")

		assert.Equal(t, time.Minute, mr.TTL("token:ttl1"))
	})

	t.Run("does not cache misses", func(t *testing.T) {
		_, client := newTestRedis(t)
		backing := &countingRepo{MemoryStore: store.NewMemoryStore()}
		repo := store.NewRedisCacheRepository(backing, client, time.Hour)

		_, err := repo.GetByToken(ctx, "missing")
		require.ErrorIs(t, err, tracking.ErrNotFound)

		_, err = repo.GetByToken(ctx, "missing")
		require.ErrorIs(t, err, tracking.ErrNotFound)
		assert.Equal(t, 2, backing.gets)
	})

	t.Run("falls back to the store when redis is down", func(t *testing.T) {
		mr, client := newTestRedis(t)
		backing := &countingRepo{MemoryStore: store.NewMemoryStore()}
		require.NoError(t, backing.Save(ctx, newToken("down1", "a@example.com", "")))
		mr.Close()

		repo := store.NewRedisCacheRepository(backing, client, time.Hour)

		got, err := repo.GetByToken(ctx, "down1")

		require.NoError(t, err)
		assert.Equal(t, "a@example.com", got.RecipientEmail)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		_, client := newTestRedis(t)
		backing := &countingRepo{MemoryStore: store.NewMemoryStore(), err: errors.New("db down")}
		repo := store.NewRedisCacheRepository(backing, client, time.Hour)

		_, err := repo.GetByToken(ctx, "any")

		assert.EqualError(t, err, "db down")
	})
}

func TestRedisCacheRepository_Save(t *testing.T) {
	t.Run("idempotent save does not overwrite the cached token", func(t *testing.T) {
		ctx := context.Background()
		_, client := newTestRedis(t)
		backing := &countingRepo{MemoryStore: store.NewMemoryStore()}
		repo := store.NewRedisCacheRepository(backing, client, time.Hour)

		require.NoError(t, repo.Save(ctx, newToken("same", "first@example.com", "")))
		_, _ = repo.GetByToken(ctx, "same")

		require.NoError(t, repo.Save(ctx, newToken("same", "second@example.com", "")))

		got, err := repo.GetByToken(ctx, "same")
		require.NoError(t, err)
		assert.Equal(t, "first@example.com", got.RecipientEmail)
	})
}
