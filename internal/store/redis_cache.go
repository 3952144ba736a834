package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/click-tracker/internal/tracking"
)

// RedisCacheRepository wraps a TokenRepository with Redis caching for reads.
// Tokens are immutable, so a cached entry never goes stale; the TTL only
// bounds memory.
type RedisCacheRepository struct {
	store  tracking.TokenRepository
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store tracking.TokenRepository, client redis.UniversalClient, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "token:",
		ttl:    ttl,
	}
}

// Save delegates to the underlying store. The cache is filled on read only:
// an idempotent save of an existing token must not overwrite what is cached.
func (r *RedisCacheRepository) Save(ctx context.Context, token *tracking.Token) error {
	return r.store.Save(ctx, token)
}

// SaveBatch delegates to the underlying store.
func (r *RedisCacheRepository) SaveBatch(ctx context.Context, tokens []*tracking.Token) error {
	return r.store.SaveBatch(ctx, tokens)
}

// GetByToken checks the cache first and falls back to the store on a miss
// or a Redis error.
func (r *RedisCacheRepository) GetByToken(ctx context.Context, value string) (*tracking.Token, error) {
	if t, err := r.getFromCache(ctx, value); err == nil {
		return t, nil
	}

	t, err := r.store.GetByToken(ctx, value)
	if err != nil {
		return nil, err
	}

	r.cacheToken(ctx, t)

	return t, nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, value string) (*tracking.Token, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+value).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, tracking.ErrNotFound
	}

	t := &tracking.Token{
		Token:          result["token"],
		RecipientEmail: result["recipient_email"],
		TargetURL:      result["target_url"],
		Campaign:       result["campaign"],
		CreatedAt:      parseNanos(result["created_at"]),
	}

	if ts := result["expires_at"]; ts != "" {
		expires := parseNanos(ts)
		t.ExpiresAt = &expires
	}

	return t, nil
}

func (r *RedisCacheRepository) cacheToken(ctx context.Context, t *tracking.Token) {
	key := r.prefix + t.Token

	expires := ""
	if t.ExpiresAt != nil {
		expires = strconv.FormatInt(t.ExpiresAt.UnixNano(), 10)
	}

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"token":           t.Token,
		"recipient_email": t.RecipientEmail,
		"target_url":      t.TargetURL,
		"campaign":        t.Campaign,
		"expires_at":      expires,
		"created_at":      t.CreatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

func parseNanos(s string) time.Time {
	nanos, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}

	return time.Unix(0, nanos).UTC()
}

// Compile-time check.
var _ tracking.TokenRepository = (*RedisCacheRepository)(nil)
