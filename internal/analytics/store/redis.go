package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/click-tracker/internal/analytics"
)

// Hash fields, also named in the counting scripts.
const (
	fieldIssued   = "issued"
	fieldClicks   = "clicks"
	fieldPrefetch = "prefetch"

	// clickSeenTTL bounds how long a delivered click ID is remembered for
	// redelivery detection.
	clickSeenTTL = 24 * time.Hour
)

// countIssued adds the token to the issued set and, only when it is new,
// bumps the issued counter of every hash in KEYS[2..].
var countIssued = redis.NewScript(`
if redis.call('SADD', KEYS[1], ARGV[1]) == 0 then
	return 0
end
for i = 2, #KEYS do
	redis.call('HINCRBY', KEYS[i], 'issued', 1)
end
return 1
`)

// countClick marks the click ID as seen and, only when it was unseen, bumps
// the click (and prefetch) counters of every hash in KEYS[2..].
var countClick = redis.NewScript(`
if not redis.call('SET', KEYS[1], 1, 'NX', 'PX', ARGV[1]) then
	return 0
end
for i = 2, #KEYS do
	redis.call('HINCRBY', KEYS[i], 'clicks', 1)
	if ARGV[2] == '1' then
		redis.call('HINCRBY', KEYS[i], 'prefetch', 1)
	end
end
return 1
`)

// RedisStore keeps issued/click counters in Redis hashes, one per campaign,
// one per token and one global. Redelivered events are counted once: the seen
// marker and the counters change in one script, so a failed write leaves
// nothing behind and the redelivery counts it.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a counter store backed by client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: "stats:"}
}

func (s *RedisStore) SaveTokenIssued(ctx context.Context, event *analytics.TokenIssuedEvent) error {
	keys := append([]string{s.prefix + "issued-tokens"}, s.keys(event.Campaign, event.Token)...)

	if err := countIssued.Run(ctx, s.client, keys, event.Token).Err(); err != nil {
		return fmt.Errorf("count issued token: %w", err)
	}

	return nil
}

func (s *RedisStore) SaveClickRecorded(ctx context.Context, event *analytics.ClickRecordedEvent) error {
	seenKey := s.prefix + "click:" + strconv.FormatInt(event.ClickID, 10)
	keys := append([]string{seenKey}, s.keys(event.Campaign, event.Token)...)

	prefetch := "0"
	if event.IsPrefetch {
		prefetch = "1"
	}

	if err := countClick.Run(ctx, s.client, keys, clickSeenTTL.Milliseconds(), prefetch).Err(); err != nil {
		return fmt.Errorf("count click: %w", err)
	}

	return nil
}

// Stats reads the counters selected by key. Missing counters read as zero.
func (s *RedisStore) Stats(ctx context.Context, key analytics.StatsKey) (analytics.Stats, error) {
	values, err := s.client.HGetAll(ctx, s.statsKey(key)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return analytics.Stats{}, err
	}

	return analytics.Stats{
		Issued:   parseCount(values[fieldIssued]),
		Clicks:   parseCount(values[fieldClicks]),
		Prefetch: parseCount(values[fieldPrefetch]),
	}, nil
}

func (s *RedisStore) keys(campaign, token string) []string {
	keys := []string{s.prefix + "all", s.prefix + "token:" + token}
	if campaign != "" {
		keys = append(keys, s.prefix+"campaign:"+campaign)
	}

	return keys
}

func (s *RedisStore) statsKey(key analytics.StatsKey) string {
	switch {
	case key.Token != "":
		return s.prefix + "token:" + key.Token
	case key.Campaign != "":
		return s.prefix + "campaign:" + key.Campaign
	default:
		return s.prefix + "all"
	}
}

func parseCount(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)

	return n
}

var (
	_ analytics.Store       = (*RedisStore)(nil)
	_ analytics.StatsReader = (*RedisStore)(nil)
)
