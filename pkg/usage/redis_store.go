package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
	"github.com/dmitrymomot/quotaguard/pkg/period"
)

// redisKeyPrefix namespaces usage hashes in a shared Redis instance.
const redisKeyPrefix = "quotaguard:usage"

// DefaultRetention is how long a window's counter outlives the window itself.
// Past windows are immutable, so retention only affects how long dashboards
// can still read them; correctness never depends on expired keys.
const DefaultRetention = 30 * 24 * time.Hour

// RedisStore keeps windowed counters in Redis hashes, one per (owner, limit
// key, window). INCRBY makes concurrent increments atomic without any
// explicit locking, which suits high-rate metered events (API calls, emails)
// better than a relational row per increment burst.
type RedisStore struct {
	client    redis.UniversalClient
	retention time.Duration
	now       func() time.Time
}

// NewRedisStore returns a Store over the given Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client:    client,
		retention: DefaultRetention,
		now:       time.Now,
	}
}

// WithRetention overrides how long counters survive past their window end.
func (s *RedisStore) WithRetention(d time.Duration) *RedisStore {
	if d > 0 {
		s.retention = d
	}
	return s
}

func (s *RedisStore) key(owner entitlement.Owner, key entitlement.LimitKey, window period.Window) string {
	return fmt.Sprintf("%s:%s:%s:%s:%d", redisKeyPrefix, owner.Kind, owner.ID, key, window.Start.Unix())
}

func (s *RedisStore) Get(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, window period.Window) (Record, error) {
	rec := Record{Owner: owner, Key: key, Window: window}

	fields, err := s.client.HGetAll(ctx, s.key(owner, key, window)).Result()
	if err != nil {
		return Record{}, errors.Join(ErrFailedToReadUsage, err)
	}
	if len(fields) == 0 {
		return rec, nil
	}

	if used, err := strconv.ParseInt(fields["used"], 10, 64); err == nil {
		rec.Used = used
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["last_used_at"]); err == nil {
		rec.LastUsedAt = ts.UTC()
	}
	return rec, nil
}

func (s *RedisStore) Increment(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, window period.Window, n int64) (Record, error) {
	if n <= 0 {
		return Record{}, ErrInvalidIncrement
	}

	redisKey := s.key(owner, key, window)
	lastUsed := s.now().UTC()

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, redisKey, "used", n)
		pipe.HSet(ctx, redisKey, "last_used_at", lastUsed.Format(time.RFC3339Nano))
		pipe.PExpireAt(ctx, redisKey, window.End.Add(s.retention))
		return nil
	})
	if err != nil {
		return Record{}, errors.Join(ErrFailedToIncrementUsage, err)
	}

	return Record{
		Owner:      owner,
		Key:        key,
		Window:     window,
		Used:       incr.Val(),
		LastUsedAt: lastUsed,
	}, nil
}
