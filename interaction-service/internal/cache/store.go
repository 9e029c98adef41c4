// Package cache keeps the hot copy of posts, comments, reactions, follower
// sets and user profiles in Redis.
//
// Key layout:
//
//	posts:<postId>       hash    post fields
//	post                 zset    post ids scored by the author's numeric uId
//	comments:<postId>    list    comment JSON, newest first
//	reactions:<postId>   list    reaction JSON, newest first
//	users:<userId>       hash    user profile fields
//	following:<userId>   set     ids the user follows
//	followers:<userId>   set     ids following the user
//	counters:hot         zset    user ids whose counters changed since the last reconcile
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

const (
	postKeyPrefix      = "posts:"
	postsFeedKey       = "post"
	commentKeyPrefix   = "comments:"
	reactionKeyPrefix  = "reactions:"
	userKeyPrefix      = "users:"
	followingKeyPrefix = "following:"
	followersKeyPrefix = "followers:"
	hotCountersKey     = "counters:hot"
)

func postKey(id string) string     { return postKeyPrefix + id }
func commentKey(id string) string  { return commentKeyPrefix + id }
func reactionKey(id string) string { return reactionKeyPrefix + id }
func userKey(id string) string     { return userKeyPrefix + id }

// FollowingKey is the set of ids userID follows.
func FollowingKey(userID string) string { return followingKeyPrefix + userID }

// FollowersKey is the set of ids following userID.
func FollowersKey(userID string) string { return followersKeyPrefix + userID }

// Config holds Redis connection settings.
type Config struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Store wraps a Redis client. Every command error comes back as
// domain.ErrCacheUnavailable. Pipelines run in order but are not
// rolled back: a failure mid-batch leaves earlier writes applied.
type Store struct {
	client    *redis.Client
	mu        sync.Mutex
	connected bool
}

// NewStore creates a store. No connection is made until Connect.
func NewStore(cfg Config) *Store {
	return NewStoreWithClient(redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}))
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Connect verifies the connection once. Later calls return immediately;
// a failed attempt is retried on the next call.
func (s *Store) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return domain.CacheError("connect", err)
	}
	s.connected = true
	return nil
}

// Client returns the underlying client for components sharing the
// connection (pub/sub, job queue).
func (s *Store) Client() *redis.Client {
	return s.client
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, domain.CacheError("hgetall "+key, err)
	}
	return m, nil
}

// HGetInt reads one integer hash field. A missing or empty field reads as 0.
func (s *Store) HGetInt(ctx context.Context, key, field string) (int, error) {
	vals, err := s.client.HMGet(ctx, key, field).Result()
	if err != nil {
		return 0, domain.CacheError("hmget "+key, err)
	}
	if len(vals) == 0 || vals[0] == nil {
		return 0, nil
	}
	str, _ := vals[0].(string)
	if str == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return 0, domain.CacheError(fmt.Sprintf("parse %s.%s", key, field), err)
	}
	return n, nil
}

// HGet reads one hash field. A missing field reads as "".
func (s *Store) HGet(ctx context.Context, key, field string) (string, error) {
	v, err := s.client.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", domain.CacheError("hget "+key, err)
	}
	return v, nil
}

func (s *Store) HSet(ctx context.Context, key string, values ...interface{}) error {
	if err := s.client.HSet(ctx, key, values...).Err(); err != nil {
		return domain.CacheError("hset "+key, err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, domain.CacheError("exists "+key, err)
	}
	return n > 0, nil
}

func (s *Store) LPush(ctx context.Context, key string, value string) error {
	if err := s.client.LPush(ctx, key, value).Err(); err != nil {
		return domain.CacheError("lpush "+key, err)
	}
	return nil
}

func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	vals, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, domain.CacheError("lrange "+key, err)
	}
	return vals, nil
}

func (s *Store) LLen(ctx context.Context, key string) (int64, error) {
	n, err := s.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, domain.CacheError("llen "+key, err)
	}
	return n, nil
}

func (s *Store) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	vals, err := s.client.ZRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, domain.CacheError("zrange "+key, err)
	}
	return vals, nil
}

// ZRangeByScoreRev returns members scored within [min, max], highest first.
func (s *Store) ZRangeByScoreRev(ctx context.Context, key string, min, max float64) ([]string, error) {
	vals, err := s.client.ZRangeArgs(ctx, redis.ZRangeArgs{
		Key:     key,
		Start:   strconv.FormatFloat(min, 'f', -1, 64),
		Stop:    strconv.FormatFloat(max, 'f', -1, 64),
		ByScore: true,
		Rev:     true,
	}).Result()
	if err != nil {
		return nil, domain.CacheError("zrange byscore "+key, err)
	}
	return vals, nil
}

func (s *Store) ZCard(ctx context.Context, key string) (int64, error) {
	n, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, domain.CacheError("zcard "+key, err)
	}
	return n, nil
}

func (s *Store) SAdd(ctx context.Context, key, member string) error {
	if err := s.client.SAdd(ctx, key, member).Err(); err != nil {
		return domain.CacheError("sadd "+key, err)
	}
	return nil
}

func (s *Store) SRem(ctx context.Context, key, member string) error {
	if err := s.client.SRem(ctx, key, member).Err(); err != nil {
		return domain.CacheError("srem "+key, err)
	}
	return nil
}

func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	vals, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, domain.CacheError("smembers "+key, err)
	}
	return vals, nil
}

func (s *Store) SIsMember(ctx context.Context, key, member string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, domain.CacheError("sismember "+key, err)
	}
	return ok, nil
}

// Multi queues commands in fn and runs them as one MULTI/EXEC batch.
func (s *Store) Multi(ctx context.Context, op string, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	cmds, err := s.client.TxPipelined(ctx, fn)
	if err != nil {
		return nil, domain.CacheError(op, err)
	}
	return cmds, nil
}

// readIncrementWrite adds delta to an integer hash field by reading it,
// adding in the client and writing it back. Two callers racing on the same
// field can lose an update; the reconciler repairs user counters.
func (s *Store) readIncrementWrite(ctx context.Context, key, field string, delta int) (int, error) {
	current, err := s.HGetInt(ctx, key, field)
	if err != nil {
		return 0, err
	}
	next := current + delta
	if err := s.HSet(ctx, key, field, next); err != nil {
		return 0, err
	}
	return next, nil
}

// markHot records that a user's cached counters changed.
func (s *Store) markHot(ctx context.Context, userID string) error {
	if err := s.client.ZIncrBy(ctx, hotCountersKey, 1, userID).Err(); err != nil {
		return domain.CacheError("zincrby "+hotCountersKey, err)
	}
	return nil
}

// HotUsers returns up to n user ids with the most counter changes, mapped
// to their change score.
func (s *Store) HotUsers(ctx context.Context, n int64) (map[string]float64, error) {
	zs, err := s.client.ZRevRangeWithScores(ctx, hotCountersKey, 0, n-1).Result()
	if err != nil {
		return nil, domain.CacheError("zrevrange "+hotCountersKey, err)
	}
	out := make(map[string]float64, len(zs))
	for _, z := range zs {
		if id, ok := z.Member.(string); ok {
			out[id] = z.Score
		}
	}
	return out, nil
}

// clearHotScript removes a member from the hot set only if its score still
// equals ARGV[2].
var clearHotScript = redis.NewScript(`
local score = redis.call('ZSCORE', KEYS[1], ARGV[1])
if score and tonumber(score) == tonumber(ARGV[2]) then
	return redis.call('ZREM', KEYS[1], ARGV[1])
end
return 0
`)

// ClearHotUser drops userID from the hot set unless its counters changed
// again after score was read. It reports whether the user was removed.
func (s *Store) ClearHotUser(ctx context.Context, userID string, score float64) (bool, error) {
	n, err := clearHotScript.Run(ctx, s.client, []string{hotCountersKey},
		userID, strconv.FormatFloat(score, 'f', -1, 64)).Int()
	if err != nil {
		return false, domain.CacheError("zrem "+hotCountersKey, err)
	}
	return n == 1, nil
}
