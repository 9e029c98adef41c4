package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// UserCache holds user profiles.
type UserCache struct {
	store *Store
}

// NewUserCache creates a user cache.
func NewUserCache(store *Store) *UserCache {
	return &UserCache{store: store}
}

// Save writes the whole profile.
func (c *UserCache) Save(ctx context.Context, user *domain.User) error {
	if err := c.store.Connect(ctx); err != nil {
		return err
	}
	fields, err := encodeUser(user)
	if err != nil {
		return domain.CacheError("encode user", err)
	}
	return c.store.HSet(ctx, userKey(user.ID), fields)
}

// Get returns the profile, or nil if it is not cached.
func (c *UserCache) Get(ctx context.Context, userID string) (*domain.User, error) {
	if err := c.store.Connect(ctx); err != nil {
		return nil, err
	}
	m, err := c.store.HGetAll(ctx, userKey(userID))
	if err != nil {
		return nil, err
	}
	if m["_id"] == "" {
		return nil, nil
	}
	u, err := decodeUser(m)
	if err != nil {
		return nil, domain.CacheError("decode user", err)
	}
	return u, nil
}

// recountScript rewrites a cached profile's counters from the follower sets
// and the feed. postsCount is left alone when the profile has no uId.
var recountScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], '_id') == 0 then
	return 0
end
redis.call('HSET', KEYS[1],
	ARGV[2], redis.call('SCARD', KEYS[2]),
	ARGV[3], redis.call('SCARD', KEYS[3]))
local uid = redis.call('HGET', KEYS[1], 'uId')
if uid then
	redis.call('HSET', KEYS[1], ARGV[1], redis.call('ZCOUNT', KEYS[4], uid, uid))
end
return 1
`)

// RecountCounters sets followersCount and followingCount to the sizes of the
// user's follower sets and postsCount to the user's posts in the feed, in
// one atomic step. It does nothing for a profile that is not cached.
func (c *UserCache) RecountCounters(ctx context.Context, userID string) error {
	if err := c.store.Connect(ctx); err != nil {
		return err
	}
	keys := []string{userKey(userID), FollowersKey(userID), FollowingKey(userID), postsFeedKey}
	err := recountScript.Run(ctx, c.store.client, keys,
		domain.FieldPostsCount, domain.FieldFollowersCount, domain.FieldFollowingCount).Err()
	if err != nil {
		return domain.CacheError("recount "+userKey(userID), err)
	}
	return nil
}
