package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// FollowerCache holds the following/followers sets and the follow and block
// fields of cached user profiles.
type FollowerCache struct {
	store *Store
}

// NewFollowerCache creates a follower cache.
func NewFollowerCache(store *Store) *FollowerCache {
	return &FollowerCache{store: store}
}

// AddToSet adds member to the set at key.
func (c *FollowerCache) AddToSet(ctx context.Context, key, member string) error {
	if err := c.store.Connect(ctx); err != nil {
		return err
	}
	return c.store.SAdd(ctx, key, member)
}

// RemoveFromSet removes member from the set at key.
func (c *FollowerCache) RemoveFromSet(ctx context.Context, key, member string) error {
	if err := c.store.Connect(ctx); err != nil {
		return err
	}
	return c.store.SRem(ctx, key, member)
}

// IsMember reports whether member is in the set at key.
func (c *FollowerCache) IsMember(ctx context.Context, key, member string) (bool, error) {
	if err := c.store.Connect(ctx); err != nil {
		return false, err
	}
	return c.store.SIsMember(ctx, key, member)
}

// Members returns the ids in the set at key.
func (c *FollowerCache) Members(ctx context.Context, key string) ([]string, error) {
	if err := c.store.Connect(ctx); err != nil {
		return nil, err
	}
	return c.store.SMembers(ctx, key)
}

// GetProfiles returns the cached profile of every id in the set at key.
// Members without a cached profile are skipped.
func (c *FollowerCache) GetProfiles(ctx context.Context, key string) ([]domain.FollowerData, error) {
	ids, err := c.Members(ctx, key)
	if err != nil {
		return nil, err
	}
	out := make([]domain.FollowerData, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cmds, err := c.store.Multi(ctx, "load profiles", func(p redis.Pipeliner) error {
		for _, id := range ids {
			p.HGetAll(ctx, userKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, cmd := range cmds {
		m, err := cmd.(*redis.MapStringStringCmd).Result()
		if err != nil {
			return nil, domain.CacheError("hgetall user", err)
		}
		if m["_id"] == "" {
			continue
		}
		u, err := decodeUser(m)
		if err != nil {
			return nil, domain.CacheError("decode user", err)
		}
		out = append(out, u.FollowerData())
	}
	return out, nil
}

// UpdateCount adds delta to a counter field on the user's cached profile.
func (c *FollowerCache) UpdateCount(ctx context.Context, userID, field string, delta int) error {
	if err := c.store.Connect(ctx); err != nil {
		return err
	}
	if _, err := c.store.readIncrementWrite(ctx, userKey(userID), field, delta); err != nil {
		return err
	}
	return c.store.markHot(ctx, userID)
}

// UpdateBlockFlag adds targetID to or removes it from the user's blocked or
// blockedBy list.
func (c *FollowerCache) UpdateBlockFlag(ctx context.Context, userID, field, targetID string, action domain.BlockAction) error {
	if field != domain.FieldBlocked && field != domain.FieldBlockedBy {
		return domain.ValidationError("unknown block field %q", field)
	}
	if err := c.store.Connect(ctx); err != nil {
		return err
	}
	raw, err := c.store.HGet(ctx, userKey(userID), field)
	if err != nil {
		return err
	}
	list := []string{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return domain.CacheError("decode "+field, err)
		}
	}

	switch action {
	case domain.ActionBlock:
		if !contains(list, targetID) {
			list = append(list, targetID)
		}
	case domain.ActionUnblock:
		kept := list[:0]
		for _, id := range list {
			if id != targetID {
				kept = append(kept, id)
			}
		}
		list = kept
	default:
		return domain.ValidationError("unknown block action %q", action)
	}

	data, err := json.Marshal(list)
	if err != nil {
		return domain.CacheError("encode "+field, err)
	}
	return c.store.HSet(ctx, userKey(userID), field, string(data))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
