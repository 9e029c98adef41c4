package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// ReactionCache holds the per-post reaction lists and the reaction counts on
// the post hash. It never computes counts itself: callers pass the full
// post-update counts so the cache agrees with the durable increment.
type ReactionCache struct {
	store *Store
}

// NewReactionCache creates a reaction cache.
func NewReactionCache(store *Store) *ReactionCache {
	return &ReactionCache{store: store}
}

// Save replaces the user's reaction on a post. previous names the kind being
// replaced; the existing entry for the username is removed whether or not it
// is set, so the list holds at most one per user. With an empty kind nothing
// new is pushed.
func (c *ReactionCache) Save(ctx context.Context, postID string, reaction *domain.Reaction, counts domain.Reactions, kind, previous domain.ReactionType) error {
	if kind != "" && !kind.Valid() || previous != "" && !previous.Valid() {
		return domain.ValidationError("unknown reaction kind")
	}
	if err := c.store.Connect(ctx); err != nil {
		return err
	}
	if err := c.Remove(ctx, postID, reaction.Username, counts); err != nil {
		return err
	}
	if kind == "" {
		return nil
	}

	data, err := json.Marshal(reaction)
	if err != nil {
		return domain.CacheError("encode reaction", err)
	}
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return domain.CacheError("encode reactions", err)
	}
	_, err = c.store.Multi(ctx, "save reaction "+postID, func(p redis.Pipeliner) error {
		p.LPush(ctx, reactionKey(postID), string(data))
		p.HSet(ctx, postKey(postID), "reactions", string(countsJSON))
		return nil
	})
	return err
}

// Remove drops the user's entry from the post's list, if any, and rewrites
// the post's reaction counts with counts.
func (c *ReactionCache) Remove(ctx context.Context, postID, username string, counts domain.Reactions) error {
	if err := c.store.Connect(ctx); err != nil {
		return err
	}
	raw, err := c.store.LRange(ctx, reactionKey(postID), 0, -1)
	if err != nil {
		return err
	}
	var existing string
	for _, item := range raw {
		var r domain.Reaction
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return domain.CacheError("decode reaction", err)
		}
		if r.Username == username {
			existing = item
			break
		}
	}

	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return domain.CacheError("encode reactions", err)
	}
	_, err = c.store.Multi(ctx, "remove reaction "+postID, func(p redis.Pipeliner) error {
		if existing != "" {
			p.LRem(ctx, reactionKey(postID), 1, existing)
		}
		p.HSet(ctx, postKey(postID), "reactions", string(countsJSON))
		return nil
	})
	return err
}

// GetAll returns the post's reactions, newest first, and their number.
func (c *ReactionCache) GetAll(ctx context.Context, postID string) ([]*domain.Reaction, int, error) {
	if err := c.store.Connect(ctx); err != nil {
		return nil, 0, err
	}
	count, err := c.store.LLen(ctx, reactionKey(postID))
	if err != nil {
		return nil, 0, err
	}
	raw, err := c.store.LRange(ctx, reactionKey(postID), 0, -1)
	if err != nil {
		return nil, 0, err
	}
	reactions := make([]*domain.Reaction, 0, len(raw))
	for _, item := range raw {
		var r domain.Reaction
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, 0, domain.CacheError("decode reaction", err)
		}
		reactions = append(reactions, &r)
	}
	return reactions, int(count), nil
}

// GetByUsername returns the user's reaction on a post, or nil.
func (c *ReactionCache) GetByUsername(ctx context.Context, postID, username string) (*domain.Reaction, error) {
	reactions, _, err := c.GetAll(ctx, postID)
	if err != nil {
		return nil, err
	}
	for _, r := range reactions {
		if r.Username == username {
			return r, nil
		}
	}
	return nil, nil
}
