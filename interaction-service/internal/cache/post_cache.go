package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// PostCache holds posts and the global feed set.
type PostCache struct {
	store *Store
}

// NewPostCache creates a post cache.
func NewPostCache(store *Store) *PostCache {
	return &PostCache{store: store}
}

// Save writes the post hash, adds it to the feed scored by the author's uId
// and bumps the author's postsCount.
func (c *PostCache) Save(ctx context.Context, post *domain.Post, authorID string, authorUID int64) error {
	if err := c.store.Connect(ctx); err != nil {
		return err
	}

	count, err := c.store.HGetInt(ctx, userKey(authorID), domain.FieldPostsCount)
	if err != nil {
		return err
	}
	fields, err := encodePost(post)
	if err != nil {
		return domain.CacheError("encode post", err)
	}

	_, err = c.store.Multi(ctx, "save post "+post.ID, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, postsFeedKey, redis.Z{Score: float64(authorUID), Member: post.ID})
		p.HSet(ctx, postKey(post.ID), fields)
		p.HSet(ctx, userKey(authorID), domain.FieldPostsCount, count+1)
		return nil
	})
	if err != nil {
		return err
	}
	return c.store.markHot(ctx, authorID)
}

// GetRange returns posts at feed positions [start, end].
func (c *PostCache) GetRange(ctx context.Context, start, end int64) ([]*domain.Post, error) {
	return c.getRange(ctx, start, end, nil)
}

// GetWithMedia returns posts at feed positions [start, end] that carry the
// given media kind. A GIF counts as an image.
func (c *PostCache) GetWithMedia(ctx context.Context, kind domain.MediaKind, start, end int64) ([]*domain.Post, error) {
	var keep func(*domain.Post) bool
	switch kind {
	case domain.MediaImage:
		keep = func(p *domain.Post) bool { return p.HasImage() || p.HasGif() }
	case domain.MediaVideo:
		keep = func(p *domain.Post) bool { return p.HasVideo() }
	default:
		return nil, domain.ValidationError("unknown media kind %q", kind)
	}
	return c.getRange(ctx, start, end, keep)
}

// GetUserPosts returns every post by the author with the given uId.
func (c *PostCache) GetUserPosts(ctx context.Context, authorUID int64) ([]*domain.Post, error) {
	if err := c.store.Connect(ctx); err != nil {
		return nil, err
	}
	ids, err := c.store.ZRangeByScoreRev(ctx, postsFeedKey, float64(authorUID), float64(authorUID))
	if err != nil {
		return nil, err
	}
	return c.load(ctx, ids, nil)
}

// Total returns the number of posts in the feed.
func (c *PostCache) Total(ctx context.Context) (int64, error) {
	if err := c.store.Connect(ctx); err != nil {
		return 0, err
	}
	return c.store.ZCard(ctx, postsFeedKey)
}

// Get returns one post, or nil if it is not cached.
func (c *PostCache) Get(ctx context.Context, postID string) (*domain.Post, error) {
	if err := c.store.Connect(ctx); err != nil {
		return nil, err
	}
	m, err := c.store.HGetAll(ctx, postKey(postID))
	if err != nil {
		return nil, err
	}
	if !isCachedPost(m) {
		return nil, nil
	}
	p, err := decodePost(m)
	if err != nil {
		return nil, domain.CacheError("decode post", err)
	}
	return p, nil
}

// Update overwrites only the supplied fields and returns the merged post.
func (c *PostCache) Update(ctx context.Context, postID string, update domain.PostUpdate) (*domain.Post, error) {
	if err := c.store.Connect(ctx); err != nil {
		return nil, err
	}
	ok, err := c.store.Exists(ctx, postKey(postID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFoundError("post", postID)
	}

	fields := update.Fields()
	if len(fields) > 0 {
		values := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			values[k] = v
		}
		if err := c.store.HSet(ctx, postKey(postID), values); err != nil {
			return nil, err
		}
	}
	return c.Get(ctx, postID)
}

// Delete removes the post from the feed and the cache and decrements the
// author's postsCount. The post's comment and reaction lists are left in
// place.
func (c *PostCache) Delete(ctx context.Context, postID, authorID string) error {
	if err := c.store.Connect(ctx); err != nil {
		return err
	}
	count, err := c.store.HGetInt(ctx, userKey(authorID), domain.FieldPostsCount)
	if err != nil {
		return err
	}
	_, err = c.store.Multi(ctx, "delete post "+postID, func(p redis.Pipeliner) error {
		p.ZRem(ctx, postsFeedKey, postID)
		p.Del(ctx, postKey(postID))
		p.HSet(ctx, userKey(authorID), domain.FieldPostsCount, count-1)
		return nil
	})
	if err != nil {
		return err
	}
	return c.store.markHot(ctx, authorID)
}

func (c *PostCache) getRange(ctx context.Context, start, end int64, keep func(*domain.Post) bool) ([]*domain.Post, error) {
	if err := c.store.Connect(ctx); err != nil {
		return nil, err
	}
	ids, err := c.store.ZRange(ctx, postsFeedKey, start, end)
	if err != nil {
		return nil, err
	}
	return c.load(ctx, ids, keep)
}

// load reads the post hashes for ids in one batch, skipping ids whose hash
// is gone and posts rejected by keep.
func (c *PostCache) load(ctx context.Context, ids []string, keep func(*domain.Post) bool) ([]*domain.Post, error) {
	posts := make([]*domain.Post, 0, len(ids))
	if len(ids) == 0 {
		return posts, nil
	}

	cmds, err := c.store.Multi(ctx, "load posts", func(p redis.Pipeliner) error {
		for _, id := range ids {
			p.HGetAll(ctx, postKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, cmd := range cmds {
		m, err := cmd.(*redis.MapStringStringCmd).Result()
		if err != nil {
			return nil, domain.CacheError("hgetall post", err)
		}
		if !isCachedPost(m) {
			continue
		}
		post, err := decodePost(m)
		if err != nil {
			return nil, domain.CacheError("decode post", err)
		}
		if keep == nil || keep(post) {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

// isCachedPost reports whether m is a full post hash. Counter writes on a
// post that is no longer cached leave a hash with only the counter field.
func isCachedPost(m map[string]string) bool {
	return m["_id"] != ""
}
