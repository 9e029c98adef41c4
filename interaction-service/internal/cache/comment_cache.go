package cache

import (
	"context"
	"encoding/json"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// CommentCache holds the per-post comment lists.
type CommentCache struct {
	store *Store
}

// NewCommentCache creates a comment cache.
func NewCommentCache(store *Store) *CommentCache {
	return &CommentCache{store: store}
}

// Save pushes the comment to the front of the post's list and bumps the
// post's commentsCount.
func (c *CommentCache) Save(ctx context.Context, postID string, comment *domain.Comment) error {
	if err := c.store.Connect(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(comment)
	if err != nil {
		return domain.CacheError("encode comment", err)
	}
	if err := c.store.LPush(ctx, commentKey(postID), string(data)); err != nil {
		return err
	}
	_, err = c.store.readIncrementWrite(ctx, postKey(postID), "commentsCount", 1)
	return err
}

// GetAll returns the post's comments, newest first.
func (c *CommentCache) GetAll(ctx context.Context, postID string) ([]*domain.Comment, error) {
	if err := c.store.Connect(ctx); err != nil {
		return nil, err
	}
	raw, err := c.store.LRange(ctx, commentKey(postID), 0, -1)
	if err != nil {
		return nil, err
	}
	comments := make([]*domain.Comment, 0, len(raw))
	for _, item := range raw {
		var cm domain.Comment
		if err := json.Unmarshal([]byte(item), &cm); err != nil {
			return nil, domain.CacheError("decode comment", err)
		}
		comments = append(comments, &cm)
	}
	return comments, nil
}

// GetNames returns the distinct commenter usernames and the comment count.
func (c *CommentCache) GetNames(ctx context.Context, postID string) (*domain.CommentNames, error) {
	if err := c.store.Connect(ctx); err != nil {
		return nil, err
	}
	count, err := c.store.LLen(ctx, commentKey(postID))
	if err != nil {
		return nil, err
	}
	comments, err := c.GetAll(ctx, postID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(comments))
	seen := make(map[string]struct{}, len(comments))
	for _, cm := range comments {
		if _, ok := seen[cm.Username]; ok {
			continue
		}
		seen[cm.Username] = struct{}{}
		names = append(names, cm.Username)
	}
	return &domain.CommentNames{Count: int(count), Names: names}, nil
}

// GetOne scans the post's list for commentID. It returns nil if absent.
func (c *CommentCache) GetOne(ctx context.Context, postID, commentID string) (*domain.Comment, error) {
	comments, err := c.GetAll(ctx, postID)
	if err != nil {
		return nil, err
	}
	for _, cm := range comments {
		if cm.ID == commentID {
			return cm, nil
		}
	}
	return nil, nil
}
