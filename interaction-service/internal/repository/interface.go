// Package repository is the durable store behind the cache. Workers write
// through it and orchestrators fall back to it when the cache is empty.
package repository

import (
	"context"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// PostFilter narrows a post listing. Zero values match everything.
type PostFilter struct {
	UserID string
	Media  domain.MediaKind
}

// PostRepository persists posts and the per-post counters.
type PostRepository interface {
	// Create inserts the post and bumps the author's postsCount. Replaying
	// an id that is already stored does nothing.
	Create(ctx context.Context, post *domain.Post) error
	Update(ctx context.Context, postID string, update domain.PostUpdate) error
	// Delete removes the post and decrements the author's postsCount.
	Delete(ctx context.Context, postID, userID string) error
	Get(ctx context.Context, postID string) (*domain.Post, error)
	// List returns posts newest first.
	List(ctx context.Context, filter PostFilter, skip, limit int) ([]*domain.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
}

// CommentRepository persists comments.
type CommentRepository interface {
	// Create inserts the comment and bumps the post's commentsCount.
	// Replaying an id that is already stored does nothing.
	Create(ctx context.Context, comment *domain.Comment) error
	ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error)
	Get(ctx context.Context, postID, commentID string) (*domain.Comment, error)
	Names(ctx context.Context, postID string) (*domain.CommentNames, error)
}

// ReactionRepository persists reactions. A user holds at most one reaction
// per post.
type ReactionRepository interface {
	// Replace swaps the user's reaction on the post for r and moves one
	// count from previous to r.Type. An empty previous skips the decrement.
	Replace(ctx context.Context, r *domain.Reaction, previous domain.ReactionType) error
	// Remove deletes the user's reaction and decrements previous.
	Remove(ctx context.Context, postID, username string, previous domain.ReactionType) error
	ListByPost(ctx context.Context, postID string) ([]*domain.Reaction, int, error)
	GetByUsername(ctx context.Context, postID, username string) (*domain.Reaction, error)
	ListByUsername(ctx context.Context, username string) ([]*domain.Reaction, error)
}

// FollowerRepository persists follow edges and the two follow counters.
type FollowerRepository interface {
	// Create inserts the edge, bumps the followee's followersCount and the
	// follower's followingCount.
	Create(ctx context.Context, f *domain.Follower) error
	Delete(ctx context.Context, followerID, followeeID string) error
	// Following lists the profiles userID follows, newest edge first.
	Following(ctx context.Context, userID string) ([]domain.FollowerData, error)
	// Followers lists the profiles following userID, newest edge first.
	Followers(ctx context.Context, userID string) ([]domain.FollowerData, error)
}

// UserRepository persists the profile fields this service maintains.
type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	// AddBlocked adds targetID to the blocked or blockedBy list.
	AddBlocked(ctx context.Context, userID, field, targetID string) error
	RemoveBlocked(ctx context.Context, userID, field, targetID string) error
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error)
	// Get returns the notification if it was sent to userID.
	Get(ctx context.Context, userID, notificationID string) (*domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	Delete(ctx context.Context, userID, notificationID string) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Posts         PostRepository
	Comments      CommentRepository
	Reactions     ReactionRepository
	Followers     FollowerRepository
	Users         UserRepository
	Notifications NotificationRepository
}
