// Package service holds the interaction orchestrators. Each write shapes
// the entity, emits a real-time event, writes the cache and enqueues the
// durable write before returning. Reads go to the cache first and fall
// back to the durable store when it is empty.
package service

import (
	"context"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/cache"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/repository"
)

// PageSize is the number of posts per feed page.
const PageSize = 10

// Deps are the collaborators shared by every orchestrator.
type Deps struct {
	Caches  *cache.Caches
	Store   *repository.Store
	Emitter realtime.Emitter
	Queue   queue.Enqueuer
}

// PostService creates, edits and lists posts.
type PostService interface {
	Create(ctx context.Context, actor domain.Actor, req *CreatePostRequest) (*domain.Post, error)
	Update(ctx context.Context, actor domain.Actor, postID string, update *domain.PostUpdate) (*domain.Post, error)
	Delete(ctx context.Context, actor domain.Actor, postID string) error
	Get(ctx context.Context, postID string) (*domain.Post, error)
	List(ctx context.Context, page int) (*PostPage, error)
	ListWithMedia(ctx context.Context, kind domain.MediaKind, page int) ([]*domain.Post, error)
	ListByUser(ctx context.Context, userID string, uID int64) ([]*domain.Post, error)
}

// CommentService adds and lists comments.
type CommentService interface {
	Add(ctx context.Context, actor domain.Actor, req *AddCommentRequest) (*domain.Comment, error)
	List(ctx context.Context, postID string) ([]*domain.Comment, error)
	Names(ctx context.Context, postID string) (*domain.CommentNames, error)
	Single(ctx context.Context, postID, commentID string) (*domain.Comment, error)
}

// ReactionService adds, removes and lists reactions.
type ReactionService interface {
	Add(ctx context.Context, actor domain.Actor, req *AddReactionRequest) (*domain.Reaction, error)
	Remove(ctx context.Context, actor domain.Actor, req *RemoveReactionRequest) error
	List(ctx context.Context, postID string) (*ReactionList, error)
	ByUsername(ctx context.Context, postID, username string) (*domain.Reaction, error)
	AllByUsername(ctx context.Context, username string) ([]*domain.Reaction, error)
}

// FollowerService manages follow edges and block lists.
type FollowerService interface {
	Follow(ctx context.Context, actor domain.Actor, followeeID string) error
	Unfollow(ctx context.Context, actor domain.Actor, followeeID string) error
	Following(ctx context.Context, userID string) ([]domain.FollowerData, error)
	Followers(ctx context.Context, userID string) ([]domain.FollowerData, error)
	Block(ctx context.Context, actor domain.Actor, targetID string) error
	Unblock(ctx context.Context, actor domain.Actor, targetID string) error
}

// NotificationService reads and updates a user's notifications.
type NotificationService interface {
	List(ctx context.Context, actor domain.Actor) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, actor domain.Actor, notificationID string) error
	Delete(ctx context.Context, actor domain.Actor, notificationID string) error
}

// CreatePostRequest is the body of a new post. Media are references to
// assets already uploaded elsewhere.
type CreatePostRequest struct {
	Post           string         `json:"post" validate:"max=5000"`
	BgColor        string         `json:"bgColor" validate:"max=32"`
	Feelings       string         `json:"feelings" validate:"max=64"`
	Privacy        domain.Privacy `json:"privacy" validate:"omitempty,oneof=Public Private Followers"`
	GifURL         string         `json:"gifUrl" validate:"omitempty,url"`
	ProfilePicture string         `json:"profilePicture" validate:"omitempty,url"`
	ImgVersion     string         `json:"imgVersion" validate:"max=64"`
	ImgID          string         `json:"imgId" validate:"max=255"`
	VideoVersion   string         `json:"videoVersion" validate:"max=64"`
	VideoID        string         `json:"videoId" validate:"max=255"`
}

// PostPage is one page of the feed.
type PostPage struct {
	Posts      []*domain.Post `json:"posts"`
	TotalPosts int64          `json:"totalPosts"`
}

// AddCommentRequest is the body of a new comment.
type AddCommentRequest struct {
	PostID         string `json:"postId" validate:"required,mongodb"`
	Comment        string `json:"comment" validate:"required,max=2000"`
	ProfilePicture string `json:"profilePicture" validate:"omitempty,url"`
}

// AddReactionRequest sets the caller's reaction on a post. PostReactions
// are the post's counts after the change, computed by the client.
type AddReactionRequest struct {
	PostID           string              `json:"postId" validate:"required,mongodb"`
	Type             domain.ReactionType `json:"type" validate:"required,oneof=like love happy wow sad angry"`
	PreviousReaction domain.ReactionType `json:"previousReaction" validate:"omitempty,oneof=like love happy wow sad angry"`
	PostReactions    domain.Reactions    `json:"postReactions" validate:"required"`
	ProfilePicture   string              `json:"profilePicture" validate:"omitempty,url"`
}

// RemoveReactionRequest drops the caller's reaction from a post.
type RemoveReactionRequest struct {
	PostID           string              `json:"postId" validate:"required,mongodb"`
	PreviousReaction domain.ReactionType `json:"previousReaction" validate:"required,oneof=like love happy wow sad angry"`
	PostReactions    domain.Reactions    `json:"postReactions" validate:"required"`
}

// ReactionList is a post's reactions with their number.
type ReactionList struct {
	Reactions []*domain.Reaction `json:"reactions"`
	Count     int                `json:"count"`
}
