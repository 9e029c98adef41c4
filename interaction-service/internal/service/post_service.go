package service

import (
	"context"
	"time"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/repository"
	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
)

// postService implements PostService.
type postService struct {
	Deps
	now func() time.Time
}

// NewPostService creates a new PostService instance.
func NewPostService(deps Deps) PostService {
	return &postService{Deps: deps, now: time.Now}
}

func (s *postService) Create(ctx context.Context, actor domain.Actor, req *CreatePostRequest) (*domain.Post, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	privacy := req.Privacy
	if privacy == "" {
		privacy = domain.PrivacyPublic
	}
	post := &domain.Post{
		ID:             idgen.New(),
		UserID:         actor.UserID,
		Username:       actor.Username,
		Email:          actor.Email,
		AvatarColor:    actor.AvatarColor,
		ProfilePicture: req.ProfilePicture,
		Post:           req.Post,
		BgColor:        req.BgColor,
		Feelings:       req.Feelings,
		Privacy:        privacy,
		GifURL:         req.GifURL,
		CommentsCount:  0,
		ImgVersion:     req.ImgVersion,
		ImgID:          req.ImgID,
		VideoVersion:   req.VideoVersion,
		VideoID:        req.VideoID,
		Reactions:      domain.NewReactions(),
		CreatedAt:      s.now().UTC(),
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}

	s.Emitter.Emit(ctx, realtime.EventAddPost, post, "")
	if err := s.Caches.Posts.Save(ctx, post, actor.UserID, actor.UID); err != nil {
		return nil, err
	}
	enqueue(ctx, s.Queue, queue.AddPostToDB, &queue.PostJob{PostID: post.ID, UserID: actor.UserID, Post: post})

	l := pkglog.Ctx(ctx)
	l.Debug().Str(pkglog.FieldPostID, post.ID).Msg("post created")
	return post, nil
}

// Update edits a cached post. Posts that are no longer cached cannot be
// edited.
func (s *postService) Update(ctx context.Context, actor domain.Actor, postID string, update *domain.PostUpdate) (*domain.Post, error) {
	if err := requirePostID("postId", postID); err != nil {
		return nil, err
	}
	current, err := s.Caches.Posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.NotFoundError("post", postID)
	}
	if current.UserID != actor.UserID {
		return nil, domain.ValidationError("post %s belongs to another user", postID)
	}
	candidate := *current
	update.Apply(&candidate)
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.Caches.Posts.Update(ctx, postID, *update)
	if err != nil {
		return nil, err
	}
	s.Emitter.Emit(ctx, realtime.EventUpdatePost, updated, "")
	enqueue(ctx, s.Queue, queue.UpdatePostInDB, &queue.PostJob{PostID: postID, UserID: actor.UserID, Update: update})
	return updated, nil
}

func (s *postService) Delete(ctx context.Context, actor domain.Actor, postID string) error {
	if err := requirePostID("postId", postID); err != nil {
		return err
	}
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actor.UserID {
		return domain.ValidationError("post %s belongs to another user", postID)
	}

	s.Emitter.Emit(ctx, realtime.EventDeletePost, postID, "")
	if err := s.Caches.Posts.Delete(ctx, postID, actor.UserID); err != nil {
		return err
	}
	enqueue(ctx, s.Queue, queue.DeletePostFromDB, &queue.PostJob{PostID: postID, UserID: actor.UserID})
	return nil
}

func (s *postService) Get(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := s.Caches.Posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post != nil {
		return post, nil
	}
	return s.Store.Posts.Get(ctx, postID)
}

func (s *postService) List(ctx context.Context, page int) (*PostPage, error) {
	skip, start, end, err := pageBounds(page)
	if err != nil {
		return nil, err
	}
	posts, err := s.Caches.Posts.GetRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(posts) > 0 {
		total, err := s.Caches.Posts.Total(ctx)
		if err != nil {
			return nil, err
		}
		return &PostPage{Posts: posts, TotalPosts: total}, nil
	}

	posts, err = s.Store.Posts.List(ctx, repository.PostFilter{}, skip, PageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.Store.Posts.Count(ctx, repository.PostFilter{})
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, TotalPosts: total}, nil
}

func (s *postService) ListWithMedia(ctx context.Context, kind domain.MediaKind, page int) ([]*domain.Post, error) {
	skip, start, end, err := pageBounds(page)
	if err != nil {
		return nil, err
	}
	posts, err := s.Caches.Posts.GetWithMedia(ctx, kind, start, end)
	if err != nil {
		return nil, err
	}
	if len(posts) > 0 {
		return posts, nil
	}
	return s.Store.Posts.List(ctx, repository.PostFilter{Media: kind}, skip, PageSize)
}

func (s *postService) ListByUser(ctx context.Context, userID string, uID int64) ([]*domain.Post, error) {
	if err := requireUserID("userId", userID); err != nil {
		return nil, err
	}
	posts, err := s.Caches.Posts.GetUserPosts(ctx, uID)
	if err != nil {
		return nil, err
	}
	if len(posts) > 0 {
		return posts, nil
	}
	return s.Store.Posts.List(ctx, repository.PostFilter{UserID: userID}, 0, 0)
}
