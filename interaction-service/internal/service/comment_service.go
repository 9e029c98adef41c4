package service

import (
	"context"
	"time"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime"
)

// commentService implements CommentService.
type commentService struct {
	Deps
	now func() time.Time
}

// NewCommentService creates a new CommentService instance.
func NewCommentService(deps Deps) CommentService {
	return &commentService{Deps: deps, now: time.Now}
}

func (s *commentService) Add(ctx context.Context, actor domain.Actor, req *AddCommentRequest) (*domain.Comment, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	userTo, err := s.postAuthor(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:             idgen.New(),
		PostID:         req.PostID,
		Username:       actor.Username,
		AvatarColor:    actor.AvatarColor,
		ProfilePicture: req.ProfilePicture,
		Comment:        req.Comment,
		CreatedAt:      s.now().UTC(),
	}

	s.Emitter.Emit(ctx, realtime.EventAddComment, comment, "")
	if err := s.Caches.Comments.Save(ctx, req.PostID, comment); err != nil {
		return nil, err
	}
	enqueue(ctx, s.Queue, queue.AddCommentToDB, &queue.CommentJob{
		Comment:        comment,
		PostID:         req.PostID,
		UserTo:         userTo,
		UserFrom:       actor.UserID,
		Username:       actor.Username,
		NotificationID: idgen.New(),
	})
	return comment, nil
}

func (s *commentService) List(ctx context.Context, postID string) ([]*domain.Comment, error) {
	if err := requirePostID("postId", postID); err != nil {
		return nil, err
	}
	comments, err := s.Caches.Comments.GetAll(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(comments) > 0 {
		return comments, nil
	}
	return s.Store.Comments.ListByPost(ctx, postID)
}

func (s *commentService) Names(ctx context.Context, postID string) (*domain.CommentNames, error) {
	if err := requirePostID("postId", postID); err != nil {
		return nil, err
	}
	names, err := s.Caches.Comments.GetNames(ctx, postID)
	if err != nil {
		return nil, err
	}
	if names.Count > 0 {
		return names, nil
	}
	return s.Store.Comments.Names(ctx, postID)
}

func (s *commentService) Single(ctx context.Context, postID, commentID string) (*domain.Comment, error) {
	if err := requirePostID("postId", postID); err != nil {
		return nil, err
	}
	if err := requirePostID("commentId", commentID); err != nil {
		return nil, err
	}
	comment, err := s.Caches.Comments.GetOne(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if comment != nil {
		return comment, nil
	}
	return s.Store.Comments.Get(ctx, postID, commentID)
}
