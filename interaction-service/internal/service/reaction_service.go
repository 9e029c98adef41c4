package service

import (
	"context"
	"time"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime"
)

// reactionService implements ReactionService.
type reactionService struct {
	Deps
	now func() time.Time
}

// NewReactionService creates a new ReactionService instance.
func NewReactionService(deps Deps) ReactionService {
	return &reactionService{Deps: deps, now: time.Now}
}

func (s *reactionService) Add(ctx context.Context, actor domain.Actor, req *AddReactionRequest) (*domain.Reaction, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := req.PostReactions.Validate(); err != nil {
		return nil, err
	}
	userTo, err := s.postAuthor(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	reaction := &domain.Reaction{
		ID:             idgen.New(),
		PostID:         req.PostID,
		Type:           req.Type,
		Username:       actor.Username,
		AvatarColor:    actor.AvatarColor,
		ProfilePicture: req.ProfilePicture,
		CreatedAt:      s.now().UTC(),
	}

	s.Emitter.Emit(ctx, realtime.EventAddReaction, reaction, "")
	if err := s.Caches.Reactions.Save(ctx, req.PostID, reaction, req.PostReactions, req.Type, req.PreviousReaction); err != nil {
		return nil, err
	}
	enqueue(ctx, s.Queue, queue.AddReactionToDB, &queue.ReactionJob{
		Reaction:       reaction,
		PostID:         req.PostID,
		Username:       actor.Username,
		Previous:       req.PreviousReaction,
		UserTo:         userTo,
		UserFrom:       actor.UserID,
		NotificationID: idgen.New(),
	})
	return reaction, nil
}

func (s *reactionService) Remove(ctx context.Context, actor domain.Actor, req *RemoveReactionRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if err := req.PostReactions.Validate(); err != nil {
		return err
	}

	s.Emitter.Emit(ctx, realtime.EventRemoveReaction, map[string]interface{}{
		"postId":    req.PostID,
		"username":  actor.Username,
		"reactions": req.PostReactions,
	}, "")
	if err := s.Caches.Reactions.Remove(ctx, req.PostID, actor.Username, req.PostReactions); err != nil {
		return err
	}
	enqueue(ctx, s.Queue, queue.RemoveReactionFromDB, &queue.ReactionJob{
		PostID:   req.PostID,
		Username: actor.Username,
		Previous: req.PreviousReaction,
	})
	return nil
}

func (s *reactionService) List(ctx context.Context, postID string) (*ReactionList, error) {
	if err := requirePostID("postId", postID); err != nil {
		return nil, err
	}
	reactions, count, err := s.Caches.Reactions.GetAll(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(reactions) == 0 {
		if reactions, count, err = s.Store.Reactions.ListByPost(ctx, postID); err != nil {
			return nil, err
		}
	}
	return &ReactionList{Reactions: reactions, Count: count}, nil
}

func (s *reactionService) ByUsername(ctx context.Context, postID, username string) (*domain.Reaction, error) {
	if err := requirePostID("postId", postID); err != nil {
		return nil, err
	}
	if username == "" {
		return nil, domain.ValidationError("username is required")
	}
	reaction, err := s.Caches.Reactions.GetByUsername(ctx, postID, username)
	if err != nil {
		return nil, err
	}
	if reaction != nil {
		return reaction, nil
	}
	return s.Store.Reactions.GetByUsername(ctx, postID, username)
}

// AllByUsername lists every reaction a user left. Reactions are cached per
// post only, so this always reads the durable store.
func (s *reactionService) AllByUsername(ctx context.Context, username string) ([]*domain.Reaction, error) {
	if username == "" {
		return nil, domain.ValidationError("username is required")
	}
	return s.Store.Reactions.ListByUsername(ctx, username)
}
