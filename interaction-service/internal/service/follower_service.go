package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/cache"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime"
	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
)

// followerService implements FollowerService.
type followerService struct {
	Deps
}

// NewFollowerService creates a new FollowerService instance.
func NewFollowerService(deps Deps) FollowerService {
	return &followerService{Deps: deps}
}

// BlockEvent is the payload of the block and unblock events.
type BlockEvent struct {
	BlockerID string `json:"blockerId"`
	BlockedID string `json:"blockedId"`
}

// Follow makes actor follow followeeID.
func (s *followerService) Follow(ctx context.Context, actor domain.Actor, followeeID string) error {
	if err := s.checkPair(actor.UserID, followeeID); err != nil {
		return err
	}
	already, err := s.Caches.Followers.IsMember(ctx, cache.FollowingKey(actor.UserID), followeeID)
	if err != nil {
		return err
	}
	if already {
		return domain.ValidationError("already following %s", followeeID)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Caches.Followers.AddToSet(gCtx, cache.FollowingKey(actor.UserID), followeeID)
	})
	g.Go(func() error {
		return s.Caches.Followers.AddToSet(gCtx, cache.FollowersKey(followeeID), actor.UserID)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	// Counters move after the sets so the hot mark lands after both writes.
	g, gCtx = errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Caches.Followers.UpdateCount(gCtx, followeeID, domain.FieldFollowersCount, 1)
	})
	g.Go(func() error {
		return s.Caches.Followers.UpdateCount(gCtx, actor.UserID, domain.FieldFollowingCount, 1)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	followee, err := s.Caches.Users.Get(ctx, followeeID)
	if err != nil {
		return err
	}
	data := domain.FollowerData{ID: followeeID}
	if followee != nil {
		data = followee.FollowerData()
	}
	s.Emitter.Emit(ctx, realtime.EventAddFollower, data, "")

	enqueue(ctx, s.Queue, queue.AddFollowerToDB, &queue.FollowerJob{
		KeyOne:             actor.UserID,
		KeyTwo:             followeeID,
		Username:           actor.Username,
		FollowerDocumentID: idgen.New(),
		NotificationID:     idgen.New(),
	})

	l := pkglog.Ctx(ctx)
	l.Debug().Str("follower_id", actor.UserID).Str("followee_id", followeeID).Msg("user followed")
	return nil
}

// Unfollow removes the edge from actor to followeeID.
func (s *followerService) Unfollow(ctx context.Context, actor domain.Actor, followeeID string) error {
	if err := s.checkPair(actor.UserID, followeeID); err != nil {
		return err
	}
	following, err := s.Caches.Followers.IsMember(ctx, cache.FollowingKey(actor.UserID), followeeID)
	if err != nil {
		return err
	}
	if !following {
		return domain.ValidationError("not following %s", followeeID)
	}

	s.Emitter.Emit(ctx, realtime.EventRemoveFollower, map[string]string{
		"followerId": actor.UserID,
		"followeeId": followeeID,
	}, "")

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Caches.Followers.RemoveFromSet(gCtx, cache.FollowingKey(actor.UserID), followeeID)
	})
	g.Go(func() error {
		return s.Caches.Followers.RemoveFromSet(gCtx, cache.FollowersKey(followeeID), actor.UserID)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	g, gCtx = errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Caches.Followers.UpdateCount(gCtx, followeeID, domain.FieldFollowersCount, -1)
	})
	g.Go(func() error {
		return s.Caches.Followers.UpdateCount(gCtx, actor.UserID, domain.FieldFollowingCount, -1)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	enqueue(ctx, s.Queue, queue.RemoveFollowerFromDB, &queue.FollowerJob{
		KeyOne:   actor.UserID,
		KeyTwo:   followeeID,
		Username: actor.Username,
	})
	return nil
}

func (s *followerService) Following(ctx context.Context, userID string) ([]domain.FollowerData, error) {
	if err := requireUserID("userId", userID); err != nil {
		return nil, err
	}
	users, err := s.Caches.Followers.GetProfiles(ctx, cache.FollowingKey(userID))
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		return users, nil
	}
	return s.Store.Followers.Following(ctx, userID)
}

func (s *followerService) Followers(ctx context.Context, userID string) ([]domain.FollowerData, error) {
	if err := requireUserID("userId", userID); err != nil {
		return nil, err
	}
	users, err := s.Caches.Followers.GetProfiles(ctx, cache.FollowersKey(userID))
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		return users, nil
	}
	return s.Store.Followers.Followers(ctx, userID)
}

func (s *followerService) Block(ctx context.Context, actor domain.Actor, targetID string) error {
	return s.setBlock(ctx, actor, targetID, domain.ActionBlock)
}

func (s *followerService) Unblock(ctx context.Context, actor domain.Actor, targetID string) error {
	return s.setBlock(ctx, actor, targetID, domain.ActionUnblock)
}

// setBlock updates actor's blocked list and the target's blockedBy list.
// Block state is a flag on both profiles, not a follow edge.
func (s *followerService) setBlock(ctx context.Context, actor domain.Actor, targetID string, action domain.BlockAction) error {
	if err := s.checkPair(actor.UserID, targetID); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Caches.Followers.UpdateBlockFlag(gCtx, actor.UserID, domain.FieldBlocked, targetID, action)
	})
	g.Go(func() error {
		return s.Caches.Followers.UpdateBlockFlag(gCtx, targetID, domain.FieldBlockedBy, actor.UserID, action)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	event, jobType := realtime.EventBlockedUser, queue.AddBlockedUserToDB
	if action == domain.ActionUnblock {
		event, jobType = realtime.EventUnblockedUser, queue.RemoveBlockedUserFromDB
	}
	s.Emitter.Emit(ctx, event, BlockEvent{BlockerID: actor.UserID, BlockedID: targetID}, targetID)
	enqueue(ctx, s.Queue, jobType, &queue.BlockedUserJob{KeyOne: actor.UserID, KeyTwo: targetID, Type: action})
	return nil
}

func (s *followerService) checkPair(actorID, targetID string) error {
	if err := requireUserID("userId", targetID); err != nil {
		return err
	}
	if actorID == targetID {
		return domain.ValidationError("cannot target yourself")
	}
	return nil
}
