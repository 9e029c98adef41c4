// Package worker holds the job handlers: durable writes and the
// notifications that follow them.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/mail"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/notification"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/repository"
	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
)

// Notifier sends an interaction notification.
type Notifier interface {
	Notify(ctx context.Context, t notification.Trigger) (bool, error)
}

// Handlers implements one handler per job type.
type Handlers struct {
	store    *repository.Store
	notifier Notifier
	mailer   mail.Sender
	now      func() time.Time
}

// New creates the handlers.
func New(store *repository.Store, notifier Notifier, mailer mail.Sender) *Handlers {
	return &Handlers{store: store, notifier: notifier, mailer: mailer, now: time.Now}
}

// Register binds every handler to its job type.
func (h *Handlers) Register(reg *queue.Registry) error {
	return errors.Join(
		queue.Register(reg, queue.AddPostToDB, h.addPost),
		queue.Register(reg, queue.UpdatePostInDB, h.updatePost),
		queue.Register(reg, queue.DeletePostFromDB, h.deletePost),
		queue.Register(reg, queue.AddCommentToDB, h.addComment),
		queue.Register(reg, queue.AddReactionToDB, h.addReaction),
		queue.Register(reg, queue.RemoveReactionFromDB, h.removeReaction),
		queue.Register(reg, queue.AddFollowerToDB, h.addFollower),
		queue.Register(reg, queue.RemoveFollowerFromDB, h.removeFollower),
		queue.Register(reg, queue.AddBlockedUserToDB, h.blockedUser(domain.ActionBlock)),
		queue.Register(reg, queue.RemoveBlockedUserFromDB, h.blockedUser(domain.ActionUnblock)),
		queue.Register(reg, queue.UpdateNotification, h.updateNotification),
		queue.Register(reg, queue.DeleteNotification, h.deleteNotification),
		queue.Register(reg, queue.CommentsEmail, h.sendEmail),
		queue.Register(reg, queue.ReactionsEmail, h.sendEmail),
		queue.Register(reg, queue.FollowersEmail, h.sendEmail),
	)
}

func (h *Handlers) addPost(ctx context.Context, job *queue.PostJob) error {
	if job.Post == nil {
		return queue.Permanent(domain.ValidationError("post job without post"))
	}
	if err := h.store.Posts.Create(ctx, job.Post); err != nil {
		return domain.PersistenceError("create post", err)
	}
	return nil
}

func (h *Handlers) updatePost(ctx context.Context, job *queue.PostJob) error {
	if job.Update == nil {
		return nil
	}
	if err := h.store.Posts.Update(ctx, job.PostID, *job.Update); err != nil {
		return domain.PersistenceError("update post", err)
	}
	return nil
}

func (h *Handlers) deletePost(ctx context.Context, job *queue.PostJob) error {
	if err := h.store.Posts.Delete(ctx, job.PostID, job.UserID); err != nil {
		return domain.PersistenceError("delete post", err)
	}
	return nil
}

func (h *Handlers) addComment(ctx context.Context, job *queue.CommentJob) error {
	if job.Comment == nil {
		return queue.Permanent(domain.ValidationError("comment job without comment"))
	}
	if err := h.store.Comments.Create(ctx, job.Comment); err != nil {
		return domain.PersistenceError("create comment", err)
	}

	post, ok, err := h.post(ctx, job.PostID)
	if err != nil || !ok {
		return err
	}
	_, err = h.notifier.Notify(ctx, notification.Trigger{
		Kind:           domain.NotificationComment,
		NotificationID: job.NotificationID,
		UserTo:         job.UserTo,
		UserFrom:       job.UserFrom,
		Username:       job.Username,
		EntityID:       job.PostID,
		CreatedItemID:  job.Comment.ID,
		Comment:        job.Comment.Comment,
		Post:           post,
	})
	return err
}

func (h *Handlers) addReaction(ctx context.Context, job *queue.ReactionJob) error {
	if job.Reaction == nil {
		return queue.Permanent(domain.ValidationError("reaction job without reaction"))
	}
	if err := h.store.Reactions.Replace(ctx, job.Reaction, job.Previous); err != nil {
		return domain.PersistenceError("replace reaction", err)
	}

	post, ok, err := h.post(ctx, job.PostID)
	if err != nil || !ok {
		return err
	}
	_, err = h.notifier.Notify(ctx, notification.Trigger{
		Kind:           domain.NotificationReaction,
		NotificationID: job.NotificationID,
		UserTo:         job.UserTo,
		UserFrom:       job.UserFrom,
		Username:       job.Username,
		EntityID:       job.PostID,
		CreatedItemID:  job.Reaction.ID,
		Reaction:       job.Reaction.Type,
		Post:           post,
	})
	return err
}

func (h *Handlers) removeReaction(ctx context.Context, job *queue.ReactionJob) error {
	if err := h.store.Reactions.Remove(ctx, job.PostID, job.Username, job.Previous); err != nil {
		return domain.PersistenceError("remove reaction", err)
	}
	return nil
}

func (h *Handlers) addFollower(ctx context.Context, job *queue.FollowerJob) error {
	edge := &domain.Follower{
		ID:         job.FollowerDocumentID,
		FollowerID: job.KeyOne,
		FolloweeID: job.KeyTwo,
		CreatedAt:  h.now(),
	}
	if err := h.store.Followers.Create(ctx, edge); err != nil {
		return domain.PersistenceError("create follower", err)
	}

	_, err := h.notifier.Notify(ctx, notification.Trigger{
		Kind:           domain.NotificationFollow,
		NotificationID: job.NotificationID,
		UserTo:         job.KeyTwo,
		UserFrom:       job.KeyOne,
		Username:       job.Username,
		EntityID:       job.KeyOne,
		CreatedItemID:  job.FollowerDocumentID,
	})
	return err
}

func (h *Handlers) removeFollower(ctx context.Context, job *queue.FollowerJob) error {
	if err := h.store.Followers.Delete(ctx, job.KeyOne, job.KeyTwo); err != nil {
		return domain.PersistenceError("delete follower", err)
	}
	return nil
}

// blockedUser updates both sides of a block: KeyOne's blocked list and
// KeyTwo's blockedBy list.
func (h *Handlers) blockedUser(action domain.BlockAction) func(context.Context, *queue.BlockedUserJob) error {
	return func(ctx context.Context, job *queue.BlockedUserJob) error {
		if job.Type != "" && job.Type != action {
			l := pkglog.Ctx(ctx)
			l.Warn().Str("type", string(job.Type)).Str("action", string(action)).Msg("block job type disagrees with its queue, using the queue")
		}

		apply := h.store.Users.AddBlocked
		if action == domain.ActionUnblock {
			apply = h.store.Users.RemoveBlocked
		}
		if err := apply(ctx, job.KeyOne, domain.FieldBlocked, job.KeyTwo); err != nil {
			return domain.PersistenceError("update blocked", err)
		}
		if err := apply(ctx, job.KeyTwo, domain.FieldBlockedBy, job.KeyOne); err != nil {
			return domain.PersistenceError("update blockedBy", err)
		}
		return nil
	}
}

func (h *Handlers) updateNotification(ctx context.Context, job *queue.NotificationJob) error {
	if err := h.store.Notifications.MarkRead(ctx, job.UserTo, job.NotificationID); err != nil {
		return domain.PersistenceError("mark notification read", err)
	}
	return nil
}

func (h *Handlers) deleteNotification(ctx context.Context, job *queue.NotificationJob) error {
	if err := h.store.Notifications.Delete(ctx, job.UserTo, job.NotificationID); err != nil {
		return domain.PersistenceError("delete notification", err)
	}
	return nil
}

func (h *Handlers) sendEmail(ctx context.Context, job *queue.EmailJob) error {
	return h.mailer.Send(ctx, job.ReceiverEmail, job.Subject, job.Template)
}

// post loads the snapshot a notification is built from. A post deleted
// before the job ran yields ok=false and no notification.
func (h *Handlers) post(ctx context.Context, postID string) (*domain.Post, bool, error) {
	post, err := h.store.Posts.Get(ctx, postID)
	if errors.Is(err, domain.ErrNotFound) {
		l := pkglog.Ctx(ctx)
		l.Warn().Str(pkglog.FieldPostID, postID).Msg("post gone, skipping notification")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.PersistenceError("get post", err)
	}
	return post, true, nil
}
