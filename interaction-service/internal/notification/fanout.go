// Package notification tells a user that someone interacted with them.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/repository"
	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
)

// Trigger describes the interaction being notified.
type Trigger struct {
	Kind           domain.NotificationType
	NotificationID string
	UserTo         string
	UserFrom       string
	// Username is the actor's name as shown in the message.
	Username      string
	EntityID      string
	CreatedItemID string
	Comment       string
	Reaction      domain.ReactionType
	// Post is the post the interaction targets, nil for follows.
	Post *domain.Post
}

type kindText struct {
	message string
	header  string
	subject string
	job     queue.JobType
}

var texts = map[domain.NotificationType]kindText{
	domain.NotificationComment: {
		message: "%s commented on your post.",
		header:  "Comment Notification",
		subject: "Post notification",
		job:     queue.CommentsEmail,
	},
	domain.NotificationReaction: {
		message: "%s reacted to your post.",
		header:  "Post Reaction Notification",
		subject: "Post reaction notification",
		job:     queue.ReactionsEmail,
	},
	domain.NotificationFollow: {
		message: "%s is now following you.",
		header:  "Follower Notification",
		subject: "Follower notification",
		job:     queue.FollowersEmail,
	},
}

// UserReader reads cached profiles. A miss is (nil, nil).
type UserReader interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Fanout inserts notifications and sends the matching real-time event and
// email.
type Fanout struct {
	cache         UserReader
	users         repository.UserRepository
	notifications repository.NotificationRepository
	emitter       realtime.Emitter
	enqueuer      queue.Enqueuer
	now           func() time.Time
}

// NewFanout creates a fan-out.
func NewFanout(cache UserReader, store *repository.Store, emitter realtime.Emitter, enqueuer queue.Enqueuer) *Fanout {
	return &Fanout{
		cache:         cache,
		users:         store.Users,
		notifications: store.Notifications,
		emitter:       emitter,
		enqueuer:      enqueuer,
		now:           time.Now,
	}
}

// Notify notifies t.UserTo unless the actor is the recipient or the
// recipient turned this kind off. It reports whether a notification was
// stored. Only the store write fails the call; the email is best effort.
func (f *Fanout) Notify(ctx context.Context, t Trigger) (bool, error) {
	text, ok := texts[t.Kind]
	if !ok {
		return false, fmt.Errorf("no notification text for kind %q", t.Kind)
	}
	if t.UserTo == "" || t.UserTo == t.UserFrom {
		return false, nil
	}

	l := pkglog.Ctx(ctx).With().Str(pkglog.FieldUserTo, t.UserTo).Str("kind", string(t.Kind)).Logger()

	recipient, err := f.recipient(ctx, t.UserTo)
	if err != nil {
		return false, err
	}
	if recipient == nil {
		l.Warn().Msg("notification recipient not found")
		return false, nil
	}
	if !recipient.Notifications.Enabled(t.Kind) {
		return false, nil
	}

	message := fmt.Sprintf(text.message, t.Username)
	n := &domain.Notification{
		ID:               t.NotificationID,
		UserTo:           t.UserTo,
		UserFrom:         t.UserFrom,
		Message:          message,
		NotificationType: t.Kind,
		EntityID:         t.EntityID,
		CreatedItemID:    t.CreatedItemID,
		Comment:          t.Comment,
		Reaction:         string(t.Reaction),
		CreatedAt:        f.now(),
	}
	if t.Post != nil {
		n.Post = t.Post.Post
		n.ImgID = t.Post.ImgID
		n.ImgVersion = t.Post.ImgVersion
		n.GifURL = t.Post.GifURL
	}

	if err := f.notifications.Insert(ctx, n); err != nil {
		return false, domain.PersistenceError("insert notification", err)
	}
	list, err := f.notifications.ListByUser(ctx, t.UserTo)
	if err != nil {
		return false, domain.PersistenceError("list notifications", err)
	}
	f.emitter.Emit(ctx, realtime.EventInsertNotification, list, t.UserTo)

	if recipient.Email == "" {
		return true, nil
	}
	html, err := Render(TemplateData{Username: recipient.Username, Message: message, Header: text.header})
	if err != nil {
		l.Error().Err(err).Msg("failed to render notification email")
		return true, nil
	}
	job := &queue.EmailJob{ReceiverEmail: recipient.Email, Template: html, Subject: text.subject}
	if err := f.enqueuer.Enqueue(ctx, text.job, job); err != nil {
		l.Error().Err(err).Str(pkglog.FieldJobType, string(text.job)).Msg("failed to enqueue notification email")
	}
	return true, nil
}

// recipient reads the profile from the cache, then the store. A profile
// found nowhere is (nil, nil).
func (f *Fanout) recipient(ctx context.Context, userID string) (*domain.User, error) {
	user, err := f.cache.Get(ctx, userID)
	if err == nil && user != nil {
		return user, nil
	}
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str(pkglog.FieldUserID, userID).Msg("profile cache read failed, using store")
	}

	user, err = f.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.PersistenceError("get recipient", err)
	}
	return user, nil
}
