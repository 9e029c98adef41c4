package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/notification"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue/queuetest"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime/realtimetest"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/repository"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/repository/repotest"
)

type sentMail struct{ to, subject, html string }

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.DeliveryError(to, m.err)
	}
	m.sent = append(m.sent, sentMail{to, subject, html})
	return nil
}

// storeUsers reads profiles straight from the store, standing in for the
// profile cache.
type storeUsers struct{ store *repository.Store }

func (s storeUsers) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.store.Users.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

type fixture struct {
	store    *repository.Store
	registry *queue.Registry
	jobs     *queuetest.Recorder
	emitter  *realtimetest.Recorder
	mailer   *fakeMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    repotest.NewStore(t),
		registry: queue.NewRegistry(),
		jobs:     &queuetest.Recorder{},
		emitter:  &realtimetest.Recorder{},
		mailer:   &fakeMailer{},
	}
	fanout := notification.NewFanout(storeUsers{f.store}, f.store, f.emitter, f.jobs)
	require.NoError(t, New(f.store, fanout, f.mailer).Register(f.registry))
	require.NoError(t, f.registry.Validate())

	repotest.SeedUsers(t, f.store,
		&domain.User{ID: "u1", UID: 1, Username: "Alice", Email: "alice@example.com", Notifications: domain.DefaultNotificationSettings()},
		&domain.User{ID: "u2", UID: 2, Username: "Bob", Email: "bob@example.com", Notifications: domain.DefaultNotificationSettings()},
	)
	return f
}

func (f *fixture) run(t *testing.T, jt queue.JobType, p queue.Payload) {
	t.Helper()
	require.NoError(t, f.jobs.Enqueue(context.Background(), jt, p))
	require.NoError(t, f.jobs.Drain(context.Background(), f.registry))
}

func (f *fixture) seedPost(t *testing.T) *domain.Post {
	t.Helper()
	post := &domain.Post{
		ID: "p1", UserID: "u2", Username: "Bob", Post: "hello", Privacy: domain.PrivacyPublic,
		Reactions: domain.NewReactions(), CreatedAt: time.Now().UTC(),
	}
	f.run(t, queue.AddPostToDB, &queue.PostJob{PostID: post.ID, UserID: post.UserID, Post: post})
	return post
}

func TestPostJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPost(t)

	u, err := f.store.Users.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, u.PostsCount)

	text := "edited"
	f.run(t, queue.UpdatePostInDB, &queue.PostJob{PostID: "p1", UserID: "u2", Update: &domain.PostUpdate{Post: &text}})
	got, err := f.store.Posts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Post)

	f.run(t, queue.DeletePostFromDB, &queue.PostJob{PostID: "p1", UserID: "u2"})
	_, err = f.store.Posts.Get(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	u, err = f.store.Users.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 0, u.PostsCount)
}

func TestAddCommentNotifiesPostAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPost(t)

	comment := &domain.Comment{ID: "c1", PostID: "p1", Username: "Alice", Comment: "nice", CreatedAt: time.Now().UTC()}
	f.run(t, queue.AddCommentToDB, &queue.CommentJob{
		Comment: comment, PostID: "p1", UserTo: "u2", UserFrom: "u1", Username: "Alice", NotificationID: "n1",
	})

	post, err := f.store.Posts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, post.CommentsCount)

	notes, err := f.store.Notifications.ListByUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Alice commented on your post.", notes[0].Message)
	assert.Equal(t, "c1", notes[0].CreatedItemID)
	assert.Equal(t, "hello", notes[0].Post)

	require.Len(t, f.emitter.Named(realtime.EventInsertNotification), 1)
	// the email job was drained too
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "bob@example.com", f.mailer.sent[0].to)
	assert.Equal(t, "Post notification", f.mailer.sent[0].subject)
}

func TestAddReactionReplacesAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPost(t)

	react := func(id string, kind, previous domain.ReactionType) {
		f.run(t, queue.AddReactionToDB, &queue.ReactionJob{
			Reaction:       &domain.Reaction{ID: id, PostID: "p1", Type: kind, Username: "Alice", CreatedAt: time.Now().UTC()},
			PostID:         "p1",
			Username:       "Alice",
			Previous:       previous,
			UserTo:         "u2",
			UserFrom:       "u1",
			NotificationID: "n-" + id,
		})
	}
	react("r1", domain.ReactionLike, "")
	react("r2", domain.ReactionLove, domain.ReactionLike)

	list, total, err := f.store.Reactions.ListByPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, domain.ReactionLove, list[0].Type)

	post, err := f.store.Posts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, post.Reactions[domain.ReactionLike])
	assert.Equal(t, 1, post.Reactions[domain.ReactionLove])

	notes, err := f.store.Notifications.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	f.run(t, queue.RemoveReactionFromDB, &queue.ReactionJob{PostID: "p1", Username: "Alice", Previous: domain.ReactionLove})
	_, total, err = f.store.Reactions.ListByPost(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestFollowJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.run(t, queue.AddFollowerToDB, &queue.FollowerJob{
		KeyOne: "u1", KeyTwo: "u2", Username: "Alice", FollowerDocumentID: "f1", NotificationID: "n1",
	})
	followers, err := f.store.Followers.Followers(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "u1", followers[0].ID)

	u2, err := f.store.Users.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, u2.FollowersCount)
	require.Len(t, f.mailer.sent, 1)
	assert.Contains(t, f.mailer.sent[0].html, "Alice is now following you.")

	f.run(t, queue.RemoveFollowerFromDB, &queue.FollowerJob{KeyOne: "u1", KeyTwo: "u2"})
	following, err := f.store.Followers.Following(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestBlockJobsUpdateBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.run(t, queue.AddBlockedUserToDB, &queue.BlockedUserJob{KeyOne: "u1", KeyTwo: "u2", Type: domain.ActionBlock})
	u1, err := f.store.Users.Get(ctx, "u1")
	require.NoError(t, err)
	u2, err := f.store.Users.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, u1.Blocked)
	assert.Equal(t, []string{"u1"}, u2.BlockedBy)

	f.run(t, queue.RemoveBlockedUserFromDB, &queue.BlockedUserJob{KeyOne: "u1", KeyTwo: "u2", Type: domain.ActionUnblock})
	u1, err = f.store.Users.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u1.Blocked)
}

func TestNotificationJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Notifications.Insert(ctx, &domain.Notification{
		ID: "n9", UserTo: "u2", UserFrom: "u1", Message: "hi", CreatedAt: time.Now().UTC(),
	}))
	f.run(t, queue.DeleteNotification, &queue.NotificationJob{NotificationID: "n9", UserTo: "u1"})
	f.run(t, queue.UpdateNotification, &queue.NotificationJob{NotificationID: "n9", UserTo: "u2"})
	notes, err := f.store.Notifications.ListByUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.True(t, notes[0].Read)

	f.run(t, queue.DeleteNotification, &queue.NotificationJob{NotificationID: "n9", UserTo: "u2"})
	notes, err = f.store.Notifications.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestEmailFailureIsRetried(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")

	require.NoError(t, f.jobs.Enqueue(context.Background(), queue.ReactionsEmail, &queue.EmailJob{ReceiverEmail: "bob@example.com"}))
	err := f.jobs.Drain(context.Background(), f.registry)
	assert.ErrorIs(t, err, domain.ErrNotificationDelivery)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestMissingPayloadIsNotRetried(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.jobs.Enqueue(context.Background(), queue.AddCommentToDB, &queue.CommentJob{PostID: "p1"}))
	err := f.jobs.Drain(context.Background(), f.registry)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
