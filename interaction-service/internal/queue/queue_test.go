package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
)

func registerAll(t *testing.T, r *Registry, skip JobType) {
	t.Helper()
	for _, jt := range JobTypes {
		if jt == skip {
			continue
		}
		p, _ := NewPayload(jt)
		var err error
		switch p.(type) {
		case *PostJob:
			err = Register(r, jt, func(context.Context, *PostJob) error { return nil })
		case *CommentJob:
			err = Register(r, jt, func(context.Context, *CommentJob) error { return nil })
		case *ReactionJob:
			err = Register(r, jt, func(context.Context, *ReactionJob) error { return nil })
		case *FollowerJob:
			err = Register(r, jt, func(context.Context, *FollowerJob) error { return nil })
		case *BlockedUserJob:
			err = Register(r, jt, func(context.Context, *BlockedUserJob) error { return nil })
		case *NotificationJob:
			err = Register(r, jt, func(context.Context, *NotificationJob) error { return nil })
		case *EmailJob:
			err = Register(r, jt, func(context.Context, *EmailJob) error { return nil })
		}
		require.NoError(t, err)
	}
}

func TestEveryJobTypeHasAPayload(t *testing.T) {
	assert.Len(t, JobTypes, 15)
	for _, jt := range JobTypes {
		_, ok := NewPayload(jt)
		assert.True(t, ok, jt)
	}
	_, ok := NewPayload("sendSMS")
	assert.False(t, ok)
}

func TestRegistryValidate(t *testing.T) {
	r := NewRegistry()
	registerAll(t, r, FollowersEmail)
	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "followersEmail")

	require.NoError(t, Register(r, FollowersEmail, func(context.Context, *EmailJob) error { return nil }))
	assert.NoError(t, r.Validate())
}

func TestRegisterRejectsWrongVariant(t *testing.T) {
	r := NewRegistry()
	err := Register(r, AddCommentToDB, func(context.Context, *PostJob) error { return nil })
	assert.Error(t, err)

	require.NoError(t, Register(r, AddCommentToDB, func(context.Context, *CommentJob) error { return nil }))
	assert.Error(t, Register(r, AddCommentToDB, func(context.Context, *CommentJob) error { return nil }))
}

func TestDispatchDecodesPayload(t *testing.T) {
	r := NewRegistry()
	var got *CommentJob
	require.NoError(t, Register(r, AddCommentToDB, func(_ context.Context, p *CommentJob) error {
		got = p
		return nil
	}))

	require.NoError(t, r.Dispatch(context.Background(), AddCommentToDB, []byte(`{"postId":"p1","userTo":"u2","userFrom":"u1"}`)))
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.PostID)
	assert.Equal(t, "u2", got.UserTo)

	err := r.Dispatch(context.Background(), AddCommentToDB, []byte(`{`))
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = r.Dispatch(context.Background(), AddPostToDB, []byte(`{}`))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestCheckPayload(t *testing.T) {
	assert.NoError(t, checkPayload(AddFollowerToDB, &FollowerJob{}))
	assert.Error(t, checkPayload(AddFollowerToDB, &BlockedUserJob{}))
	assert.Error(t, checkPayload("nope", &EmailJob{}))
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{TypeConcurrency: map[string]int{"commentsemail": 1}}.withDefaults()
	assert.Equal(t, 2, cfg.MaxRetry)
	assert.Equal(t, 5*time.Second, cfg.RetryDelay)
	assert.Equal(t, 5, cfg.concurrency(AddPostToDB))
	assert.Equal(t, 1, cfg.concurrency(CommentsEmail))
	assert.Equal(t, 5*time.Second, fixedDelay(cfg.RetryDelay)(3, nil, nil))
}

func TestNewServerRequiresCompleteRegistry(t *testing.T) {
	_, err := NewServer(asynq.RedisClientOpt{Addr: "127.0.0.1:0"}, NewRegistry(), Config{})
	assert.Error(t, err)

	r := NewRegistry()
	registerAll(t, r, "")
	_, err = NewServer(asynq.RedisClientOpt{Addr: "127.0.0.1:0"}, r, Config{})
	assert.NoError(t, err)
}

func TestEnqueueUsesTypeQueueAndPolicy(t *testing.T) {
	mr := miniredis.RunT(t)
	opt := asynq.RedisClientOpt{Addr: mr.Addr()}
	client := NewClient(opt, Config{})
	t.Cleanup(func() { client.Close() })

	job := &FollowerJob{KeyOne: "u1", KeyTwo: "u2", FollowerDocumentID: "f1"}
	require.NoError(t, client.Enqueue(context.Background(), AddFollowerToDB, job))
	assert.Error(t, client.Enqueue(context.Background(), AddFollowerToDB, &PostJob{}))

	insp := asynq.NewInspector(opt)
	t.Cleanup(func() { insp.Close() })
	tasks, err := insp.ListPendingTasks(string(AddFollowerToDB))
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	task := tasks[0]
	assert.Equal(t, string(AddFollowerToDB), task.Queue)
	assert.Equal(t, string(AddFollowerToDB), task.Type)
	assert.Equal(t, 2, task.MaxRetry)
	assert.Equal(t, time.Duration(0), task.Retention)

	var got FollowerJob
	require.NoError(t, json.Unmarshal(task.Payload, &got))
	assert.Equal(t, *job, got)
}

func TestLogFailureAbandonsOnLastAttempt(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retried   int
		abandoned bool
		message   string
	}{
		{"first attempt", errors.New("db down"), 0, false, "job failed, will retry"},
		{"second attempt", errors.New("db down"), 1, false, "job failed, will retry"},
		{"third attempt", errors.New("db down"), 2, true, "job abandoned"},
		{"unusable payload", Permanent(errors.New("no post")), 0, true, "job abandoned"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := pkglog.WithLogger(context.Background(), pkglog.New(pkglog.Config{Output: &buf}))

			assert.Equal(t, tc.abandoned, logFailure(ctx, string(AddPostToDB), tc.err, tc.retried, 2))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tc.message, entry["message"])
			assert.Equal(t, string(AddPostToDB), entry[pkglog.FieldJobType])
			assert.Equal(t, float64(tc.retried+1), entry[pkglog.FieldAttempt])
		})
	}
}
