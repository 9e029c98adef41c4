package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStoreWithClient(client), mr
}

func samplePost(id, userID string) *domain.Post {
	return &domain.Post{
		ID:             id,
		UserID:         userID,
		Username:       "Alice",
		Email:          "alice@example.com",
		AvatarColor:    "#f00",
		ProfilePicture: "https://img/alice.png",
		Post:           "hello world",
		BgColor:        "#fff",
		Feelings:       "happy",
		Privacy:        domain.PrivacyPublic,
		Reactions:      domain.NewReactions(),
		CreatedAt:      time.Date(2024, 5, 1, 10, 30, 0, 123456789, time.FixedZone("X", 3600)),
	}
}

func TestConnectIsIdempotent(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Connect(ctx))
	mr.Close()
	assert.NoError(t, store.Connect(ctx))
}

func TestConnectFailureIsCacheUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	err := NewStoreWithClient(client).Connect(context.Background())
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
}

func TestCommandFailureIsCacheUnavailable(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Connect(ctx))

	mr.SetError("READONLY")
	err := NewCommentCache(store).Save(ctx, "p1", &domain.Comment{ID: "c1"})
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
}
