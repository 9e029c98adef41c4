package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

func TestPostSaveAndGetRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	posts := NewPostCache(store)

	post := samplePost("p1", "u1")
	require.NoError(t, posts.Save(ctx, post, "u1", 1001))

	got, err := posts.GetRange(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.True(t, post.CreatedAt.Equal(got[0].CreatedAt))
	got[0].CreatedAt = post.CreatedAt
	assert.Equal(t, post, got[0])
	assert.Equal(t, 0, got[0].CommentsCount)
	assert.Zero(t, got[0].Reactions.Total())

	score, err := mr.ZScore(postsFeedKey, "p1")
	require.NoError(t, err)
	assert.Equal(t, float64(1001), score)
	assert.Equal(t, "1", mr.HGet(userKey("u1"), domain.FieldPostsCount))
}

func TestPostSaveIncrementsPostsCount(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	posts := NewPostCache(store)

	mr.HSet(userKey("u1"), domain.FieldPostsCount, "4")
	require.NoError(t, posts.Save(ctx, samplePost("p1", "u1"), "u1", 7))
	require.NoError(t, posts.Save(ctx, samplePost("p2", "u1"), "u1", 7))

	assert.Equal(t, "6", mr.HGet(userKey("u1"), domain.FieldPostsCount))

	total, err := posts.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestPostGetWithMedia(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	posts := NewPostCache(store)

	text := samplePost("p1", "u1")
	image := samplePost("p2", "u1")
	image.ImgID, image.ImgVersion = "img", "1"
	gif := samplePost("p3", "u1")
	gif.GifURL = "https://g/x.gif"
	video := samplePost("p4", "u1")
	video.VideoID, video.VideoVersion = "vid", "2"
	for _, p := range []*domain.Post{text, image, gif, video} {
		require.NoError(t, posts.Save(ctx, p, "u1", 1))
	}

	images, err := posts.GetWithMedia(ctx, domain.MediaImage, 0, -1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p2", "p3"}, ids(images))

	videos, err := posts.GetWithMedia(ctx, domain.MediaVideo, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p4"}, ids(videos))

	_, err = posts.GetWithMedia(ctx, "audio", 0, -1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPostGetUserPosts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	posts := NewPostCache(store)

	require.NoError(t, posts.Save(ctx, samplePost("a1", "alice"), "alice", 1))
	require.NoError(t, posts.Save(ctx, samplePost("b1", "bob"), "bob", 2))
	require.NoError(t, posts.Save(ctx, samplePost("a2", "alice"), "alice", 1))

	got, err := posts.GetUserPosts(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "a2"}, ids(got))
}

func TestPostUpdatePreservesOtherFields(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	posts := NewPostCache(store)
	require.NoError(t, posts.Save(ctx, samplePost("p1", "u1"), "u1", 1))

	text := "edited"
	got, err := posts.Update(ctx, "p1", domain.PostUpdate{Post: &text})
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Post)
	assert.Equal(t, "#fff", got.BgColor)
	assert.Equal(t, domain.PrivacyPublic, got.Privacy)

	_, err = posts.Update(ctx, "missing", domain.PostUpdate{Post: &text})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostDelete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	posts := NewPostCache(store)
	require.NoError(t, posts.Save(ctx, samplePost("p1", "u1"), "u1", 1))

	require.NoError(t, posts.Delete(ctx, "p1", "u1"))

	assert.False(t, mr.Exists(postKey("p1")))
	assert.Equal(t, "0", mr.HGet(userKey("u1"), domain.FieldPostsCount))
	got, err := posts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)

	hot, err := store.HotUsers(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"u1": 2}, hot)
}

func ids(posts []*domain.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
