package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

func TestPostQuery(t *testing.T) {
	assert.Equal(t, bson.M{}, postQuery(PostFilter{}))
	assert.Equal(t, bson.M{"userId": "u1"}, postQuery(PostFilter{UserID: "u1"}))

	q := postQuery(PostFilter{Media: domain.MediaVideo})
	assert.Equal(t, bson.M{"$ne": ""}, q["videoId"])
	assert.Equal(t, bson.M{"$ne": ""}, q["videoVersion"])

	q = postQuery(PostFilter{Media: domain.MediaImage})
	assert.Len(t, q["$or"], 2)
}

func TestCommentNamesDedupes(t *testing.T) {
	got := commentNames([]string{"bob", "carol", "bob", "dave"})
	assert.Equal(t, 4, got.Count)
	assert.Equal(t, []string{"bob", "carol", "dave"}, got.Names)
}

func TestReactionUpsertNeverSetsExistingID(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	filter, update := reactionUpsert(&domain.Reaction{
		ID: "r2", PostID: "p1", Username: "bob", Type: domain.ReactionLove, AvatarColor: "#00f", CreatedAt: at,
	})

	assert.Equal(t, bson.M{"postId": "p1", "username": "bob"}, filter)
	set := update["$set"].(bson.M)
	assert.NotContains(t, set, "_id")
	assert.Equal(t, domain.ReactionLove, set["type"])
	assert.Equal(t, at, set["createdAt"])
	assert.Equal(t, bson.M{"_id": "r2"}, update["$setOnInsert"])
}

// newMongoTestStore connects to the replica set named by
// INTERACTION_TEST_MONGO_URI and returns a store on a fresh database.
func newMongoTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("INTERACTION_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("INTERACTION_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := ConnectMongo(ctx, MongoConfig{URI: uri})
	require.NoError(t, err)

	name := "interactions_" + strings.ToLower(strings.ReplaceAll(t.Name(), "/", "_"))
	db := client.Database(name)
	require.NoError(t, db.Drop(ctx))
	require.NoError(t, EnsureMongoIndexes(ctx, db))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	s := NewMongoStore(db)
	for i, id := range []string{"alice", "bob"} {
		require.NoError(t, s.Users.Save(ctx, &domain.User{ID: id, UID: int64(i + 1), Username: id}))
	}
	return s
}

func TestMongoReactionChangeKeepsOneDocument(t *testing.T) {
	s := newMongoTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Posts.Create(ctx, &domain.Post{ID: "p1", UserID: "alice", CreatedAt: time.Now()}))

	require.NoError(t, s.Reactions.Replace(ctx, &domain.Reaction{ID: "r1", PostID: "p1", Username: "bob", Type: domain.ReactionLike, CreatedAt: time.Now()}, ""))
	require.NoError(t, s.Reactions.Replace(ctx, &domain.Reaction{ID: "r2", PostID: "p1", Username: "bob", Type: domain.ReactionLove, CreatedAt: time.Now()}, domain.ReactionLike))

	list, n, err := s.Reactions.ListByPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "r1", list[0].ID)
	assert.Equal(t, domain.ReactionLove, list[0].Type)

	post, err := s.Posts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, post.Reactions[domain.ReactionLike])
	assert.Equal(t, 1, post.Reactions[domain.ReactionLove])

	require.NoError(t, s.Reactions.Remove(ctx, "p1", "bob", domain.ReactionLove))
	require.NoError(t, s.Reactions.Remove(ctx, "p1", "bob", domain.ReactionLove))
	post, err = s.Posts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, post.Reactions[domain.ReactionLove])
}

func TestMongoReplayedWritesKeepCounters(t *testing.T) {
	s := newMongoTestStore(t)
	ctx := context.Background()
	post := &domain.Post{ID: "p1", UserID: "alice", CreatedAt: time.Now()}
	comment := &domain.Comment{ID: "c1", PostID: "p1", Username: "bob", CreatedAt: time.Now()}
	edge := &domain.Follower{ID: "f1", FollowerID: "bob", FolloweeID: "alice", CreatedAt: time.Now()}

	for i := 0; i < 2; i++ {
		require.NoError(t, s.Posts.Create(ctx, post))
		require.NoError(t, s.Comments.Create(ctx, comment))
		require.NoError(t, s.Followers.Create(ctx, edge))
	}

	alice, err := s.Users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.PostsCount)
	assert.Equal(t, 1, alice.FollowersCount)
	got, err := s.Posts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentsCount)

	for i := 0; i < 2; i++ {
		require.NoError(t, s.Followers.Delete(ctx, "bob", "alice"))
		require.NoError(t, s.Posts.Delete(ctx, "p1", "alice"))
	}
	alice, err = s.Users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, alice.PostsCount)
	assert.Equal(t, 0, alice.FollowersCount)
	bob, err := s.Users.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, bob.FollowingCount)
}
