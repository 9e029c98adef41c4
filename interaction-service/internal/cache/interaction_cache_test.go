package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

func TestCommentsEmptyPost(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	comments := NewCommentCache(store)

	all, err := comments.GetAll(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, all)

	names, err := comments.GetNames(ctx, "nope")
	require.NoError(t, err)
	assert.Equal(t, 0, names.Count)
	assert.Empty(t, names.Names)

	one, err := comments.GetOne(ctx, "nope", "c1")
	require.NoError(t, err)
	assert.Nil(t, one)
}

func TestCommentSaveBumpsCount(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, NewPostCache(store).Save(ctx, samplePost("p1", "u1"), "u1", 1))
	comments := NewCommentCache(store)

	for i, name := range []string{"bob", "carol", "bob"} {
		require.NoError(t, comments.Save(ctx, "p1", &domain.Comment{
			ID:        string(rune('a' + i)),
			PostID:    "p1",
			Username:  name,
			Comment:   "nice",
			CreatedAt: time.Now(),
		}))
	}

	assert.Equal(t, "3", mr.HGet(postKey("p1"), "commentsCount"))

	all, err := comments.GetAll(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)

	names, err := comments.GetNames(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, names.Count)
	assert.Equal(t, []string{"bob", "carol"}, names.Names)

	one, err := comments.GetOne(ctx, "p1", "b")
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, "carol", one.Username)
}

func TestReactionRepeatedAddKeepsOneEntry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, NewPostCache(store).Save(ctx, samplePost("p1", "u1"), "u1", 1))
	reactions := NewReactionCache(store)

	r := &domain.Reaction{ID: "r1", PostID: "p1", Username: "bob", Type: domain.ReactionLike}
	counts := domain.NewReactions()
	counts[domain.ReactionLike] = 1
	require.NoError(t, reactions.Save(ctx, "p1", r, counts, domain.ReactionLike, ""))

	r2 := &domain.Reaction{ID: "r2", PostID: "p1", Username: "bob", Type: domain.ReactionLove}
	counts = domain.NewReactions()
	counts[domain.ReactionLove] = 1
	require.NoError(t, reactions.Save(ctx, "p1", r2, counts, domain.ReactionLove, domain.ReactionLike))

	all, n, err := reactions.GetAll(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, all, 1)
	assert.Equal(t, domain.ReactionLove, all[0].Type)

	var stored domain.Reactions
	require.NoError(t, json.Unmarshal([]byte(mr.HGet(postKey("p1"), "reactions")), &stored))
	assert.Equal(t, 1, stored[domain.ReactionLove])
	assert.Equal(t, 0, stored[domain.ReactionLike])

	mine, err := reactions.GetByUsername(ctx, "p1", "bob")
	require.NoError(t, err)
	require.NotNil(t, mine)
	assert.Equal(t, "r2", mine.ID)
}

func TestReactionRemoveMissingRewritesCounts(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, NewPostCache(store).Save(ctx, samplePost("p1", "u1"), "u1", 1))
	reactions := NewReactionCache(store)

	counts := domain.NewReactions()
	counts[domain.ReactionWow] = 1
	require.NoError(t, reactions.Save(ctx, "p1", &domain.Reaction{ID: "r1", Username: "bob", Type: domain.ReactionWow}, counts, domain.ReactionWow, ""))

	counts = domain.NewReactions()
	counts[domain.ReactionWow] = 7
	require.NoError(t, reactions.Remove(ctx, "p1", "nobody", counts))

	_, n, err := reactions.GetAll(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var stored domain.Reactions
	require.NoError(t, json.Unmarshal([]byte(mr.HGet(postKey("p1"), "reactions")), &stored))
	assert.Equal(t, 7, stored[domain.ReactionWow])
}

func TestReactionRejectsUnknownKind(t *testing.T) {
	store, _ := newTestStore(t)
	err := NewReactionCache(store).Save(context.Background(), "p1", &domain.Reaction{Username: "bob"}, domain.NewReactions(), "meh", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFollowSetsAndCounters(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	users := NewUserCache(store)
	followers := NewFollowerCache(store)

	require.NoError(t, users.Save(ctx, &domain.User{ID: "alice", UID: 1, Username: "Alice"}))
	require.NoError(t, users.Save(ctx, &domain.User{ID: "bob", UID: 2, Username: "Bob", PostsCount: 3}))

	require.NoError(t, followers.AddToSet(ctx, FollowingKey("alice"), "bob"))
	require.NoError(t, followers.AddToSet(ctx, FollowersKey("bob"), "alice"))
	require.NoError(t, followers.AddToSet(ctx, FollowingKey("alice"), "bob"))
	require.NoError(t, followers.UpdateCount(ctx, "alice", domain.FieldFollowingCount, 1))
	require.NoError(t, followers.UpdateCount(ctx, "bob", domain.FieldFollowersCount, 1))

	members, err := followers.Members(ctx, FollowingKey("alice"))
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, members)

	ok, err := followers.IsMember(ctx, FollowersKey("bob"), "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	profiles, err := followers.GetProfiles(ctx, FollowingKey("alice"))
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Bob", profiles[0].Username)
	assert.Equal(t, 3, profiles[0].PostsCount)
	assert.Equal(t, 1, profiles[0].FollowersCount)

	require.NoError(t, followers.RemoveFromSet(ctx, FollowingKey("alice"), "bob"))
	require.NoError(t, followers.UpdateCount(ctx, "alice", domain.FieldFollowingCount, -1))
	members, err = followers.Members(ctx, FollowingKey("alice"))
	require.NoError(t, err)
	assert.Empty(t, members)
	assert.Equal(t, "0", mr.HGet(userKey("alice"), domain.FieldFollowingCount))

	hot, err := store.HotUsers(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, hot, 2)
	assert.Contains(t, hot, "alice")
	assert.Contains(t, hot, "bob")
}

func TestBlockFlags(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	users := NewUserCache(store)
	followers := NewFollowerCache(store)
	require.NoError(t, users.Save(ctx, &domain.User{ID: "alice"}))

	require.NoError(t, followers.UpdateBlockFlag(ctx, "alice", domain.FieldBlocked, "bob", domain.ActionBlock))
	require.NoError(t, followers.UpdateBlockFlag(ctx, "alice", domain.FieldBlocked, "bob", domain.ActionBlock))
	require.NoError(t, followers.UpdateBlockFlag(ctx, "alice", domain.FieldBlocked, "carol", domain.ActionBlock))

	u, err := users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, u.Blocked)
	assert.Empty(t, u.BlockedBy)

	require.NoError(t, followers.UpdateBlockFlag(ctx, "alice", domain.FieldBlocked, "bob", domain.ActionUnblock))
	u, err = users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, u.Blocked)

	err = followers.UpdateBlockFlag(ctx, "alice", "friends", "bob", domain.ActionBlock)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserCacheRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	users := NewUserCache(store)

	missing, err := users.Get(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)

	in := &domain.User{
		ID:            "alice",
		UID:           42,
		Username:      "Alice",
		Email:         "alice@example.com",
		Blocked:       []string{"x"},
		BlockedBy:     []string{},
		Notifications: domain.NotificationSettings{Comments: true},
	}
	require.NoError(t, users.Save(ctx, in))
	out, err := users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, users.RecountCounters(ctx, "ghost"))
	assert.False(t, mr.Exists(userKey("ghost")))
}

func TestRecountCountersFollowsSetsAndFeed(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	users := NewUserCache(store)
	followers := NewFollowerCache(store)
	posts := NewPostCache(store)

	require.NoError(t, users.Save(ctx, &domain.User{ID: "alice", UID: 1, FollowersCount: 9, FollowingCount: 9}))
	require.NoError(t, users.Save(ctx, &domain.User{ID: "bob", UID: 2}))
	require.NoError(t, posts.Save(ctx, samplePost("p1", "alice"), "alice", 1))
	require.NoError(t, posts.Save(ctx, samplePost("p2", "bob"), "bob", 2))
	require.NoError(t, followers.AddToSet(ctx, FollowersKey("alice"), "bob"))
	mr.HSet(userKey("alice"), domain.FieldPostsCount, "4")

	require.NoError(t, users.RecountCounters(ctx, "alice"))

	u, err := users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, u.PostsCount)
	assert.Equal(t, 1, u.FollowersCount)
	assert.Equal(t, 0, u.FollowingCount)
}

func TestRecountCountersSkipsPartialProfile(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	followers := NewFollowerCache(store)

	require.NoError(t, followers.UpdateCount(ctx, "carol", domain.FieldFollowersCount, 3))
	require.NoError(t, NewUserCache(store).RecountCounters(ctx, "carol"))
	assert.Equal(t, "3", mr.HGet(userKey("carol"), domain.FieldFollowersCount))
}

func TestClearHotUserKeepsUsersChangedSinceRead(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	followers := NewFollowerCache(store)

	require.NoError(t, followers.UpdateCount(ctx, "alice", domain.FieldFollowersCount, 1))
	require.NoError(t, followers.UpdateCount(ctx, "bob", domain.FieldFollowersCount, 1))
	hot, err := store.HotUsers(ctx, 10)
	require.NoError(t, err)

	require.NoError(t, followers.UpdateCount(ctx, "bob", domain.FieldFollowersCount, 1))

	removed, err := store.ClearHotUser(ctx, "alice", hot["alice"])
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = store.ClearHotUser(ctx, "bob", hot["bob"])
	require.NoError(t, err)
	assert.False(t, removed)

	hot, err = store.HotUsers(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"bob": 2}, hot)
}
