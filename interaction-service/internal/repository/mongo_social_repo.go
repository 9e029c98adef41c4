package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// MongoReactionRepository implements ReactionRepository on MongoDB.
type MongoReactionRepository struct {
	client    *mongo.Client
	reactions *mongo.Collection
	posts     *mongo.Collection
}

// Replace upserts the user's single reaction document for the post and
// shifts the post's counts in the same transaction.
func (r *MongoReactionRepository) Replace(ctx context.Context, reaction *domain.Reaction, previous domain.ReactionType) error {
	if !reaction.Type.Valid() || previous != "" && !previous.Valid() {
		return domain.ValidationError("unknown reaction kind")
	}
	filter, update := reactionUpsert(reaction)
	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if _, err := r.reactions.UpdateOne(sc, filter, update, options.Update().SetUpsert(true)); err != nil {
			return err
		}
		if previous == reaction.Type {
			return nil
		}
		inc := bson.M{"reactions." + string(reaction.Type): 1}
		if previous != "" {
			inc["reactions."+string(previous)] = -1
		}
		return incOne(sc, r.posts, reaction.PostID, inc)
	})
}

// reactionUpsert matches the user's reaction on the post. The existing
// document keeps its _id; a new one takes the reaction's.
func reactionUpsert(reaction *domain.Reaction) (filter, update bson.M) {
	filter = bson.M{"postId": reaction.PostID, "username": reaction.Username}
	update = bson.M{
		"$set": bson.M{
			"type":           reaction.Type,
			"avatarColor":    reaction.AvatarColor,
			"profilePicture": reaction.ProfilePicture,
			"createdAt":      reaction.CreatedAt,
		},
		"$setOnInsert": bson.M{"_id": reaction.ID},
	}
	return filter, update
}

func (r *MongoReactionRepository) Remove(ctx context.Context, postID, username string, previous domain.ReactionType) error {
	if previous != "" && !previous.Valid() {
		return domain.ValidationError("unknown reaction kind %q", previous)
	}
	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		res, err := r.reactions.DeleteOne(sc, bson.M{"postId": postID, "username": username})
		if err != nil || res.DeletedCount == 0 || previous == "" {
			return err
		}
		return incOne(sc, r.posts, postID, bson.M{"reactions." + string(previous): -1})
	})
}

func (r *MongoReactionRepository) ListByPost(ctx context.Context, postID string) ([]*domain.Reaction, int, error) {
	reactions, err := r.find(ctx, bson.M{"postId": postID})
	if err != nil {
		return nil, 0, err
	}
	return reactions, len(reactions), nil
}

func (r *MongoReactionRepository) GetByUsername(ctx context.Context, postID, username string) (*domain.Reaction, error) {
	var reaction domain.Reaction
	err := r.reactions.FindOne(ctx, bson.M{"postId": postID, "username": username}).Decode(&reaction)
	if err != nil {
		if isNoDocuments(err) {
			return nil, domain.NotFoundError("reaction", postID+"/"+username)
		}
		return nil, err
	}
	return &reaction, nil
}

func (r *MongoReactionRepository) ListByUsername(ctx context.Context, username string) ([]*domain.Reaction, error) {
	return r.find(ctx, bson.M{"username": username})
}

func (r *MongoReactionRepository) find(ctx context.Context, filter bson.M) ([]*domain.Reaction, error) {
	cur, err := r.reactions.Find(ctx, filter, options.Find().SetSort(newestFirst()))
	if err != nil {
		return nil, err
	}
	reactions := []*domain.Reaction{}
	if err := cur.All(ctx, &reactions); err != nil {
		return nil, err
	}
	return reactions, nil
}

var _ ReactionRepository = (*MongoReactionRepository)(nil)

// MongoFollowerRepository implements FollowerRepository on MongoDB.
type MongoFollowerRepository struct {
	client    *mongo.Client
	followers *mongo.Collection
	users     *mongo.Collection
}

func (r *MongoFollowerRepository) Create(ctx context.Context, f *domain.Follower) error {
	return mongoInsertOnce(ctx, r.client,
		func(sc mongo.SessionContext) error {
			_, err := r.followers.InsertOne(sc, f)
			return err
		},
		func(sc mongo.SessionContext) error {
			return r.shiftCounts(sc, f.FollowerID, f.FolloweeID, 1)
		},
	)
}

func (r *MongoFollowerRepository) Delete(ctx context.Context, followerID, followeeID string) error {
	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		res, err := r.followers.DeleteOne(sc, bson.M{"followerId": followerID, "followeeId": followeeID})
		if err != nil || res.DeletedCount == 0 {
			return err
		}
		return r.shiftCounts(sc, followerID, followeeID, -1)
	})
}

func (r *MongoFollowerRepository) shiftCounts(ctx context.Context, followerID, followeeID string, delta int) error {
	if err := incOne(ctx, r.users, followeeID, bson.M{domain.FieldFollowersCount: delta}); err != nil {
		return err
	}
	return incOne(ctx, r.users, followerID, bson.M{domain.FieldFollowingCount: delta})
}

func (r *MongoFollowerRepository) Following(ctx context.Context, userID string) ([]domain.FollowerData, error) {
	return r.profiles(ctx, bson.M{"followerId": userID}, func(f domain.Follower) string { return f.FolloweeID })
}

func (r *MongoFollowerRepository) Followers(ctx context.Context, userID string) ([]domain.FollowerData, error) {
	return r.profiles(ctx, bson.M{"followeeId": userID}, func(f domain.Follower) string { return f.FollowerID })
}

// profiles loads the edges matching filter and resolves the other side of
// each edge to a profile, keeping edge order.
func (r *MongoFollowerRepository) profiles(ctx context.Context, filter bson.M, other func(domain.Follower) string) ([]domain.FollowerData, error) {
	cur, err := r.followers.Find(ctx, filter, options.Find().SetSort(newestFirst()))
	if err != nil {
		return nil, err
	}
	var edges []domain.Follower
	if err := cur.All(ctx, &edges); err != nil {
		return nil, err
	}
	out := make([]domain.FollowerData, 0, len(edges))
	if len(edges) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, other(e))
	}
	ucur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := ucur.All(ctx, &users); err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u.FollowerData())
		}
	}
	return out, nil
}

var _ FollowerRepository = (*MongoFollowerRepository)(nil)

// MongoUserRepository implements UserRepository on MongoDB.
type MongoUserRepository struct {
	db *mongo.Database
}

func (r *MongoUserRepository) Save(ctx context.Context, user *domain.User) error {
	doc := *user
	if doc.Blocked == nil {
		doc.Blocked = []string{}
	}
	if doc.BlockedBy == nil {
		doc.BlockedBy = []string{}
	}
	_, err := r.db.Collection(usersCollection).ReplaceOne(ctx, bson.M{"_id": user.ID}, &doc, options.Replace().SetUpsert(true))
	return err
}

func (r *MongoUserRepository) Get(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	if err := r.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&u); err != nil {
		if isNoDocuments(err) {
			return nil, domain.NotFoundError("user", userID)
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) AddBlocked(ctx context.Context, userID, field, targetID string) error {
	return r.updateBlocked(ctx, userID, field, "$addToSet", targetID)
}

func (r *MongoUserRepository) RemoveBlocked(ctx context.Context, userID, field, targetID string) error {
	return r.updateBlocked(ctx, userID, field, "$pull", targetID)
}

func (r *MongoUserRepository) updateBlocked(ctx context.Context, userID, field, op, targetID string) error {
	if field != domain.FieldBlocked && field != domain.FieldBlockedBy {
		return domain.ValidationError("unknown block field %q", field)
	}
	res, err := r.db.Collection(usersCollection).UpdateOne(ctx, bson.M{"_id": userID}, bson.M{op: bson.M{field: targetID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.NotFoundError("user", userID)
	}
	return nil
}

var _ UserRepository = (*MongoUserRepository)(nil)

// MongoNotificationRepository implements NotificationRepository on MongoDB.
type MongoNotificationRepository struct {
	notifications *mongo.Collection
}

func (r *MongoNotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	_, err := r.notifications.InsertOne(ctx, n)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *MongoNotificationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	cur, err := r.notifications.Find(ctx, bson.M{"userTo": userID}, options.Find().SetSort(newestFirst()))
	if err != nil {
		return nil, err
	}
	out := []*domain.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoNotificationRepository) Get(ctx context.Context, userID, notificationID string) (*domain.Notification, error) {
	var n domain.Notification
	if err := r.notifications.FindOne(ctx, ownedNotification(userID, notificationID)).Decode(&n); err != nil {
		if isNoDocuments(err) {
			return nil, domain.NotFoundError("notification", notificationID)
		}
		return nil, err
	}
	return &n, nil
}

func (r *MongoNotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	_, err := r.notifications.UpdateOne(ctx, ownedNotification(userID, notificationID), bson.M{"$set": bson.M{"read": true}})
	return err
}

func (r *MongoNotificationRepository) Delete(ctx context.Context, userID, notificationID string) error {
	_, err := r.notifications.DeleteOne(ctx, ownedNotification(userID, notificationID))
	return err
}

func ownedNotification(userID, notificationID string) bson.M {
	return bson.M{"_id": notificationID, "userTo": userID}
}

var _ NotificationRepository = (*MongoNotificationRepository)(nil)
