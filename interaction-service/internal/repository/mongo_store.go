package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	postsCollection         = "posts"
	commentsCollection      = "comments"
	reactionsCollection     = "reactions"
	followersCollection     = "followers"
	usersCollection         = "users"
	notificationsCollection = "notifications"
)

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// ConnectMongo connects and pings the server.
func ConnectMongo(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

// NewMongoStore returns the repositories backed by a MongoDB database.
// Writes spanning two collections run in a transaction, so the server must
// be a replica set or a sharded cluster.
func NewMongoStore(db *mongo.Database) *Store {
	client := db.Client()
	return &Store{
		Posts:         &MongoPostRepository{client: client, posts: db.Collection(postsCollection), users: db.Collection(usersCollection)},
		Comments:      &MongoCommentRepository{client: client, comments: db.Collection(commentsCollection), posts: db.Collection(postsCollection)},
		Reactions:     &MongoReactionRepository{client: client, reactions: db.Collection(reactionsCollection), posts: db.Collection(postsCollection)},
		Followers:     &MongoFollowerRepository{client: client, followers: db.Collection(followersCollection), users: db.Collection(usersCollection)},
		Users:         &MongoUserRepository{db: db},
		Notifications: &MongoNotificationRepository{notifications: db.Collection(notificationsCollection)},
	}
}

// EnsureMongoIndexes creates the unique and lookup indexes the repositories
// rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		postsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		reactionsCollection: {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}},
		},
		followersCollection: {
			{Keys: bson.D{{Key: "followerId", Value: 1}, {Key: "followeeId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "followeeId", Value: 1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "userTo", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// newestFirst sorts by createdAt descending.
func newestFirst() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}}
}

func incOne(ctx context.Context, col *mongo.Collection, id string, fields bson.M) error {
	_, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": fields})
	return err
}

// withTransaction runs fn in one multi-document transaction. A duplicate key
// error from fn aborts the transaction and is returned unchanged.
func withTransaction(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	session, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// mongoInsertOnce runs insert and then apply in one transaction. A replayed
// insert hits the unique _id and the whole write is a no-op.
func mongoInsertOnce(ctx context.Context, client *mongo.Client, insert, apply func(sc mongo.SessionContext) error) error {
	err := withTransaction(ctx, client, func(sc mongo.SessionContext) error {
		if err := insert(sc); err != nil {
			return err
		}
		return apply(sc)
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}
