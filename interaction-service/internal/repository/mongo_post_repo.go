package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// MongoPostRepository implements PostRepository on MongoDB.
type MongoPostRepository struct {
	client *mongo.Client
	posts  *mongo.Collection
	users  *mongo.Collection
}

func (r *MongoPostRepository) Create(ctx context.Context, post *domain.Post) error {
	doc := *post
	if doc.Reactions == nil {
		doc.Reactions = domain.NewReactions()
	}
	return mongoInsertOnce(ctx, r.client,
		func(sc mongo.SessionContext) error {
			_, err := r.posts.InsertOne(sc, &doc)
			return err
		},
		func(sc mongo.SessionContext) error {
			return incOne(sc, r.users, post.UserID, bson.M{domain.FieldPostsCount: 1})
		},
	)
}

func (r *MongoPostRepository) Update(ctx context.Context, postID string, update domain.PostUpdate) error {
	fields := update.Fields()
	if len(fields) == 0 {
		return nil
	}
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	_, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$set": set})
	return err
}

func (r *MongoPostRepository) Delete(ctx context.Context, postID, userID string) error {
	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		res, err := r.posts.DeleteOne(sc, bson.M{"_id": postID})
		if err != nil || res.DeletedCount == 0 {
			return err
		}
		return incOne(sc, r.users, userID, bson.M{domain.FieldPostsCount: -1})
	})
}

func (r *MongoPostRepository) Get(ctx context.Context, postID string) (*domain.Post, error) {
	var post domain.Post
	if err := r.posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post); err != nil {
		if isNoDocuments(err) {
			return nil, domain.NotFoundError("post", postID)
		}
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) List(ctx context.Context, filter PostFilter, skip, limit int) ([]*domain.Post, error) {
	opts := options.Find().SetSort(newestFirst())
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.posts.Find(ctx, postQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	posts := []*domain.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *MongoPostRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	return r.posts.CountDocuments(ctx, postQuery(filter))
}

func postQuery(filter PostFilter) bson.M {
	q := bson.M{}
	if filter.UserID != "" {
		q["userId"] = filter.UserID
	}
	switch filter.Media {
	case domain.MediaImage:
		q["$or"] = bson.A{
			bson.M{"imgId": bson.M{"$ne": ""}, "imgVersion": bson.M{"$ne": ""}},
			bson.M{"gifUrl": bson.M{"$ne": ""}},
		}
	case domain.MediaVideo:
		q["videoId"] = bson.M{"$ne": ""}
		q["videoVersion"] = bson.M{"$ne": ""}
	}
	return q
}

var _ PostRepository = (*MongoPostRepository)(nil)

// MongoCommentRepository implements CommentRepository on MongoDB.
type MongoCommentRepository struct {
	client   *mongo.Client
	comments *mongo.Collection
	posts    *mongo.Collection
}

func (r *MongoCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return mongoInsertOnce(ctx, r.client,
		func(sc mongo.SessionContext) error {
			_, err := r.comments.InsertOne(sc, comment)
			return err
		},
		func(sc mongo.SessionContext) error {
			return incOne(sc, r.posts, comment.PostID, bson.M{"commentsCount": 1})
		},
	)
}

func (r *MongoCommentRepository) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	cur, err := r.comments.Find(ctx, bson.M{"postId": postID}, options.Find().SetSort(newestFirst()))
	if err != nil {
		return nil, err
	}
	comments := []*domain.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *MongoCommentRepository) Get(ctx context.Context, postID, commentID string) (*domain.Comment, error) {
	var c domain.Comment
	err := r.comments.FindOne(ctx, bson.M{"_id": commentID, "postId": postID}).Decode(&c)
	if err != nil {
		if isNoDocuments(err) {
			return nil, domain.NotFoundError("comment", commentID)
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoCommentRepository) Names(ctx context.Context, postID string) (*domain.CommentNames, error) {
	opts := options.Find().
		SetSort(newestFirst()).
		SetProjection(bson.M{"username": 1})
	cur, err := r.comments.Find(ctx, bson.M{"postId": postID}, opts)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Username string `bson:"username"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	usernames := make([]string, 0, len(rows))
	for _, row := range rows {
		usernames = append(usernames, row.Username)
	}
	return commentNames(usernames), nil
}

var _ CommentRepository = (*MongoCommentRepository)(nil)
