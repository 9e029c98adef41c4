package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GORM-backed comment repository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := insertOnce(tx, domain.NewCommentModel(comment))
		if err != nil || !created {
			return err
		}
		return incr(tx, &domain.PostModel{}, comment.PostID, "comments_count", 1)
	})
}

func (r *GormCommentRepository) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	var models []domain.CommentModel
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	comments := make([]*domain.Comment, 0, len(models))
	for i := range models {
		comments = append(comments, models[i].ToDomain())
	}
	return comments, nil
}

func (r *GormCommentRepository) Get(ctx context.Context, postID, commentID string) (*domain.Comment, error) {
	var model domain.CommentModel
	err := r.db.WithContext(ctx).First(&model, "id = ? AND post_id = ?", commentID, postID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NotFoundError("comment", commentID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormCommentRepository) Names(ctx context.Context, postID string) (*domain.CommentNames, error) {
	var usernames []string
	err := r.db.WithContext(ctx).Model(&domain.CommentModel{}).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Pluck("username", &usernames).Error
	if err != nil {
		return nil, err
	}
	return commentNames(usernames), nil
}

// commentNames dedupes usernames keeping first-seen order.
func commentNames(usernames []string) *domain.CommentNames {
	names := make([]string, 0, len(usernames))
	seen := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		names = append(names, u)
	}
	return &domain.CommentNames{Count: len(usernames), Names: names}
}

var _ CommentRepository = (*GormCommentRepository)(nil)
