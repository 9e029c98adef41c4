package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// postColumns maps PostUpdate field names to posts columns.
var postColumns = map[string]string{
	"post":           "post",
	"bgColor":        "bg_color",
	"feelings":       "feelings",
	"privacy":        "privacy",
	"gifUrl":         "gif_url",
	"profilePicture": "profile_picture",
	"imgVersion":     "img_version",
	"imgId":          "img_id",
	"videoVersion":   "video_version",
	"videoId":        "video_id",
}

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-backed post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// Create inserts the post. A post whose id is already stored is a replay
// and leaves the author's count alone.
func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := insertOnce(tx, domain.NewPostModel(post))
		if err != nil || !created {
			return err
		}
		return incr(tx, &domain.UserModel{}, post.UserID, "posts_count", 1)
	})
}

func (r *GormPostRepository) Update(ctx context.Context, postID string, update domain.PostUpdate) error {
	fields := update.Fields()
	if len(fields) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(fields))
	for name, v := range fields {
		values[postColumns[name]] = v
	}
	return r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Where("id = ?", postID).
		Updates(values).Error
}

// Delete removes the post. Deleting a post that is already gone is a no-op
// and leaves the author's count alone.
func (r *GormPostRepository) Delete(ctx context.Context, postID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", postID).Delete(&domain.PostModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return incr(tx, &domain.UserModel{}, userID, "posts_count", -1)
	})
}

func (r *GormPostRepository) Get(ctx context.Context, postID string) (*domain.Post, error) {
	var model domain.PostModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", postID).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.NotFoundError("post", postID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormPostRepository) List(ctx context.Context, filter PostFilter, skip, limit int) ([]*domain.Post, error) {
	q := r.filtered(ctx, filter).Order("created_at DESC")
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var models []domain.PostModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	posts := make([]*domain.Post, 0, len(models))
	for i := range models {
		posts = append(posts, models[i].ToDomain())
	}
	return posts, nil
}

func (r *GormPostRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormPostRepository) filtered(ctx context.Context, filter PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.PostModel{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	switch filter.Media {
	case domain.MediaImage:
		q = q.Where("(img_id <> '' AND img_version <> '') OR gif_url <> ''")
	case domain.MediaVideo:
		q = q.Where("video_id <> '' AND video_version <> ''")
	}
	return q
}

var _ PostRepository = (*GormPostRepository)(nil)
