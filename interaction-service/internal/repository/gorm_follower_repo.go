package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// GormFollowerRepository implements FollowerRepository using GORM.
type GormFollowerRepository struct {
	db *gorm.DB
}

// NewGormFollowerRepository creates a new GORM-backed follower repository.
func NewGormFollowerRepository(db *gorm.DB) *GormFollowerRepository {
	return &GormFollowerRepository{db: db}
}

// Create inserts the edge. An edge that already exists is left as is and
// the counters are not touched.
func (r *GormFollowerRepository) Create(ctx context.Context, f *domain.Follower) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := domain.FollowerModel{
			ID:         f.ID,
			FollowerID: f.FollowerID,
			FolloweeID: f.FolloweeID,
			CreatedAt:  f.CreatedAt,
		}
		created, err := insertOnce(tx, &model)
		if err != nil || !created {
			return err
		}
		if err := incr(tx, &domain.UserModel{}, f.FolloweeID, "followers_count", 1); err != nil {
			return err
		}
		return incr(tx, &domain.UserModel{}, f.FollowerID, "following_count", 1)
	})
}

func (r *GormFollowerRepository) Delete(ctx context.Context, followerID, followeeID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			Delete(&domain.FollowerModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		if err := incr(tx, &domain.UserModel{}, followeeID, "followers_count", -1); err != nil {
			return err
		}
		return incr(tx, &domain.UserModel{}, followerID, "following_count", -1)
	})
}

func (r *GormFollowerRepository) Following(ctx context.Context, userID string) ([]domain.FollowerData, error) {
	return r.profiles(ctx, "followers.followee_id = users.id", "followers.follower_id = ?", userID)
}

func (r *GormFollowerRepository) Followers(ctx context.Context, userID string) ([]domain.FollowerData, error) {
	return r.profiles(ctx, "followers.follower_id = users.id", "followers.followee_id = ?", userID)
}

func (r *GormFollowerRepository) profiles(ctx context.Context, on, where, userID string) ([]domain.FollowerData, error) {
	var models []domain.UserModel
	err := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Select("users.*").
		Joins("JOIN followers ON "+on).
		Where(where, userID).
		Order("followers.created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.FollowerData, 0, len(models))
	for i := range models {
		out = append(out, models[i].ToDomain().FollowerData())
	}
	return out, nil
}

var _ FollowerRepository = (*GormFollowerRepository)(nil)
