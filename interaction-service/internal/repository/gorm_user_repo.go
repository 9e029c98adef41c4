package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/pkg/database"
)

// blockColumns maps the block-list field names to users columns.
var blockColumns = map[string]string{
	domain.FieldBlocked:   "blocked",
	domain.FieldBlockedBy: "blocked_by",
}

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-backed user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Save inserts or fully overwrites the profile.
func (r *GormUserRepository) Save(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(domain.NewUserModel(user)).Error
}

func (r *GormUserRepository) Get(ctx context.Context, userID string) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", userID).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.NotFoundError("user", userID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormUserRepository) AddBlocked(ctx context.Context, userID, field, targetID string) error {
	return r.updateBlocked(ctx, userID, field, func(a database.StringArray) database.StringArray {
		return a.Add(targetID)
	})
}

func (r *GormUserRepository) RemoveBlocked(ctx context.Context, userID, field, targetID string) error {
	return r.updateBlocked(ctx, userID, field, func(a database.StringArray) database.StringArray {
		return a.Remove(targetID)
	})
}

func (r *GormUserRepository) updateBlocked(ctx context.Context, userID, field string, fn func(database.StringArray) database.StringArray) error {
	column, ok := blockColumns[field]
	if !ok {
		return domain.ValidationError("unknown block field %q", field)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model domain.UserModel
		if err := tx.First(&model, "id = ?", userID).Error; err != nil {
			if isNotFound(err) {
				return domain.NotFoundError("user", userID)
			}
			return err
		}
		current := model.Blocked
		if field == domain.FieldBlockedBy {
			current = model.BlockedBy
		}
		next := fn(current)
		if next == nil {
			next = database.StringArray{}
		}
		return tx.Model(&domain.UserModel{}).Where("id = ?", userID).Update(column, next).Error
	})
}

var _ UserRepository = (*GormUserRepository)(nil)
