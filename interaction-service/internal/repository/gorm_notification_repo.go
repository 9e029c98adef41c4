package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// GormNotificationRepository implements NotificationRepository using GORM.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GORM-backed notification repository.
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Insert stores the notification. Inserting an id that already exists is a
// no-op.
func (r *GormNotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(domain.NewNotificationModel(n)).Error
}

func (r *GormNotificationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	var models []domain.NotificationModel
	err := r.db.WithContext(ctx).
		Where("user_to = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Notification, 0, len(models))
	for i := range models {
		out = append(out, models[i].ToDomain())
	}
	return out, nil
}

func (r *GormNotificationRepository) Get(ctx context.Context, userID, notificationID string) (*domain.Notification, error) {
	var model domain.NotificationModel
	err := r.db.WithContext(ctx).First(&model, "id = ? AND user_to = ?", notificationID, userID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NotFoundError("notification", notificationID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormNotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	return r.db.WithContext(ctx).Model(&domain.NotificationModel{}).
		Where("id = ? AND user_to = ?", notificationID, userID).
		Update("read", true).Error
}

func (r *GormNotificationRepository) Delete(ctx context.Context, userID, notificationID string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_to = ?", notificationID, userID).
		Delete(&domain.NotificationModel{}).Error
}

var _ NotificationRepository = (*GormNotificationRepository)(nil)
