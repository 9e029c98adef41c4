package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

// GormReactionRepository implements ReactionRepository using GORM.
type GormReactionRepository struct {
	db *gorm.DB
}

// NewGormReactionRepository creates a new GORM-backed reaction repository.
func NewGormReactionRepository(db *gorm.DB) *GormReactionRepository {
	return &GormReactionRepository{db: db}
}

// Replace deletes any reaction the user already has on the post and inserts
// r in the same transaction.
func (r *GormReactionRepository) Replace(ctx context.Context, reaction *domain.Reaction, previous domain.ReactionType) error {
	if !reaction.Type.Valid() || previous != "" && !previous.Valid() {
		return domain.ValidationError("unknown reaction kind")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("post_id = ? AND username = ?", reaction.PostID, reaction.Username).
			Delete(&domain.ReactionModel{}).Error
		if err != nil {
			return err
		}
		if err := tx.Create(domain.NewReactionModel(reaction)).Error; err != nil {
			return err
		}
		if previous == reaction.Type {
			return nil
		}
		updates := map[string]interface{}{
			domain.ReactionColumn(reaction.Type): gorm.Expr(domain.ReactionColumn(reaction.Type) + " + 1"),
		}
		if previous != "" {
			updates[domain.ReactionColumn(previous)] = gorm.Expr(domain.ReactionColumn(previous) + " - 1")
		}
		return tx.Model(&domain.PostModel{}).Where("id = ?", reaction.PostID).Updates(updates).Error
	})
}

// Remove deletes the user's reaction. The count is only decremented when a
// row was actually removed.
func (r *GormReactionRepository) Remove(ctx context.Context, postID, username string, previous domain.ReactionType) error {
	if previous != "" && !previous.Valid() {
		return domain.ValidationError("unknown reaction kind %q", previous)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND username = ?", postID, username).Delete(&domain.ReactionModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 || previous == "" {
			return nil
		}
		return incr(tx, &domain.PostModel{}, postID, domain.ReactionColumn(previous), -1)
	})
}

func (r *GormReactionRepository) ListByPost(ctx context.Context, postID string) ([]*domain.Reaction, int, error) {
	reactions, err := r.find(ctx, "post_id = ?", postID)
	if err != nil {
		return nil, 0, err
	}
	return reactions, len(reactions), nil
}

func (r *GormReactionRepository) GetByUsername(ctx context.Context, postID, username string) (*domain.Reaction, error) {
	var model domain.ReactionModel
	err := r.db.WithContext(ctx).First(&model, "post_id = ? AND username = ?", postID, username).Error
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NotFoundError("reaction", postID+"/"+username)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormReactionRepository) ListByUsername(ctx context.Context, username string) ([]*domain.Reaction, error) {
	return r.find(ctx, "username = ?", username)
}

func (r *GormReactionRepository) find(ctx context.Context, query string, args ...interface{}) ([]*domain.Reaction, error) {
	var models []domain.ReactionModel
	if err := r.db.WithContext(ctx).Where(query, args...).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	reactions := make([]*domain.Reaction, 0, len(models))
	for i := range models {
		reactions = append(reactions, models[i].ToDomain())
	}
	return reactions, nil
}

var _ ReactionRepository = (*GormReactionRepository)(nil)
