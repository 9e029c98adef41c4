package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/pkg/database"
)

// NewGormStore returns the repositories backed by a SQL database.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Posts:         NewGormPostRepository(db),
		Comments:      NewGormCommentRepository(db),
		Reactions:     NewGormReactionRepository(db),
		Followers:     NewGormFollowerRepository(db),
		Users:         NewGormUserRepository(db),
		Notifications: NewGormNotificationRepository(db),
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return database.AutoMigrate(db, domain.Models()...)
}

// insertOnce inserts value unless it collides with an existing key. It
// reports whether a row was written. The conflict is resolved by the
// database so the surrounding transaction stays usable.
func insertOnce(tx *gorm.DB, value interface{}) (bool, error) {
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(value)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// incr adds delta to an integer column of the row with the given id.
func incr(tx *gorm.DB, model interface{}, id, column string, delta int) error {
	return tx.Model(model).
		Where("id = ?", id).
		Update(column, gorm.Expr(column+" + ?", delta)).Error
}
