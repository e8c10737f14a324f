package repository

import (
	"context"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LibraryRepository interface {
	Grant(ctx context.Context, tx *gorm.DB, item *model.LibraryItem) error
	Exists(ctx context.Context, userID, gameID uint) (bool, error)
	FindByUserAndGame(ctx context.Context, userID, gameID uint) (*model.LibraryItem, error)
	ListByUser(ctx context.Context, userID uint) ([]*model.LibraryItem, error)
	DeleteByGame(ctx context.Context, tx *gorm.DB, gameID uint) (int64, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type libraryRepoImpl struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepoImpl{
		db: db,
	}
}

// Grant inserts the library row, silently keeping the existing one when the
// user already owns the game.
func (r *libraryRepoImpl) Grant(ctx context.Context, tx *gorm.DB, item *model.LibraryItem) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "game_id"}},
			DoNothing: true,
		}).
		Create(item).Error
}

func (r *libraryRepoImpl) Exists(ctx context.Context, userID, gameID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.LibraryItem{}).
		Where("user_id = ?", userID).
		Where("game_id = ?", gameID).
		Count(&count).Error

	return count > 0, err
}

func (r *libraryRepoImpl) FindByUserAndGame(ctx context.Context, userID, gameID uint) (*model.LibraryItem, error) {
	var item model.LibraryItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("game_id = ?", gameID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *libraryRepoImpl) ListByUser(ctx context.Context, userID uint) ([]*model.LibraryItem, error) {
	var items []*model.LibraryItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *libraryRepoImpl) DeleteByGame(ctx context.Context, tx *gorm.DB, gameID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("game_id = ?", gameID).
		Delete(&model.LibraryItem{})

	return result.RowsAffected, result.Error
}

func (r *libraryRepoImpl) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.LibraryItem{})

	return result.RowsAffected, result.Error
}
