package repository

import (
	"context"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"gorm.io/gorm"
)

type CartRepository interface {
	Create(ctx context.Context, item *model.CartItem) error
	Exists(ctx context.Context, userID, gameID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]*model.CartItem, error)
	FindByIDAndUser(ctx context.Context, id, userID uint) (*model.CartItem, error)
	Delete(ctx context.Context, id uint) error
	DeleteByUserAndGames(ctx context.Context, tx *gorm.DB, userID uint, gameIDs []uint) (int64, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
	DeleteByGame(ctx context.Context, tx *gorm.DB, gameID uint) (int64, error)
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) Create(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *cartRepoImpl) Exists(ctx context.Context, userID, gameID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("user_id = ?", userID).
		Where("game_id = ?", gameID).
		Count(&count).Error

	return count > 0, err
}

func (r *cartRepoImpl) ListByUser(ctx context.Context, userID uint) ([]*model.CartItem, error) {
	var items []*model.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *cartRepoImpl) FindByIDAndUser(ctx context.Context, id, userID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *cartRepoImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.CartItem{}).Error
}

func (r *cartRepoImpl) DeleteByUserAndGames(ctx context.Context, tx *gorm.DB, userID uint, gameIDs []uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("game_id IN ?", gameIDs).
		Delete(&model.CartItem{})

	return result.RowsAffected, result.Error
}

func (r *cartRepoImpl) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{})

	return result.RowsAffected, result.Error
}

func (r *cartRepoImpl) DeleteByGame(ctx context.Context, tx *gorm.DB, gameID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("game_id = ?", gameID).
		Delete(&model.CartItem{})

	return result.RowsAffected, result.Error
}
