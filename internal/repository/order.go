package repository

import (
	"context"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateLines(ctx context.Context, tx *gorm.DB, lines []*model.OrderLine) error
	ListByUser(ctx context.Context, userID uint) ([]*model.Order, error)
	LinesByOrders(ctx context.Context, orderIDs []uint) ([]*model.OrderLine, error)
	IDsByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]uint, error)
	CountAll(ctx context.Context) (int64, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	DeleteLinesByGame(ctx context.Context, tx *gorm.DB, gameID uint) (int64, error)
	DeleteLinesByOrders(ctx context.Context, tx *gorm.DB, orderIDs []uint) (int64, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) CreateLines(ctx context.Context, tx *gorm.DB, lines []*model.OrderLine) error {
	return tx.WithContext(ctx).Create(&lines).Error
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID uint) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) LinesByOrders(ctx context.Context, orderIDs []uint) ([]*model.OrderLine, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	var lines []*model.OrderLine
	err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Find(&lines).Error

	if err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *orderRepoImpl) IDsByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	err := tx.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error

	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *orderRepoImpl) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&count).Error
	return count, err
}

func (r *orderRepoImpl) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *orderRepoImpl) DeleteLinesByGame(ctx context.Context, tx *gorm.DB, gameID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("game_id = ?", gameID).
		Delete(&model.OrderLine{})

	return result.RowsAffected, result.Error
}

func (r *orderRepoImpl) DeleteLinesByOrders(ctx context.Context, tx *gorm.DB, orderIDs []uint) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}

	result := tx.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Delete(&model.OrderLine{})

	return result.RowsAffected, result.Error
}

func (r *orderRepoImpl) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Order{})

	return result.RowsAffected, result.Error
}
