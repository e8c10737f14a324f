package repository

import (
	"context"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, review *model.Review) error
	FindByID(ctx context.Context, id uint) (*model.Review, error)
	Exists(ctx context.Context, userID, gameID uint) (bool, error)
	ListByGame(ctx context.Context, gameID uint) ([]*model.Review, error)
	RatingsByGame(ctx context.Context, tx *gorm.DB, gameID uint) ([]int, error)
	CountByGame(ctx context.Context, gameID uint) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	DeleteByGame(ctx context.Context, tx *gorm.DB, gameID uint) (int64, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type reviewRepoImpl struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepoImpl{
		db: db,
	}
}

func (r *reviewRepoImpl) Create(ctx context.Context, tx *gorm.DB, review *model.Review) error {
	return tx.WithContext(ctx).Create(review).Error
}

func (r *reviewRepoImpl) FindByID(ctx context.Context, id uint) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&review).Error

	if err != nil {
		return nil, err
	}

	return &review, nil
}

func (r *reviewRepoImpl) Exists(ctx context.Context, userID, gameID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("user_id = ?", userID).
		Where("game_id = ?", gameID).
		Count(&count).Error

	return count > 0, err
}

func (r *reviewRepoImpl) ListByGame(ctx context.Context, gameID uint) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("created_at desc").
		Find(&reviews).Error

	if err != nil {
		return nil, err
	}

	return reviews, nil
}

// RatingsByGame reads every rating for the game inside the caller's
// transaction so the recomputed average cannot miss concurrent writes.
func (r *reviewRepoImpl) RatingsByGame(ctx context.Context, tx *gorm.DB, gameID uint) ([]int, error) {
	var ratings []int
	err := tx.WithContext(ctx).Model(&model.Review{}).
		Where("game_id = ?", gameID).
		Pluck("rating", &ratings).Error

	if err != nil {
		return nil, err
	}

	return ratings, nil
}

func (r *reviewRepoImpl) CountByGame(ctx context.Context, gameID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("game_id = ?", gameID).
		Count(&count).Error

	return count, err
}

func (r *reviewRepoImpl) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := tx.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Review{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *reviewRepoImpl) DeleteByGame(ctx context.Context, tx *gorm.DB, gameID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("game_id = ?", gameID).
		Delete(&model.Review{})

	return result.RowsAffected, result.Error
}

func (r *reviewRepoImpl) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Review{})

	return result.RowsAffected, result.Error
}
