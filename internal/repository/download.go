package repository

import (
	"context"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"gorm.io/gorm"
)

type DownloadRepository interface {
	Log(ctx context.Context, entry *model.DownloadLog) error
	CountAll(ctx context.Context) (int64, error)
	CountByGame(ctx context.Context, gameID uint) (int64, error)
	DeleteByGame(ctx context.Context, tx *gorm.DB, gameID uint) (int64, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type downloadRepoImpl struct {
	db *gorm.DB
}

func NewDownloadRepository(db *gorm.DB) DownloadRepository {
	return &downloadRepoImpl{
		db: db,
	}
}

func (r *downloadRepoImpl) Log(ctx context.Context, entry *model.DownloadLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *downloadRepoImpl) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DownloadLog{}).Count(&count).Error
	return count, err
}

func (r *downloadRepoImpl) CountByGame(ctx context.Context, gameID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DownloadLog{}).
		Where("game_id = ?", gameID).
		Count(&count).Error

	return count, err
}

func (r *downloadRepoImpl) DeleteByGame(ctx context.Context, tx *gorm.DB, gameID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("game_id = ?", gameID).
		Delete(&model.DownloadLog{})

	return result.RowsAffected, result.Error
}

func (r *downloadRepoImpl) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.DownloadLog{})

	return result.RowsAffected, result.Error
}
