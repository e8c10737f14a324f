package repository

import (
	"context"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"gorm.io/gorm"
)

type TokenRepository interface {
	Create(ctx context.Context, token *model.VerificationToken) error
	FindByToken(ctx context.Context, token string, purpose model.TokenPurpose) (*model.VerificationToken, error)
	MarkUsed(ctx context.Context, tx *gorm.DB, id uint) error
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type tokenRepoImpl struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepoImpl{
		db: db,
	}
}

func (r *tokenRepoImpl) Create(ctx context.Context, token *model.VerificationToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *tokenRepoImpl) FindByToken(ctx context.Context, token string, purpose model.TokenPurpose) (*model.VerificationToken, error) {
	var record model.VerificationToken
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		Where("purpose = ?", purpose).
		First(&record).Error

	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *tokenRepoImpl) MarkUsed(ctx context.Context, tx *gorm.DB, id uint) error {
	result := tx.WithContext(ctx).Model(&model.VerificationToken{}).
		Where("id = ?", id).
		Where("used = ?", false).
		Update("used", true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *tokenRepoImpl) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.VerificationToken{})

	return result.RowsAffected, result.Error
}
