package repository

import (
	"context"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, tx *gorm.DB, userID uint, hash string) error
	MarkVerified(ctx context.Context, tx *gorm.DB, userID uint) error
	List(ctx context.Context, offset, limit int, verified *bool) ([]*model.User, error)
	FindUnverified(ctx context.Context) ([]*model.User, error)
	CountAll(ctx context.Context) (int64, error)
	CountVerified(ctx context.Context) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepoImpl) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepoImpl) UpdatePassword(ctx context.Context, tx *gorm.DB, userID uint, hash string) error {
	result := tx.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepoImpl) MarkVerified(ctx context.Context, tx *gorm.DB, userID uint) error {
	result := tx.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("verified", true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepoImpl) List(ctx context.Context, offset, limit int, verified *bool) ([]*model.User, error) {
	query := r.db.WithContext(ctx).Model(&model.User{})
	if verified != nil {
		query = query.Where("verified = ?", *verified)
	}

	var users []*model.User
	err := query.Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepoImpl) FindUnverified(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).
		Where("verified = ?", false).
		Find(&users).Error

	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepoImpl) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, err
}

func (r *userRepoImpl) CountVerified(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("verified = ?", true).
		Count(&count).Error
	return count, err
}

func (r *userRepoImpl) Delete(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("id = ?", userID).
		Delete(&model.User{})

	return result.RowsAffected, result.Error
}
