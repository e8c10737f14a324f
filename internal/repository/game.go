package repository

import (
	"context"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"gorm.io/gorm"
)

// CatalogFilter narrows and orders the public catalog query. Only
// approved games are ever returned.
type CatalogFilter struct {
	Search   string
	Genre    string
	PriceMin *float64
	PriceMax *float64
	FreeOnly bool
	SortBy   string // fecha_creacion | precio | calificacion
	SortAsc  bool
	Offset   int
	Limit    int
}

type GameRepository interface {
	Create(ctx context.Context, tx *gorm.DB, game *model.Game) error
	Update(ctx context.Context, tx *gorm.DB, game *model.Game) error
	FindByID(ctx context.Context, id uint) (*model.Game, error)
	FindMany(ctx context.Context, ids []uint) ([]*model.Game, error)
	FindByState(ctx context.Context, state model.GameState) ([]*model.Game, error)
	FindByDeveloper(ctx context.Context, developerID uint) ([]*model.Game, error)
	Catalog(ctx context.Context, filter CatalogFilter) ([]*model.Game, error)
	List(ctx context.Context, offset, limit int, state model.GameState, developerID uint) ([]*model.Game, error)
	BumpSaleAndDownload(ctx context.Context, tx *gorm.DB, gameID uint) error
	BumpDownload(ctx context.Context, tx *gorm.DB, gameID uint) error
	UpdateRatingStats(ctx context.Context, tx *gorm.DB, gameID uint, avg float64, count int) error
	CountAll(ctx context.Context) (int64, error)
	CountByState(ctx context.Context, state model.GameState) (int64, error)
	CountByDeveloper(ctx context.Context, developerID uint) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error)
}

type gameRepoImpl struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepoImpl{
		db: db,
	}
}

func (r *gameRepoImpl) Create(ctx context.Context, tx *gorm.DB, game *model.Game) error {
	return tx.WithContext(ctx).Create(game).Error
}

func (r *gameRepoImpl) Update(ctx context.Context, tx *gorm.DB, game *model.Game) error {
	return tx.WithContext(ctx).Save(game).Error
}

func (r *gameRepoImpl) FindByID(ctx context.Context, id uint) (*model.Game, error) {
	var game model.Game
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&game).Error

	if err != nil {
		return nil, err
	}

	return &game, nil
}

func (r *gameRepoImpl) FindMany(ctx context.Context, ids []uint) ([]*model.Game, error) {
	var games []*model.Game
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&games).
		Error

	if err != nil {
		return nil, err
	}

	return games, nil
}

func (r *gameRepoImpl) FindByState(ctx context.Context, state model.GameState) ([]*model.Game, error) {
	var games []*model.Game
	err := r.db.WithContext(ctx).
		Where("state = ?", state).
		Find(&games).
		Error

	if err != nil {
		return nil, err
	}

	return games, nil
}

func (r *gameRepoImpl) FindByDeveloper(ctx context.Context, developerID uint) ([]*model.Game, error) {
	var games []*model.Game
	err := r.db.WithContext(ctx).
		Where("developer_id = ?", developerID).
		Find(&games).
		Error

	if err != nil {
		return nil, err
	}

	return games, nil
}

func (r *gameRepoImpl) Catalog(ctx context.Context, filter CatalogFilter) ([]*model.Game, error) {
	query := r.db.WithContext(ctx).Model(&model.Game{}).
		Where("state = ?", model.StateApproved)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if filter.Genre != "" {
		query = query.Where("genre = ?", filter.Genre)
	}
	if filter.PriceMin != nil {
		query = query.Where("price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("price <= ?", *filter.PriceMax)
	}
	if filter.FreeOnly {
		query = query.Where("price = ?", 0.0)
	}

	var column string
	switch filter.SortBy {
	case "precio":
		column = "price"
	case "calificacion":
		column = "avg_rating"
	default:
		column = "created_at"
	}
	if filter.SortAsc {
		query = query.Order(column + " asc")
	} else {
		query = query.Order(column + " desc")
	}

	var games []*model.Game
	err := query.Offset(filter.Offset).Limit(filter.Limit).Find(&games).Error
	if err != nil {
		return nil, err
	}

	return games, nil
}

func (r *gameRepoImpl) List(ctx context.Context, offset, limit int, state model.GameState, developerID uint) ([]*model.Game, error) {
	query := r.db.WithContext(ctx).Model(&model.Game{})
	if state != "" {
		query = query.Where("state = ?", state)
	}
	if developerID != 0 {
		query = query.Where("developer_id = ?", developerID)
	}

	var games []*model.Game
	err := query.Offset(offset).Limit(limit).Find(&games).Error
	if err != nil {
		return nil, err
	}

	return games, nil
}

func (r *gameRepoImpl) BumpSaleAndDownload(ctx context.Context, tx *gorm.DB, gameID uint) error {
	return tx.WithContext(ctx).Model(&model.Game{}).
		Where("id = ?", gameID).
		Updates(map[string]interface{}{
			"sale_count":     gorm.Expr("sale_count + 1"),
			"download_count": gorm.Expr("download_count + 1"),
		}).Error
}

func (r *gameRepoImpl) BumpDownload(ctx context.Context, tx *gorm.DB, gameID uint) error {
	return tx.WithContext(ctx).Model(&model.Game{}).
		Where("id = ?", gameID).
		Update("download_count", gorm.Expr("download_count + 1")).Error
}

func (r *gameRepoImpl) UpdateRatingStats(ctx context.Context, tx *gorm.DB, gameID uint, avg float64, count int) error {
	return tx.WithContext(ctx).Model(&model.Game{}).
		Where("id = ?", gameID).
		Updates(map[string]interface{}{
			"avg_rating":   avg,
			"review_count": count,
		}).Error
}

func (r *gameRepoImpl) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Game{}).Count(&count).Error
	return count, err
}

func (r *gameRepoImpl) CountByState(ctx context.Context, state model.GameState) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Game{}).
		Where("state = ?", state).
		Count(&count).Error
	return count, err
}

func (r *gameRepoImpl) CountByDeveloper(ctx context.Context, developerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Game{}).
		Where("developer_id = ?", developerID).
		Count(&count).Error
	return count, err
}

func (r *gameRepoImpl) Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Game{})

	return result.RowsAffected, result.Error
}
