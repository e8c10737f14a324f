package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/dto"
	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"github.com/Aazukvid2000/Pyxolotl/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type ReviewService interface {
	Create(ctx context.Context, user *model.User, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	ListByGame(ctx context.Context, gameID uint) ([]*dto.ReviewResponse, error)
	Delete(ctx context.Context, user *model.User, reviewID uint) (*dto.Message, error)
}

type reviewServiceImpl struct {
	db         *gorm.DB
	reviewRepo repository.ReviewRepository
	gameRepo   repository.GameRepository
	userRepo   repository.UserRepository
	logger     zerolog.Logger
}

func NewReviewService(
	db *gorm.DB,
	reviewRepo repository.ReviewRepository,
	gameRepo repository.GameRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) ReviewService {
	return &reviewServiceImpl{
		db:         db,
		reviewRepo: reviewRepo,
		gameRepo:   gameRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

func (s *reviewServiceImpl) Create(ctx context.Context, user *model.User, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	game, err := s.gameRepo.FindByID(ctx, req.GameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Juego no encontrado")
		}
		return nil, fmt.Errorf("lookup game: %w", err)
	}
	if game.State != model.StateApproved {
		return nil, apperr.NotFound("Juego no disponible")
	}

	already, err := s.reviewRepo.Exists(ctx, user.ID, req.GameID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if already {
		return nil, apperr.Conflict("Ya has reseñado este juego")
	}

	review := &model.Review{
		UserID: user.ID,
		GameID: req.GameID,
		Rating: req.Rating,
		Text:   req.Text,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reviewRepo.Create(ctx, tx, review); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("Ya has reseñado este juego")
			}
			return fmt.Errorf("create review: %w", err)
		}

		return s.recomputeRating(ctx, tx, req.GameID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Uint("game_id", req.GameID).
		Uint("user_id", user.ID).
		Int("rating", req.Rating).
		Msg("review created")

	resp := dto.NewReviewResponse(review)
	resp.User = dto.NewUserResponse(user)

	return resp, nil
}

func (s *reviewServiceImpl) ListByGame(ctx context.Context, gameID uint) ([]*dto.ReviewResponse, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Juego no encontrado")
		}
		return nil, fmt.Errorf("lookup game: %w", err)
	}
	if game.State != model.StateApproved {
		return nil, apperr.NotFound("Juego no disponible")
	}

	reviews, err := s.reviewRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	out := make([]*dto.ReviewResponse, len(reviews))
	for i, r := range reviews {
		resp := dto.NewReviewResponse(r)

		author, err := s.userRepo.FindByID(ctx, r.UserID)
		if err == nil {
			resp.User = dto.NewUserResponse(author)
		}

		out[i] = resp
	}

	return out, nil
}

func (s *reviewServiceImpl) Delete(ctx context.Context, user *model.User, reviewID uint) (*dto.Message, error) {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Reseña no encontrada")
		}
		return nil, fmt.Errorf("lookup review: %w", err)
	}

	if review.UserID != user.ID {
		return nil, apperr.Forbidden("No puedes eliminar esta reseña")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reviewRepo.Delete(ctx, tx, reviewID); err != nil {
			return fmt.Errorf("delete review: %w", err)
		}

		return s.recomputeRating(ctx, tx, review.GameID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint("review_id", reviewID).Uint("user_id", user.ID).Msg("review deleted")

	return dto.OK("Reseña eliminada"), nil
}

// recomputeRating rebuilds the game's average from the full rating set so the
// stored stats never drift from the review rows.
func (s *reviewServiceImpl) recomputeRating(ctx context.Context, tx *gorm.DB, gameID uint) error {
	ratings, err := s.reviewRepo.RatingsByGame(ctx, tx, gameID)
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}

	avg := 0.0
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		avg = math.Round(float64(sum)/float64(len(ratings))*100) / 100
	}

	if err := s.gameRepo.UpdateRatingStats(ctx, tx, gameID, avg, len(ratings)); err != nil {
		return fmt.Errorf("update rating stats: %w", err)
	}

	return nil
}
