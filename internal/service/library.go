package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/dto"
	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"github.com/Aazukvid2000/Pyxolotl/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// DownloadDelivery tells the handler how to hand the package over.
type DownloadDelivery int

const (
	DeliverRedirect DownloadDelivery = iota
	DeliverLocalFile
)

type DownloadResult struct {
	Delivery DownloadDelivery
	URL      string
	FilePath string
	Filename string
}

type LibraryService interface {
	List(ctx context.Context, user *model.User) ([]*dto.LibraryItemResponse, error)
	Download(ctx context.Context, user *model.User, gameID uint, clientIP string) (*DownloadResult, error)
}

type libraryServiceImpl struct {
	libraryRepo  repository.LibraryRepository
	gameRepo     repository.GameRepository
	userRepo     repository.UserRepository
	downloadRepo repository.DownloadRepository
	logger       zerolog.Logger
}

func NewLibraryService(
	libraryRepo repository.LibraryRepository,
	gameRepo repository.GameRepository,
	userRepo repository.UserRepository,
	downloadRepo repository.DownloadRepository,
	logger zerolog.Logger,
) LibraryService {
	return &libraryServiceImpl{
		libraryRepo:  libraryRepo,
		gameRepo:     gameRepo,
		userRepo:     userRepo,
		downloadRepo: downloadRepo,
		logger:       logger,
	}
}

func (s *libraryServiceImpl) List(ctx context.Context, user *model.User) ([]*dto.LibraryItemResponse, error) {
	items, err := s.libraryRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}

	gameIDs := make([]uint, len(items))
	for i, item := range items {
		gameIDs[i] = item.GameID
	}

	var games []*model.Game
	if len(gameIDs) > 0 {
		games, err = s.gameRepo.FindMany(ctx, gameIDs)
		if err != nil {
			return nil, fmt.Errorf("load games: %w", err)
		}
	}

	gamesByID := make(map[uint]*model.Game, len(games))
	for _, g := range games {
		gamesByID[g.ID] = g
	}

	developers := make(map[uint]*dto.UserResponse)

	out := make([]*dto.LibraryItemResponse, len(items))
	for i, item := range items {
		resp := &dto.LibraryItemResponse{
			ID:         item.ID,
			GameID:     item.GameID,
			AcquiredAt: item.CreatedAt,
			IsFree:     item.IsFree,
		}

		if g, ok := gamesByID[item.GameID]; ok {
			gameResp := dto.NewGameResponse(g)

			if dev, ok := developers[g.DeveloperID]; ok {
				gameResp.Developer = dev
			} else if u, err := s.userRepo.FindByID(ctx, g.DeveloperID); err == nil {
				gameResp.Developer = dto.NewUserResponse(u)
				developers[g.DeveloperID] = gameResp.Developer
			}

			resp.Game = gameResp
		}

		out[i] = resp
	}

	return out, nil
}

func (s *libraryServiceImpl) Download(ctx context.Context, user *model.User, gameID uint, clientIP string) (*DownloadResult, error) {
	owned, err := s.libraryRepo.Exists(ctx, user.ID, gameID)
	if err != nil {
		return nil, fmt.Errorf("check ownership: %w", err)
	}
	if !owned {
		return nil, apperr.Forbidden("No tienes este juego")
	}

	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Juego no encontrado")
		}
		return nil, fmt.Errorf("lookup game: %w", err)
	}

	// every delivery attempt leaves a trace
	if err := s.downloadRepo.Log(ctx, &model.DownloadLog{
		UserID:    user.ID,
		GameID:    gameID,
		IPAddress: clientIP,
	}); err != nil {
		return nil, fmt.Errorf("log download: %w", err)
	}

	if game.DownloadKind == model.DownloadLink {
		return &DownloadResult{Delivery: DeliverRedirect, URL: game.PackageURL}, nil
	}

	// remotely stored archives are fetched straight from the CDN
	if strings.HasPrefix(game.PackageURL, "http://") || strings.HasPrefix(game.PackageURL, "https://") {
		return &DownloadResult{Delivery: DeliverRedirect, URL: game.PackageURL}, nil
	}

	filePath := strings.TrimPrefix(game.PackageURL, "/")
	if _, err := os.Stat(filePath); err != nil {
		s.logger.Warn().Str("path", filePath).Uint("game_id", gameID).Msg("package file missing on disk")
		return nil, apperr.NotFound("Archivo no encontrado")
	}

	s.logger.Info().Uint("game_id", gameID).Uint("user_id", user.ID).Msg("game download served")

	return &DownloadResult{
		Delivery: DeliverLocalFile,
		FilePath: filePath,
		Filename: game.Title + ".zip",
	}, nil
}
