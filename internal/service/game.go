package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/Aazukvid2000/Pyxolotl/internal/dto"
	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"github.com/Aazukvid2000/Pyxolotl/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// PublishUploads groups the file parts of a publish submission.
type PublishUploads struct {
	Cover       *multipart.FileHeader
	Screenshots []*multipart.FileHeader
	Trailer     *multipart.FileHeader
	Archive     *multipart.FileHeader
}

type GameService interface {
	Publish(ctx context.Context, developer *model.User, req *dto.PublishGameRequest, uploads *PublishUploads) (*dto.GameResponse, error)
	Catalog(ctx context.Context, q *dto.CatalogQuery) ([]*dto.GameSummary, error)
	Detail(ctx context.Context, gameID uint, viewer *model.User) (*dto.GameResponse, error)
	PendingReview(ctx context.Context) ([]*dto.GameResponse, error)
	Moderate(ctx context.Context, admin *model.User, gameID uint, req *dto.ModerationRequest) (*dto.Message, error)
	ClaimFree(ctx context.Context, user *model.User, gameID uint) (*dto.Message, error)
}

type gameServiceImpl struct {
	db          *gorm.DB
	adminCfg    config.Admin
	pagCfg      config.Pagination
	gameRepo    repository.GameRepository
	libraryRepo repository.LibraryRepository
	userRepo    repository.UserRepository
	media       MediaService
	notifier    NotificationService
	logger      zerolog.Logger
}

func NewGameService(
	db *gorm.DB,
	adminCfg config.Admin,
	pagCfg config.Pagination,
	gameRepo repository.GameRepository,
	libraryRepo repository.LibraryRepository,
	userRepo repository.UserRepository,
	media MediaService,
	notifier NotificationService,
	logger zerolog.Logger,
) GameService {
	return &gameServiceImpl{
		db:          db,
		adminCfg:    adminCfg,
		pagCfg:      pagCfg,
		gameRepo:    gameRepo,
		libraryRepo: libraryRepo,
		userRepo:    userRepo,
		media:       media,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *gameServiceImpl) Publish(ctx context.Context, developer *model.User, req *dto.PublishGameRequest, uploads *PublishUploads) (*dto.GameResponse, error) {
	if uploads.Cover == nil {
		return nil, apperr.Validation("Debes subir una portada")
	}
	if len(uploads.Screenshots) == 0 {
		return nil, apperr.Validation("Debes subir al menos una captura de pantalla")
	}

	kind := model.DownloadKind(req.DownloadKind)
	switch kind {
	case model.DownloadFile:
		if uploads.Archive == nil {
			return nil, apperr.Validation("Debes subir el archivo del juego")
		}
	case model.DownloadLink:
		if req.ExternalLink == "" {
			return nil, apperr.Validation("Debes proporcionar un link externo")
		}
	}

	game := &model.Game{
		Title:        req.Title,
		Description:  req.Description,
		Genre:        req.Genre,
		Price:        req.Price,
		Requirements: req.Requirements,
		DeveloperID:  developer.ID,
		State:        model.StateInReview,
		DownloadKind: kind,
		CoverURL:     "temp", // replaced once the row has an id for the asset folder
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.gameRepo.Create(ctx, tx, game); err != nil {
			return fmt.Errorf("create game: %w", err)
		}

		coverURL, err := s.media.SaveCover(ctx, uploads.Cover, game.ID)
		if err != nil {
			return err
		}
		game.CoverURL = coverURL

		screenshotURLs := make([]string, 0, len(uploads.Screenshots))
		for _, shot := range uploads.Screenshots {
			url, err := s.media.SaveScreenshot(ctx, shot, game.ID)
			if err != nil {
				return err
			}
			screenshotURLs = append(screenshotURLs, url)
		}

		encoded, err := json.Marshal(screenshotURLs)
		if err != nil {
			return fmt.Errorf("encode screenshot urls: %w", err)
		}
		game.ScreenshotURLs = string(encoded)

		if uploads.Trailer != nil {
			trailerURL, err := s.media.SaveTrailer(ctx, uploads.Trailer, game.ID)
			if err != nil {
				return err
			}
			game.TrailerURL = trailerURL
		}

		if kind == model.DownloadFile {
			packageURL, sizeMB, err := s.media.SaveGameArchive(ctx, uploads.Archive, game.ID)
			if err != nil {
				return err
			}
			game.PackageURL = packageURL
			game.SizeMB = sizeMB
		} else {
			game.PackageURL = req.ExternalLink
		}

		if err := s.gameRepo.Update(ctx, tx, game); err != nil {
			return fmt.Errorf("update game assets: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Uint("game_id", game.ID).
		Str("title", game.Title).
		Str("developer", developer.Email).
		Msg("game submitted for review")

	return dto.NewGameResponse(game), nil
}

func (s *gameServiceImpl) Catalog(ctx context.Context, q *dto.CatalogQuery) ([]*dto.GameSummary, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = s.pagCfg.DefaultPageSize
	}
	if perPage > s.pagCfg.MaxPageSize {
		perPage = s.pagCfg.MaxPageSize
	}

	filter := repository.CatalogFilter{
		Search:   q.Search,
		Genre:    q.Genre,
		PriceMin: q.PriceMin,
		PriceMax: q.PriceMax,
		FreeOnly: q.FreeOnly,
		SortBy:   q.SortBy,
		SortAsc:  q.SortOrder == "asc",
		Offset:   (page - 1) * perPage,
		Limit:    perPage,
	}

	games, err := s.gameRepo.Catalog(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}

	summaries := make([]*dto.GameSummary, len(games))
	for i, g := range games {
		summaries[i] = dto.NewGameSummary(g)
	}

	return summaries, nil
}

func (s *gameServiceImpl) Detail(ctx context.Context, gameID uint, viewer *model.User) (*dto.GameResponse, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Juego no encontrado")
		}
		return nil, fmt.Errorf("lookup game: %w", err)
	}

	// unapproved games are only visible to their developer and to admins
	if game.State != model.StateApproved {
		isOwner := viewer != nil && viewer.ID == game.DeveloperID
		if !isOwner && !IsAdmin(viewer, s.adminCfg.AllowedEmails) {
			return nil, apperr.NotFound("Juego no disponible")
		}
	}

	return dto.NewGameResponse(game), nil
}

func (s *gameServiceImpl) PendingReview(ctx context.Context) ([]*dto.GameResponse, error) {
	games, err := s.gameRepo.FindByState(ctx, model.StateInReview)
	if err != nil {
		return nil, fmt.Errorf("list pending games: %w", err)
	}

	out := make([]*dto.GameResponse, len(games))
	for i, g := range games {
		out[i] = dto.NewGameResponse(g)
	}

	return out, nil
}

func (s *gameServiceImpl) Moderate(ctx context.Context, admin *model.User, gameID uint, req *dto.ModerationRequest) (*dto.Message, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Juego no encontrado")
		}
		return nil, fmt.Errorf("lookup game: %w", err)
	}

	if game.State != model.StateInReview {
		return nil, apperr.Conflict("El juego ya fue revisado")
	}

	if !req.Approved && strings.TrimSpace(req.RejectReason) == "" {
		return nil, apperr.Validation("Debes indicar el motivo del rechazo")
	}

	var message string
	if req.Approved {
		now := time.Now()
		game.State = model.StateApproved
		game.ApprovedByID = &admin.ID
		game.ApprovedAt = &now
		game.RejectReason = ""
		message = "Juego aprobado y publicado exitosamente"
	} else {
		game.State = model.StateRejected
		game.RejectReason = req.RejectReason
		message = "Juego rechazado. Desarrollador notificado."
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.gameRepo.Update(ctx, tx, game)
	})
	if err != nil {
		return nil, fmt.Errorf("update game state: %w", err)
	}

	// notify after the state change is durable
	developer, err := s.userRepo.FindByID(ctx, game.DeveloperID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("developer_id", game.DeveloperID).Msg("could not load developer for notification")
	} else if req.Approved {
		s.notifier.SendGameApproved(ctx, developer.Email, developer.Name, game.Title)
	} else {
		s.notifier.SendGameRejected(ctx, developer.Email, developer.Name, game.Title, game.RejectReason)
	}

	s.logger.Info().
		Uint("game_id", game.ID).
		Bool("approved", req.Approved).
		Str("admin", admin.Email).
		Msg("game moderated")

	return dto.OK(message), nil
}

func (s *gameServiceImpl) ClaimFree(ctx context.Context, user *model.User, gameID uint) (*dto.Message, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup game: %w", err)
	}
	if err != nil || game.Price != 0 || game.State != model.StateApproved {
		return nil, apperr.NotFound("Juego gratuito no encontrado")
	}

	owned, err := s.libraryRepo.Exists(ctx, user.ID, gameID)
	if err != nil {
		return nil, fmt.Errorf("check library: %w", err)
	}
	if owned {
		return nil, apperr.Conflict("Ya tienes este juego en tu biblioteca")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.libraryRepo.Grant(ctx, tx, &model.LibraryItem{
			UserID: user.ID,
			GameID: gameID,
			IsFree: true,
		}); err != nil {
			return fmt.Errorf("grant library item: %w", err)
		}

		if err := s.gameRepo.BumpDownload(ctx, tx, gameID); err != nil {
			return fmt.Errorf("bump download count: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint("game_id", gameID).Str("user", user.Email).Msg("free game claimed")

	return dto.OK("Juego agregado a tu biblioteca. Ya puedes descargarlo."), nil
}
