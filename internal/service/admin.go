package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/client"
	"github.com/Aazukvid2000/Pyxolotl/internal/dto"
	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"github.com/Aazukvid2000/Pyxolotl/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const defaultAdminPageSize = 50

type AdminService interface {
	Stats(ctx context.Context) (*dto.AdminStats, error)
	ListUsers(ctx context.Context, q *dto.AdminUserQuery) ([]*dto.AdminUser, error)
	ListGames(ctx context.Context, q *dto.AdminGameQuery) ([]*dto.AdminGame, error)
	DeleteGame(ctx context.Context, gameID uint) (*dto.DeleteResponse, error)
	DeleteUser(ctx context.Context, admin *model.User, userID uint, deleteGames bool) (*dto.DeleteResponse, error)
	DeleteUserGames(ctx context.Context, userID uint) (*dto.DeleteResponse, error)
	PurgeUnverified(ctx context.Context) (*dto.DeleteResponse, error)
}

type adminServiceImpl struct {
	db           *gorm.DB
	userRepo     repository.UserRepository
	tokenRepo    repository.TokenRepository
	gameRepo     repository.GameRepository
	reviewRepo   repository.ReviewRepository
	cartRepo     repository.CartRepository
	orderRepo    repository.OrderRepository
	libraryRepo  repository.LibraryRepository
	downloadRepo repository.DownloadRepository
	media        MediaService
	logger       zerolog.Logger
}

func NewAdminService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	gameRepo repository.GameRepository,
	reviewRepo repository.ReviewRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	libraryRepo repository.LibraryRepository,
	downloadRepo repository.DownloadRepository,
	media MediaService,
	logger zerolog.Logger,
) AdminService {
	return &adminServiceImpl{
		db:           db,
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		gameRepo:     gameRepo,
		reviewRepo:   reviewRepo,
		cartRepo:     cartRepo,
		orderRepo:    orderRepo,
		libraryRepo:  libraryRepo,
		downloadRepo: downloadRepo,
		media:        media,
		logger:       logger,
	}
}

func (s *adminServiceImpl) Stats(ctx context.Context) (*dto.AdminStats, error) {
	totalUsers, err := s.userRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	verifiedUsers, err := s.userRepo.CountVerified(ctx)
	if err != nil {
		return nil, fmt.Errorf("count verified users: %w", err)
	}

	totalGames, err := s.gameRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count games: %w", err)
	}

	approvedGames, err := s.gameRepo.CountByState(ctx, model.StateApproved)
	if err != nil {
		return nil, fmt.Errorf("count approved games: %w", err)
	}

	totalOrders, err := s.orderRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	totalDownloads, err := s.downloadRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count downloads: %w", err)
	}

	return &dto.AdminStats{
		TotalUsers:     totalUsers,
		VerifiedUsers:  verifiedUsers,
		TotalGames:     totalGames,
		ApprovedGames:  approvedGames,
		TotalOrders:    totalOrders,
		TotalDownloads: totalDownloads,
	}, nil
}

func (s *adminServiceImpl) ListUsers(ctx context.Context, q *dto.AdminUserQuery) ([]*dto.AdminUser, error) {
	skip, limit := clampPage(q.Skip, q.Limit)

	users, err := s.userRepo.List(ctx, skip, limit, q.Verified)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	result := make([]*dto.AdminUser, 0, len(users))
	for _, user := range users {
		gameCount, err := s.gameRepo.CountByDeveloper(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("count games of user %d: %w", user.ID, err)
		}

		orderCount, err := s.orderRepo.CountByUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("count orders of user %d: %w", user.ID, err)
		}

		result = append(result, &dto.AdminUser{
			ID:          user.ID,
			Name:        user.Name,
			Email:       user.Email,
			AccountType: user.AccountType,
			Verified:    user.Verified,
			GameCount:   gameCount,
			OrderCount:  orderCount,
		})
	}

	return result, nil
}

func (s *adminServiceImpl) ListGames(ctx context.Context, q *dto.AdminGameQuery) ([]*dto.AdminGame, error) {
	skip, limit := clampPage(q.Skip, q.Limit)

	games, err := s.gameRepo.List(ctx, skip, limit, q.State, q.DeveloperID)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	developerNames := make(map[uint]string)

	result := make([]*dto.AdminGame, 0, len(games))
	for _, game := range games {
		name, ok := developerNames[game.DeveloperID]
		if !ok {
			developer, err := s.userRepo.FindByID(ctx, game.DeveloperID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				// developer account deleted with its games kept
				name = "Desconocido"
			case err != nil:
				return nil, fmt.Errorf("lookup developer %d: %w", game.DeveloperID, err)
			default:
				name = developer.Name
			}
			developerNames[game.DeveloperID] = name
		}

		reviewCount, err := s.reviewRepo.CountByGame(ctx, game.ID)
		if err != nil {
			return nil, fmt.Errorf("count reviews of game %d: %w", game.ID, err)
		}

		result = append(result, &dto.AdminGame{
			ID:            game.ID,
			Title:         game.Title,
			DeveloperName: name,
			Price:         game.Price,
			State:         game.State,
			Downloads:     game.DownloadCount,
			ReviewCount:   reviewCount,
		})
	}

	return result, nil
}

func (s *adminServiceImpl) DeleteGame(ctx context.Context, gameID uint) (*dto.DeleteResponse, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Juego no encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup game: %w", err)
	}

	var (
		rows  int64
		files int
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		rows, files, txErr = s.deleteGameCascade(ctx, tx, game)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Uint("game_id", gameID).
		Int64("rows", rows).
		Int("files", files).
		Msg("game deleted")

	return &dto.DeleteResponse{
		Success:      true,
		Message:      fmt.Sprintf("Juego '%s' eliminado correctamente", game.Title),
		RowsDeleted:  rows,
		FilesDeleted: files,
	}, nil
}

func (s *adminServiceImpl) DeleteUser(ctx context.Context, admin *model.User, userID uint, deleteGames bool) (*dto.DeleteResponse, error) {
	if admin.ID == userID {
		return nil, apperr.Forbidden("No puedes eliminarte a ti mismo")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Usuario no encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	// snapshot taken before the transaction, deletes below go by id
	var games []*model.Game
	if deleteGames {
		games, err = s.gameRepo.FindByDeveloper(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list games of user: %w", err)
		}
	}

	var (
		rows  int64
		files int
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, txErr := s.tokenRepo.DeleteByUser(ctx, tx, userID)
		if txErr != nil {
			return fmt.Errorf("delete tokens: %w", txErr)
		}
		rows += n

		n, txErr = s.reviewRepo.DeleteByUser(ctx, tx, userID)
		if txErr != nil {
			return fmt.Errorf("delete reviews: %w", txErr)
		}
		rows += n

		n, txErr = s.cartRepo.DeleteByUser(ctx, tx, userID)
		if txErr != nil {
			return fmt.Errorf("delete cart items: %w", txErr)
		}
		rows += n

		n, txErr = s.libraryRepo.DeleteByUser(ctx, tx, userID)
		if txErr != nil {
			return fmt.Errorf("delete library items: %w", txErr)
		}
		rows += n

		n, txErr = s.downloadRepo.DeleteByUser(ctx, tx, userID)
		if txErr != nil {
			return fmt.Errorf("delete download logs: %w", txErr)
		}
		rows += n

		orderIDs, txErr := s.orderRepo.IDsByUser(ctx, tx, userID)
		if txErr != nil {
			return fmt.Errorf("list orders of user: %w", txErr)
		}

		n, txErr = s.orderRepo.DeleteLinesByOrders(ctx, tx, orderIDs)
		if txErr != nil {
			return fmt.Errorf("delete order lines: %w", txErr)
		}
		rows += n

		n, txErr = s.orderRepo.DeleteByUser(ctx, tx, userID)
		if txErr != nil {
			return fmt.Errorf("delete orders: %w", txErr)
		}
		rows += n

		for _, game := range games {
			gameRows, gameFiles, txErr := s.deleteGameCascade(ctx, tx, game)
			if txErr != nil {
				return txErr
			}
			rows += gameRows
			files += gameFiles
		}

		if user.AvatarURL != "" && s.deleteAsset(ctx, user.AvatarURL, client.ResourceImage) {
			files++
		}

		n, txErr = s.userRepo.Delete(ctx, tx, userID)
		if txErr != nil {
			return fmt.Errorf("delete user: %w", txErr)
		}
		rows += n

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Bool("games_deleted", deleteGames).
		Int64("rows", rows).
		Int("files", files).
		Msg("user deleted")

	return &dto.DeleteResponse{
		Success:      true,
		Message:      fmt.Sprintf("Usuario '%s' eliminado correctamente", user.Name),
		RowsDeleted:  rows,
		FilesDeleted: files,
	}, nil
}

func (s *adminServiceImpl) DeleteUserGames(ctx context.Context, userID uint) (*dto.DeleteResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Usuario no encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	games, err := s.gameRepo.FindByDeveloper(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list games of user: %w", err)
	}
	if len(games) == 0 {
		return &dto.DeleteResponse{
			Success: true,
			Message: "El usuario no tiene juegos publicados",
		}, nil
	}

	var (
		rows  int64
		files int
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, game := range games {
			gameRows, gameFiles, txErr := s.deleteGameCascade(ctx, tx, game)
			if txErr != nil {
				return txErr
			}
			rows += gameRows
			files += gameFiles
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Int("games", len(games)).
		Int64("rows", rows).
		Int("files", files).
		Msg("user games deleted")

	return &dto.DeleteResponse{
		Success:      true,
		Message:      fmt.Sprintf("%d juegos de '%s' eliminados", len(games), user.Name),
		RowsDeleted:  rows,
		FilesDeleted: files,
	}, nil
}

func (s *adminServiceImpl) PurgeUnverified(ctx context.Context) (*dto.DeleteResponse, error) {
	users, err := s.userRepo.FindUnverified(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unverified users: %w", err)
	}
	if len(users) == 0 {
		return &dto.DeleteResponse{
			Success: true,
			Message: "No hay usuarios sin verificar",
		}, nil
	}

	var (
		rows    int64
		files   int
		deleted int
		skipped int
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, user := range users {
			gameCount, txErr := s.gameRepo.CountByDeveloper(ctx, user.ID)
			if txErr != nil {
				return fmt.Errorf("count games of user %d: %w", user.ID, txErr)
			}

			orderCount, txErr := s.orderRepo.CountByUser(ctx, user.ID)
			if txErr != nil {
				return fmt.Errorf("count orders of user %d: %w", user.ID, txErr)
			}

			// unverified accounts are assumed to own nothing, but nothing
			// enforces that at write time, so skip any that do
			if gameCount > 0 || orderCount > 0 {
				s.logger.Warn().
					Uint("user_id", user.ID).
					Int64("games", gameCount).
					Int64("orders", orderCount).
					Msg("unverified user with activity skipped")
				skipped++
				continue
			}

			n, txErr := s.tokenRepo.DeleteByUser(ctx, tx, user.ID)
			if txErr != nil {
				return fmt.Errorf("delete tokens: %w", txErr)
			}
			rows += n

			if user.AvatarURL != "" && s.deleteAsset(ctx, user.AvatarURL, client.ResourceImage) {
				files++
			}

			n, txErr = s.userRepo.Delete(ctx, tx, user.ID)
			if txErr != nil {
				return fmt.Errorf("delete user: %w", txErr)
			}
			rows += n
			deleted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("deleted", deleted).
		Int("skipped", skipped).
		Int64("rows", rows).
		Msg("unverified users purged")

	message := fmt.Sprintf("%d usuarios no verificados eliminados", deleted)
	if skipped > 0 {
		message = fmt.Sprintf("%s (%d omitidos por tener juegos o compras)", message, skipped)
	}

	return &dto.DeleteResponse{
		Success:      true,
		Message:      message,
		RowsDeleted:  rows,
		FilesDeleted: files,
	}, nil
}

// deleteGameCascade removes every row referencing the game, its stored
// assets and finally the game row itself. Zero-row child deletes are fine,
// re-running after a partial cleanup must not fail.
func (s *adminServiceImpl) deleteGameCascade(ctx context.Context, tx *gorm.DB, game *model.Game) (int64, int, error) {
	var rows int64

	n, err := s.reviewRepo.DeleteByGame(ctx, tx, game.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("delete reviews of game: %w", err)
	}
	rows += n

	n, err = s.orderRepo.DeleteLinesByGame(ctx, tx, game.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("delete order lines of game: %w", err)
	}
	rows += n

	n, err = s.cartRepo.DeleteByGame(ctx, tx, game.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("delete cart items of game: %w", err)
	}
	rows += n

	n, err = s.libraryRepo.DeleteByGame(ctx, tx, game.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("delete library items of game: %w", err)
	}
	rows += n

	n, err = s.downloadRepo.DeleteByGame(ctx, tx, game.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("delete download logs of game: %w", err)
	}
	rows += n

	files := s.deleteGameAssets(ctx, game)

	n, err = s.gameRepo.Delete(ctx, tx, game.ID)
	if err != nil {
		return 0, files, fmt.Errorf("delete game: %w", err)
	}
	rows += n

	return rows, files, nil
}

// deleteGameAssets removes the game's stored media. Failures are logged by
// the media layer and left uncounted, they never abort the deletion.
func (s *adminServiceImpl) deleteGameAssets(ctx context.Context, game *model.Game) int {
	files := 0

	if s.deleteAsset(ctx, game.CoverURL, client.ResourceImage) {
		files++
	}

	if game.ScreenshotURLs != "" {
		var screenshots []string
		if err := json.Unmarshal([]byte(game.ScreenshotURLs), &screenshots); err != nil {
			s.logger.Warn().Err(err).Uint("game_id", game.ID).Msg("unreadable screenshot list")
		}
		for _, url := range screenshots {
			if s.deleteAsset(ctx, url, client.ResourceImage) {
				files++
			}
		}
	}

	if game.TrailerURL != "" && s.deleteAsset(ctx, game.TrailerURL, client.ResourceVideo) {
		files++
	}

	// external links have nothing stored on our side
	if game.DownloadKind == model.DownloadFile && game.PackageURL != "" {
		if s.deleteAsset(ctx, game.PackageURL, client.ResourceRaw) {
			files++
		}
	}

	return files
}

func (s *adminServiceImpl) deleteAsset(ctx context.Context, assetURL, resourceType string) bool {
	if assetURL == "" {
		return false
	}
	if strings.Contains(assetURL, "cloudinary") {
		return s.media.DeleteRemoteAsset(ctx, assetURL, resourceType)
	}
	return s.media.DeleteLocalFile(assetURL)
}

func clampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultAdminPageSize
	}
	return skip, limit
}
