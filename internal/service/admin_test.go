package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/dto"
	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dev := env.createUser(t, "Dev", "dev@example.com", model.AccountDeveloper, true)
	buyer := env.createUser(t, "Ana", "ana@example.com", model.AccountBuyer, false)

	approved := env.createGame(t, dev.ID, "Cueva Estelar", 10, model.StateApproved)
	env.createGame(t, dev.ID, "Sin Revisar", 10, model.StateInReview)

	require.NoError(t, env.db.Create(&model.Order{
		UserID:        buyer.ID,
		Subtotal:      10,
		Tax:           1.6,
		Total:         11.6,
		Status:        model.OrderCompleted,
		PaymentMethod: "tarjeta",
		OrderNumber:   "PX-TEST1",
	}).Error)
	require.NoError(t, env.db.Create(&model.DownloadLog{
		UserID: buyer.ID,
		GameID: approved.ID,
	}).Error)

	stats, err := env.admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.VerifiedUsers)
	assert.Equal(t, int64(2), stats.TotalGames)
	assert.Equal(t, int64(1), stats.ApprovedGames)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.TotalDownloads)
}

func TestAdminListUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dev := env.createUser(t, "Dev", "dev@example.com", model.AccountDeveloper, true)
	buyer := env.createUser(t, "Ana", "ana@example.com", model.AccountBuyer, true)
	env.createUser(t, "Luis", "luis@example.com", model.AccountBuyer, false)

	env.createGame(t, dev.ID, "Cueva Estelar", 10, model.StateApproved)
	env.createGame(t, dev.ID, "Nébula", 10, model.StateInReview)

	require.NoError(t, env.db.Create(&model.Order{
		UserID:        buyer.ID,
		Subtotal:      10,
		Tax:           1.6,
		Total:         11.6,
		Status:        model.OrderCompleted,
		PaymentMethod: "tarjeta",
		OrderNumber:   "PX-TEST1",
	}).Error)

	users, err := env.admin.ListUsers(ctx, &dto.AdminUserQuery{Skip: -3})
	require.NoError(t, err)
	require.Len(t, users, 3)

	byEmail := map[string]*dto.AdminUser{}
	for _, u := range users {
		byEmail[u.Email] = u
	}
	assert.Equal(t, int64(2), byEmail["dev@example.com"].GameCount)
	assert.Equal(t, int64(0), byEmail["dev@example.com"].OrderCount)
	assert.Equal(t, int64(1), byEmail["ana@example.com"].OrderCount)
	assert.False(t, byEmail["luis@example.com"].Verified)

	unverified := false
	users, err = env.admin.ListUsers(ctx, &dto.AdminUserQuery{Verified: &unverified})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "luis@example.com", users[0].Email)
}

func TestAdminListGames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dev := env.createUser(t, "Marisol", "marisol@example.com", model.AccountDeveloper, true)
	ghost := env.createUser(t, "Fantasma", "fantasma@example.com", model.AccountDeveloper, true)
	buyer := env.createUser(t, "Ana", "ana@example.com", model.AccountBuyer, true)

	approved := env.createGame(t, dev.ID, "Cueva Estelar", 10, model.StateApproved)
	pending := env.createGame(t, dev.ID, "Sin Revisar", 10, model.StateInReview)
	orphan := env.createGame(t, ghost.ID, "Huérfano", 5, model.StateApproved)

	require.NoError(t, env.db.Create(&model.Review{
		UserID: buyer.ID,
		GameID: approved.ID,
		Rating: 5,
		Text:   "Excelente plataformero",
	}).Error)

	// developer row gone, its games kept
	require.NoError(t, env.db.Delete(&model.User{}, ghost.ID).Error)

	games, err := env.admin.ListGames(ctx, &dto.AdminGameQuery{})
	require.NoError(t, err)
	require.Len(t, games, 3)

	byID := map[uint]*dto.AdminGame{}
	for _, g := range games {
		byID[g.ID] = g
	}
	assert.Equal(t, "Marisol", byID[approved.ID].DeveloperName)
	assert.Equal(t, int64(1), byID[approved.ID].ReviewCount)
	assert.Equal(t, "Desconocido", byID[orphan.ID].DeveloperName)

	games, err = env.admin.ListGames(ctx, &dto.AdminGameQuery{State: model.StateInReview})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, pending.ID, games[0].ID)

	games, err = env.admin.ListGames(ctx, &dto.AdminGameQuery{DeveloperID: dev.ID})
	require.NoError(t, err)
	assert.Len(t, games, 2)
}

func TestAdminDeleteGame(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dev := env.createUser(t, "Dev", "dev@example.com", model.AccountDeveloper, true)
	ana := env.createUser(t, "Ana", "ana@example.com", model.AccountBuyer, true)
	luis := env.createUser(t, "Luis", "luis@example.com", model.AccountBuyer, true)

	target := env.createGame(t, dev.ID, "Cueva Estelar", 10, model.StateApproved)
	keeper := env.createGame(t, dev.ID, "Nébula", 10, model.StateApproved)

	for _, r := range []*model.Review{
		{UserID: ana.ID, GameID: target.ID, Rating: 5, Text: "Muy bueno"},
		{UserID: luis.ID, GameID: target.ID, Rating: 4, Text: "Me gustó"},
		{UserID: ana.ID, GameID: keeper.ID, Rating: 3, Text: "Regular"},
	} {
		require.NoError(t, env.db.Create(r).Error)
	}

	order := &model.Order{
		UserID:        ana.ID,
		Subtotal:      10,
		Tax:           1.6,
		Total:         11.6,
		Status:        model.OrderCompleted,
		PaymentMethod: "tarjeta",
		OrderNumber:   "PX-TEST1",
	}
	require.NoError(t, env.db.Create(order).Error)
	require.NoError(t, env.db.Create(&model.OrderLine{OrderID: order.ID, GameID: target.ID, Price: 10}).Error)

	require.NoError(t, env.db.Create(&model.CartItem{UserID: luis.ID, GameID: target.ID}).Error)
	env.grantLibrary(t, ana.ID, target.ID, false)
	env.grantLibrary(t, luis.ID, keeper.ID, false)
	require.NoError(t, env.db.Create(&model.DownloadLog{UserID: ana.ID, GameID: target.ID}).Error)

	resp, err := env.admin.DeleteGame(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juego 'Cueva Estelar' eliminado correctamente", resp.Message)
	// 2 reviews + 1 order line + 1 cart item + 1 library item + 1 log + the game
	assert.Equal(t, int64(7), resp.RowsDeleted)
	assert.Equal(t, 0, resp.FilesDeleted)

	_, err = env.games.FindByID(ctx, target.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	// the sibling game and its rows are untouched
	_, err = env.games.FindByID(ctx, keeper.ID)
	require.NoError(t, err)

	var keeperReviews int64
	require.NoError(t, env.db.Model(&model.Review{}).Where("game_id = ?", keeper.ID).Count(&keeperReviews).Error)
	assert.Equal(t, int64(1), keeperReviews)

	// the order itself survives, only its line for the game is gone
	var orders int64
	require.NoError(t, env.db.Model(&model.Order{}).Count(&orders).Error)
	assert.Equal(t, int64(1), orders)

	_, err = env.admin.DeleteGame(ctx, 9999)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	assert.Contains(t, err.Error(), "Juego no encontrado")
}

func TestAdminDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.createUser(t, "Root", "root@example.com", model.AccountAdmin, true)
	dev := env.createUser(t, "Dev", "dev@example.com", model.AccountDeveloper, true)
	ana := env.createUser(t, "Ana", "ana@example.com", model.AccountBuyer, true)

	game := env.createGame(t, dev.ID, "Cueva Estelar", 10, model.StateApproved)

	require.NoError(t, env.db.Create(&model.VerificationToken{
		UserID:    ana.ID,
		Token:     "tok-ana",
		Purpose:   model.TokenEmail,
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error)
	require.NoError(t, env.db.Create(&model.Review{UserID: ana.ID, GameID: game.ID, Rating: 5, Text: "Genial"}).Error)
	require.NoError(t, env.db.Create(&model.CartItem{UserID: ana.ID, GameID: game.ID}).Error)
	env.grantLibrary(t, ana.ID, game.ID, false)
	require.NoError(t, env.db.Create(&model.DownloadLog{UserID: ana.ID, GameID: game.ID}).Error)

	order := &model.Order{
		UserID:        ana.ID,
		Subtotal:      10,
		Tax:           1.6,
		Total:         11.6,
		Status:        model.OrderCompleted,
		PaymentMethod: "tarjeta",
		OrderNumber:   "PX-TEST1",
	}
	require.NoError(t, env.db.Create(order).Error)
	require.NoError(t, env.db.Create(&model.OrderLine{OrderID: order.ID, GameID: game.ID, Price: 10}).Error)

	_, err := env.admin.DeleteUser(ctx, root, root.ID, false)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
	assert.Contains(t, err.Error(), "No puedes eliminarte a ti mismo")

	_, err = env.admin.DeleteUser(ctx, root, 9999, false)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	assert.Contains(t, err.Error(), "Usuario no encontrado")

	resp, err := env.admin.DeleteUser(ctx, root, ana.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Usuario 'Ana' eliminado correctamente", resp.Message)
	// token, review, cart item, library item, log, order line, order, user
	assert.Equal(t, int64(8), resp.RowsDeleted)

	_, err = env.users.FindByID(ctx, ana.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	// ana owned no games, dev's catalog is untouched
	_, err = env.games.FindByID(ctx, game.ID)
	require.NoError(t, err)
}

func TestAdminDeleteDeveloper(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.createUser(t, "Root", "root@example.com", model.AccountAdmin, true)
	dev := env.createUser(t, "Marisol", "marisol@example.com", model.AccountDeveloper, true)
	ana := env.createUser(t, "Ana", "ana@example.com", model.AccountBuyer, true)

	game := env.createGame(t, dev.ID, "Cueva Estelar", 10, model.StateApproved)
	env.grantLibrary(t, ana.ID, game.ID, false)

	resp, err := env.admin.DeleteUser(ctx, root, dev.ID, true)
	require.NoError(t, err)
	// library item + game + user
	assert.Equal(t, int64(3), resp.RowsDeleted)

	_, err = env.games.FindByID(ctx, game.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestAdminDeleteDeveloperKeepingGames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.createUser(t, "Root", "root@example.com", model.AccountAdmin, true)
	dev := env.createUser(t, "Marisol", "marisol@example.com", model.AccountDeveloper, true)
	game := env.createGame(t, dev.ID, "Cueva Estelar", 10, model.StateApproved)

	_, err := env.admin.DeleteUser(ctx, root, dev.ID, false)
	require.NoError(t, err)

	// the game stays listed under an unknown developer
	_, err = env.games.FindByID(ctx, game.ID)
	require.NoError(t, err)

	games, err := env.admin.ListGames(ctx, &dto.AdminGameQuery{})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Desconocido", games[0].DeveloperName)
}

func TestAdminDeleteUserGames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dev := env.createUser(t, "Marisol", "marisol@example.com", model.AccountDeveloper, true)
	buyer := env.createUser(t, "Ana", "ana@example.com", model.AccountBuyer, true)

	resp, err := env.admin.DeleteUserGames(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "El usuario no tiene juegos publicados", resp.Message)
	assert.Equal(t, int64(0), resp.RowsDeleted)

	env.createGame(t, dev.ID, "Cueva Estelar", 10, model.StateApproved)
	env.createGame(t, dev.ID, "Nébula", 10, model.StateInReview)

	resp, err = env.admin.DeleteUserGames(ctx, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, "2 juegos de 'Marisol' eliminados", resp.Message)
	assert.Equal(t, int64(2), resp.RowsDeleted)

	games, err := env.games.FindByDeveloper(ctx, dev.ID)
	require.NoError(t, err)
	assert.Empty(t, games)

	_, err = env.admin.DeleteUserGames(ctx, 9999)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	assert.Contains(t, err.Error(), "Usuario no encontrado")
}

func TestAdminPurgeUnverified(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.admin.PurgeUnverified(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No hay usuarios sin verificar", resp.Message)

	verified := env.createUser(t, "Dev", "dev@example.com", model.AccountDeveloper, true)
	stale := env.createUser(t, "Abandonado", "abandonado@example.com", model.AccountBuyer, false)
	withGame := env.createUser(t, "Conjuego", "conjuego@example.com", model.AccountDeveloper, false)
	withOrder := env.createUser(t, "Concompra", "concompra@example.com", model.AccountBuyer, false)

	require.NoError(t, env.db.Create(&model.VerificationToken{
		UserID:    stale.ID,
		Token:     "tok-stale",
		Purpose:   model.TokenEmail,
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	require.NoError(t, os.MkdirAll("uploads/avatares", 0o755))
	require.NoError(t, os.WriteFile("uploads/avatares/abandonado.png", []byte("png"), 0o644))
	require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", stale.ID).
		Update("avatar_url", "/uploads/avatares/abandonado.png").Error)

	env.createGame(t, withGame.ID, "Cueva Estelar", 10, model.StateApproved)
	require.NoError(t, env.db.Create(&model.Order{
		UserID:        withOrder.ID,
		Subtotal:      10,
		Tax:           1.6,
		Total:         11.6,
		Status:        model.OrderCompleted,
		PaymentMethod: "tarjeta",
		OrderNumber:   "PX-TEST1",
	}).Error)

	resp, err = env.admin.PurgeUnverified(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1 usuarios no verificados eliminados (2 omitidos por tener juegos o compras)", resp.Message)
	// the token and the user row
	assert.Equal(t, int64(2), resp.RowsDeleted)
	assert.Equal(t, 1, resp.FilesDeleted)

	_, err = env.users.FindByID(ctx, stale.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	_, statErr := os.Stat("uploads/avatares/abandonado.png")
	assert.True(t, os.IsNotExist(statErr))

	for _, id := range []uint{verified.ID, withGame.ID, withOrder.ID} {
		_, err = env.users.FindByID(ctx, id)
		require.NoError(t, err)
	}
}
