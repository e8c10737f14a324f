package handler

import (
	"net/http"
	"strconv"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/dto"
	"github.com/Aazukvid2000/Pyxolotl/internal/middleware"
	"github.com/Aazukvid2000/Pyxolotl/internal/service"
	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.adminService.Stats(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	var q dto.AdminUserQuery
	if err := c.Bind(&q); err != nil {
		return apperr.Validation("Parámetros de búsqueda inválidos")
	}

	users, err := h.adminService.ListUsers(ctx, &q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) ListGames(c echo.Context) error {
	ctx := c.Request().Context()

	var q dto.AdminGameQuery
	if err := c.Bind(&q); err != nil {
		return apperr.Validation("Parámetros de búsqueda inválidos")
	}

	games, err := h.adminService.ListGames(ctx, &q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, games)
}

func (h *AdminHandler) DeleteGame(c echo.Context) error {
	ctx := c.Request().Context()

	gameID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.adminService.DeleteGame(ctx, gameID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	admin := middleware.CurrentUser(c)

	userID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	// games go with the user unless explicitly kept
	deleteGames := true
	if raw := c.QueryParam("eliminar_juegos"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return apperr.Validation("Parámetro eliminar_juegos inválido")
		}
		deleteGames = parsed
	}

	resp, err := h.adminService.DeleteUser(ctx, admin, userID, deleteGames)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) DeleteUserGames(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.adminService.DeleteUserGames(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) PurgeUnverified(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.adminService.PurgeUnverified(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}
