package handler

import (
	"net/http"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/dto"
	"github.com/Aazukvid2000/Pyxolotl/internal/middleware"
	"github.com/Aazukvid2000/Pyxolotl/internal/service"
	"github.com/labstack/echo/v4"
)

type GameHandler struct {
	gameService service.GameService
}

func NewGameHandler(gameService service.GameService) *GameHandler {
	return &GameHandler{
		gameService: gameService,
	}
}

func (h *GameHandler) Publish(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	var req dto.PublishGameRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Datos de entrada inválidos")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return apperr.Validation("Formulario multipart inválido")
	}

	uploads := &service.PublishUploads{
		Screenshots: form.File["screenshots"],
	}
	if files := form.File["portada"]; len(files) > 0 {
		uploads.Cover = files[0]
	}
	if files := form.File["trailer"]; len(files) > 0 {
		uploads.Trailer = files[0]
	}
	if files := form.File["archivo_juego"]; len(files) > 0 {
		uploads.Archive = files[0]
	}

	resp, err := h.gameService.Publish(ctx, user, &req, uploads)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *GameHandler) Catalog(c echo.Context) error {
	ctx := c.Request().Context()

	var q dto.CatalogQuery
	if err := c.Bind(&q); err != nil {
		return apperr.Validation("Parámetros de búsqueda inválidos")
	}

	games, err := h.gameService.Catalog(ctx, &q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, games)
}

func (h *GameHandler) Detail(c echo.Context) error {
	ctx := c.Request().Context()

	gameID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.gameService.Detail(ctx, gameID, middleware.CurrentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *GameHandler) PendingReview(c echo.Context) error {
	ctx := c.Request().Context()

	games, err := h.gameService.PendingReview(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, games)
}

func (h *GameHandler) Moderate(c echo.Context) error {
	ctx := c.Request().Context()
	admin := middleware.CurrentUser(c)

	gameID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.ModerationRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Datos de entrada inválidos")
	}

	msg, err := h.gameService.Moderate(ctx, admin, gameID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, msg)
}

func (h *GameHandler) ClaimFree(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	gameID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	msg, err := h.gameService.ClaimFree(ctx, user, gameID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, msg)
}
