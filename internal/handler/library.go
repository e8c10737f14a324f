package handler

import (
	"net/http"

	"github.com/Aazukvid2000/Pyxolotl/internal/middleware"
	"github.com/Aazukvid2000/Pyxolotl/internal/service"
	"github.com/labstack/echo/v4"
)

type LibraryHandler struct {
	libraryService service.LibraryService
}

func NewLibraryHandler(libraryService service.LibraryService) *LibraryHandler {
	return &LibraryHandler{
		libraryService: libraryService,
	}
}

func (h *LibraryHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	items, err := h.libraryService.List(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

func (h *LibraryHandler) Download(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	gameID, err := uintParam(c, "juego_id")
	if err != nil {
		return err
	}

	result, err := h.libraryService.Download(ctx, user, gameID, c.RealIP())
	if err != nil {
		return err
	}

	if result.Delivery == service.DeliverRedirect {
		return c.Redirect(http.StatusFound, result.URL)
	}

	return c.Attachment(result.FilePath, result.Filename)
}
