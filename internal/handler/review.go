package handler

import (
	"net/http"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/dto"
	"github.com/Aazukvid2000/Pyxolotl/internal/middleware"
	"github.com/Aazukvid2000/Pyxolotl/internal/service"
	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	var req dto.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Datos de entrada inválidos")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.reviewService.Create(ctx, user, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}

// ListByGame serves the public review list, mounted under the game routes.
func (h *ReviewHandler) ListByGame(c echo.Context) error {
	ctx := c.Request().Context()

	gameID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	reviews, err := h.reviewService.ListByGame(ctx, gameID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	reviewID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	msg, err := h.reviewService.Delete(ctx, user, reviewID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, msg)
}
