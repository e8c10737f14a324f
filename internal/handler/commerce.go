package handler

import (
	"net/http"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/dto"
	"github.com/Aazukvid2000/Pyxolotl/internal/middleware"
	"github.com/Aazukvid2000/Pyxolotl/internal/service"
	"github.com/labstack/echo/v4"
)

type CommerceHandler struct {
	commerceService service.CommerceService
}

func NewCommerceHandler(commerceService service.CommerceService) *CommerceHandler {
	return &CommerceHandler{
		commerceService: commerceService,
	}
}

func (h *CommerceHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	gameID, err := uintParam(c, "juego_id")
	if err != nil {
		return err
	}

	msg, err := h.commerceService.AddToCart(ctx, user, gameID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, msg)
}

func (h *CommerceHandler) Cart(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	items, err := h.commerceService.Cart(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

func (h *CommerceHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	itemID, err := uintParam(c, "item_id")
	if err != nil {
		return err
	}

	msg, err := h.commerceService.RemoveFromCart(ctx, user, itemID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, msg)
}

func (h *CommerceHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Datos de entrada inválidos")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.commerceService.Checkout(ctx, user, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *CommerceHandler) CreatePaymentIntent(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	var req dto.CreateIntentRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Datos de entrada inválidos")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.commerceService.CreatePaymentIntent(ctx, user, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CommerceHandler) ConfirmCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	var req dto.ConfirmCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Datos de entrada inválidos")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.commerceService.ConfirmCheckout(ctx, user, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *CommerceHandler) History(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	orders, err := h.commerceService.History(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}
