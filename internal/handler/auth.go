package handler

import (
	"net/http"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/dto"
	"github.com/Aazukvid2000/Pyxolotl/internal/middleware"
	"github.com/Aazukvid2000/Pyxolotl/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService service.AuthService
	frontendURL string
}

func NewAuthHandler(authService service.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		frontendURL: frontendURL,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Datos de entrada inválidos")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	msg, err := h.authService.Register(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, msg)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Datos de entrada inválidos")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.authService.Login(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, token)
}

// VerifyEmailPage serves the human-facing confirmation page linked from the
// verification email. Outcomes render as HTML, never as JSON errors.
func (h *AuthHandler) VerifyEmailPage(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.authService.VerifyEmailPage(ctx, c.QueryParam("token"))
	if err != nil {
		return err
	}

	switch result.Status {
	case service.VerifyPageAlreadyVerified:
		return c.HTML(http.StatusOK, verifyAlreadyPage(h.frontendURL))
	case service.VerifyPageError:
		return c.HTML(http.StatusOK, verifyErrorPage(h.frontendURL, result.Reason))
	default:
		return c.HTML(http.StatusOK, verifySuccessPage(h.frontendURL, result.UserName))
	}
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	ctx := c.Request().Context()

	msg, err := h.authService.VerifyEmail(ctx, c.Param("token"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, msg)
}

func (h *AuthHandler) Profile(c echo.Context) error {
	user := middleware.CurrentUser(c)

	return c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	var req dto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Datos de entrada inválidos")
	}

	// avatar is optional, only uploaded when the user picks a new image
	avatar, err := c.FormFile("avatar")
	if err != nil {
		avatar = nil
	}

	resp, err := h.authService.UpdateProfile(ctx, user, &req, avatar)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	var req dto.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Datos de entrada inválidos")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	msg, err := h.authService.ChangePassword(ctx, user, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, msg)
}

func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	email := c.QueryParam("email")
	if email == "" {
		return apperr.Validation("Debes proporcionar un correo")
	}

	msg, err := h.authService.RequestPasswordReset(ctx, email)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, msg)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	password := c.QueryParam("nueva_password")
	if password == "" {
		return apperr.Validation("Debes proporcionar la nueva contraseña")
	}

	msg, err := h.authService.ResetPassword(ctx, c.Param("token"), password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, msg)
}
