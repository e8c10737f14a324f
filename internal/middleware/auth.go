package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"github.com/Aazukvid2000/Pyxolotl/internal/repository"
	"github.com/Aazukvid2000/Pyxolotl/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const userContextKey = "current_user"

// CurrentUser returns the authenticated user placed on the context by
// RequireAuth or OptionalAuth, nil for anonymous requests.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}

type Authenticator struct {
	authCfg  config.Auth
	adminCfg config.Admin
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

func NewAuthenticator(
	authCfg config.Auth,
	adminCfg config.Admin,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) *Authenticator {
	return &Authenticator{
		authCfg:  authCfg,
		adminCfg: adminCfg,
		userRepo: userRepo,
		logger:   logger,
	}
}

// RequireAuth resolves the bearer token to a user and stores it on the
// request context. Every failure mode yields the same response so callers
// cannot probe which accounts exist.
func (a *Authenticator) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := a.userFromRequest(c)
			if err != nil {
				a.logger.Debug().Err(err).Str("path", c.Path()).Msg("authentication failed")
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return apperr.Unauthorized("No se pudo validar las credenciales")
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// OptionalAuth works like RequireAuth but treats any failure as an
// anonymous request instead of rejecting it.
func (a *Authenticator) OptionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := a.userFromRequest(c)
			if err != nil {
				a.logger.Debug().Err(err).Str("path", c.Path()).Msg("anonymous request")
				return next(c)
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// RequireVerified rejects users that have not confirmed their email.
// Must run after RequireAuth.
func (a *Authenticator) RequireVerified() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return apperr.Unauthorized("No se pudo validar las credenciales")
			}
			if !user.Verified {
				return apperr.Forbidden("Cuenta no verificada. Por favor verifica tu email.")
			}

			return next(c)
		}
	}
}

// RequireDeveloper allows developer and admin accounts through.
// Must run after RequireVerified.
func (a *Authenticator) RequireDeveloper() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return apperr.Unauthorized("No se pudo validar las credenciales")
			}
			if user.AccountType != model.AccountDeveloper && user.AccountType != model.AccountAdmin {
				return apperr.Forbidden("Se requiere cuenta de desarrollador")
			}

			return next(c)
		}
	}
}

// RequireAdmin allows admin accounts and the configured allowlist through.
// Must run after RequireVerified.
func (a *Authenticator) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return apperr.Unauthorized("No se pudo validar las credenciales")
			}
			if !service.IsAdmin(user, a.adminCfg.AllowedEmails) {
				return apperr.Forbidden("Se requieren permisos de administrador")
			}

			return next(c)
		}
	}
}

func (a *Authenticator) userFromRequest(c echo.Context) (*model.User, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, errors.New("missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("malformed authorization header")
	}

	return a.userFromToken(c.Request().Context(), parts[1])
}

func (a *Authenticator) userFromToken(ctx context.Context, tokenString string) (*model.User, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.authCfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	email, ok := claims["sub"].(string)
	if !ok || email == "" {
		return nil, errors.New("token has no subject")
	}

	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	return user, nil
}
