package server

import (
	"context"
	"net/http"

	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/Aazukvid2000/Pyxolotl/internal/handler"
	"github.com/Aazukvid2000/Pyxolotl/internal/middleware"
	"github.com/Aazukvid2000/Pyxolotl/internal/service"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

type Server struct {
	echo *echo.Echo
	cfg  *config.Config
	auth *middleware.Authenticator

	authHandler     *handler.AuthHandler
	gameHandler     *handler.GameHandler
	reviewHandler   *handler.ReviewHandler
	commerceHandler *handler.CommerceHandler
	libraryHandler  *handler.LibraryHandler
	adminHandler    *handler.AdminHandler
}

func NewServer(
	cfg *config.Config,
	auth *middleware.Authenticator,
	authService service.AuthService,
	gameService service.GameService,
	reviewService service.ReviewService,
	commerceService service.CommerceService,
	libraryService service.LibraryService,
	adminService service.AdminService,
	logger zerolog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = newHTTPErrorHandler(logger)

	e.Use(echomw.Recover())
	e.Use(requestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// locally stored covers, screenshots and avatars
	e.Static("/uploads", cfg.Uploads.Dir)

	s := &Server{
		echo:            e,
		cfg:             cfg,
		auth:            auth,
		authHandler:     handler.NewAuthHandler(authService, cfg.FrontendURL),
		gameHandler:     handler.NewGameHandler(gameService),
		reviewHandler:   handler.NewReviewHandler(reviewService),
		commerceHandler: handler.NewCommerceHandler(commerceService),
		libraryHandler:  handler.NewLibraryHandler(libraryService),
		adminHandler:    handler.NewAdminHandler(adminService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	e := s.echo

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"app":     s.cfg.App.Name,
			"version": s.cfg.App.Version,
			"status":  "online",
		})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	api := e.Group("/api")

	// -------- auth --------
	auth := api.Group("/auth")
	auth.POST("/registro", s.authHandler.Register)
	auth.POST("/login", s.authHandler.Login)
	auth.GET("/verificar", s.authHandler.VerifyEmailPage)
	auth.GET("/verificar/:token", s.authHandler.VerifyEmail)
	auth.GET("/perfil", s.authHandler.Profile, s.auth.RequireAuth(), s.auth.RequireVerified())
	auth.PUT("/perfil", s.authHandler.UpdateProfile, s.auth.RequireAuth(), s.auth.RequireVerified())
	auth.POST("/cambiar-password", s.authHandler.ChangePassword, s.auth.RequireAuth(), s.auth.RequireVerified())
	auth.POST("/recuperar-password", s.authHandler.RequestPasswordReset)
	auth.POST("/resetear-password/:token", s.authHandler.ResetPassword)

	// -------- games --------
	games := api.Group("/juegos")
	games.POST("/publicar", s.gameHandler.Publish, s.auth.RequireAuth(), s.auth.RequireVerified(), s.auth.RequireDeveloper())
	games.GET("/catalogo", s.gameHandler.Catalog)
	games.GET("/admin/pendientes", s.gameHandler.PendingReview, s.auth.RequireAuth(), s.auth.RequireVerified(), s.auth.RequireAdmin())
	games.GET("/:id", s.gameHandler.Detail, s.auth.OptionalAuth())
	games.POST("/:id/aprobar", s.gameHandler.Moderate, s.auth.RequireAuth(), s.auth.RequireVerified(), s.auth.RequireAdmin())
	games.POST("/:id/descargar-gratis", s.gameHandler.ClaimFree, s.auth.RequireAuth(), s.auth.RequireVerified())
	games.GET("/:id/resenas", s.reviewHandler.ListByGame)

	// -------- reviews --------
	reviews := api.Group("/resenas", s.auth.RequireAuth(), s.auth.RequireVerified())
	reviews.POST("", s.reviewHandler.Create)
	reviews.DELETE("/:id", s.reviewHandler.Delete)

	// -------- cart / purchases --------
	commerce := api.Group("", s.auth.RequireAuth(), s.auth.RequireVerified())
	commerce.POST("/carrito/agregar/:juego_id", s.commerceHandler.AddToCart)
	commerce.GET("/carrito", s.commerceHandler.Cart)
	commerce.DELETE("/carrito/:item_id", s.commerceHandler.RemoveFromCart)
	commerce.POST("/compras/procesar", s.commerceHandler.Checkout)
	commerce.POST("/compras/crear-intento", s.commerceHandler.CreatePaymentIntent)
	commerce.POST("/compras/confirmar", s.commerceHandler.ConfirmCheckout)
	commerce.GET("/compras/historial", s.commerceHandler.History)

	// -------- library --------
	library := api.Group("/biblioteca", s.auth.RequireAuth(), s.auth.RequireVerified())
	library.GET("", s.libraryHandler.List)
	library.GET("/descargar/:juego_id", s.libraryHandler.Download)

	// -------- admin --------
	admin := api.Group("/admin", s.auth.RequireAuth(), s.auth.RequireVerified(), s.auth.RequireAdmin())
	admin.GET("/stats", s.adminHandler.Stats)
	admin.GET("/usuarios", s.adminHandler.ListUsers)
	admin.GET("/juegos", s.adminHandler.ListGames)
	admin.DELETE("/juego/:id", s.adminHandler.DeleteGame)
	admin.DELETE("/usuario/:id", s.adminHandler.DeleteUser)
	admin.DELETE("/usuario/:id/juegos", s.adminHandler.DeleteUserGames)
	admin.DELETE("/usuarios/no-verificados", s.adminHandler.PurgeUnverified)
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			evt := logger.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = logger.Error()
			}
			if v.Error != nil {
				evt = evt.Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
