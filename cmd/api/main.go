package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/client"
	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/Aazukvid2000/Pyxolotl/internal/logger"
	"github.com/Aazukvid2000/Pyxolotl/internal/middleware"
	"github.com/Aazukvid2000/Pyxolotl/internal/repository"
	"github.com/Aazukvid2000/Pyxolotl/internal/server"
	"github.com/Aazukvid2000/Pyxolotl/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)

	db := client.InitMysqlClient(cfg.DatabaseURL)
	stripeClient := client.NewStripeClient(&cfg.Stripe)
	mailClient := client.NewSendgridClient(&cfg.SendGrid, log)
	cloudinaryClient := client.NewCloudinaryClient(&cfg.Cloudinary)

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	gameRepo := repository.NewGameRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	downloadRepo := repository.NewDownloadRepository(db)

	mediaService := service.NewMediaService(cfg.Uploads, cloudinaryClient, log)
	notificationService := service.NewNotificationService(mailClient, cfg.FrontendURL, log)
	authService := service.NewAuthService(
		db, cfg.Auth,
		userRepo,
		tokenRepo,
		mediaService,
		notificationService,
		log,
	)
	gameService := service.NewGameService(
		db, cfg.Admin, cfg.Pagination,
		gameRepo,
		libraryRepo,
		userRepo,
		mediaService,
		notificationService,
		log,
	)
	reviewService := service.NewReviewService(
		db,
		reviewRepo,
		gameRepo,
		userRepo,
		log,
	)
	commerceService := service.NewCommerceService(
		db, cfg.Checkout, cfg.Stripe,
		stripeClient,
		gameRepo,
		cartRepo,
		orderRepo,
		libraryRepo,
		notificationService,
		log,
	)
	libraryService := service.NewLibraryService(
		libraryRepo,
		gameRepo,
		userRepo,
		downloadRepo,
		log,
	)
	adminService := service.NewAdminService(
		db,
		userRepo,
		tokenRepo,
		gameRepo,
		reviewRepo,
		cartRepo,
		orderRepo,
		libraryRepo,
		downloadRepo,
		mediaService,
		log,
	)

	authenticator := middleware.NewAuthenticator(cfg.Auth, cfg.Admin, userRepo, log)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(
		cfg,
		authenticator,
		authService,
		gameService,
		reviewService,
		commerceService,
		libraryService,
		adminService,
		log,
	)

	log.Info().Str("addr", serverAddr).Str("env", cfg.Environment.Name).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info().Msg("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("HTTP server shutdown error")
	}
}
