// Command initadmin creates the administrator account from ADMIN_EMAIL and
// ADMIN_PASSWORD, or promotes the account if it already exists. Run once
// after deployment.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Aazukvid2000/Pyxolotl/internal/client"
	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/Aazukvid2000/Pyxolotl/internal/logger"
	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"github.com/Aazukvid2000/Pyxolotl/internal/repository"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
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

	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		log.Fatal().Msg("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	db := client.InitMysqlClient(cfg.DatabaseURL)
	userRepo := repository.NewUserRepository(db)

	ctx := context.Background()

	user, err := userRepo.FindByEmail(ctx, cfg.Admin.Email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("could not hash admin password")
		}

		admin := &model.User{
			Name:         "Administrador",
			Email:        cfg.Admin.Email,
			PasswordHash: string(hash),
			AccountType:  model.AccountAdmin,
			Verified:     true,
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			log.Fatal().Err(err).Msg("could not create admin account")
		}
		log.Info().Str("email", admin.Email).Msg("admin account created")

	case err != nil:
		log.Fatal().Err(err).Msg("could not look up admin account")

	default:
		user.AccountType = model.AccountAdmin
		user.Verified = true
		if err := userRepo.Update(ctx, user); err != nil {
			log.Fatal().Err(err).Msg("could not promote admin account")
		}
		log.Info().Str("email", user.Email).Msg("existing account promoted to admin")
	}
}
