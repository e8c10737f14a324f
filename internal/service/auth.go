package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/Aazukvid2000/Pyxolotl/internal/dto"
	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"github.com/Aazukvid2000/Pyxolotl/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	emailTokenTTL = 24 * time.Hour
	resetTokenTTL = time.Hour
)

// VerifyPageStatus selects which verification page the handler renders.
type VerifyPageStatus int

const (
	VerifyPageSuccess VerifyPageStatus = iota
	VerifyPageAlreadyVerified
	VerifyPageError
)

type VerifyPageResult struct {
	Status   VerifyPageStatus
	UserName string
	Reason   string
}

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.Message, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	VerifyEmail(ctx context.Context, token string) (*dto.Message, error)
	VerifyEmailPage(ctx context.Context, token string) (*VerifyPageResult, error)
	UpdateProfile(ctx context.Context, user *model.User, req *dto.UpdateProfileRequest, avatar *multipart.FileHeader) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, user *model.User, req *dto.ChangePasswordRequest) (*dto.Message, error)
	RequestPasswordReset(ctx context.Context, email string) (*dto.Message, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*dto.Message, error)
}

type authServiceImpl struct {
	db        *gorm.DB
	authCfg   config.Auth
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	media     MediaService
	notifier  NotificationService
	logger    zerolog.Logger
}

func NewAuthService(
	db *gorm.DB,
	authCfg config.Auth,
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	media MediaService,
	notifier NotificationService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		db:        db,
		authCfg:   authCfg,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		media:     media,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.Message, error) {
	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, apperr.Conflict("Este correo ya está registrado")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	accountType := model.AccountType(req.AccountType)
	if accountType == "" {
		accountType = model.AccountBuyer
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		AccountType:  accountType,
		Verified:     false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Este correo ya está registrado")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := generateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	if err := s.tokenRepo.Create(ctx, &model.VerificationToken{
		UserID:    user.ID,
		Token:     token,
		Purpose:   model.TokenEmail,
		ExpiresAt: time.Now().Add(emailTokenTTL),
	}); err != nil {
		return nil, fmt.Errorf("create verification token: %w", err)
	}

	s.notifier.SendVerificationMail(ctx, user.Email, user.Name, token)

	s.logger.Info().Str("email", user.Email).Msg("user registered")

	return dto.OK("Cuenta creada exitosamente. Por favor verifica tu email."), nil
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Correo o contraseña incorrectos")
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("Correo o contraseña incorrectos")
	}

	accessToken, err := s.signAccessToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info().Str("email", user.Email).Msg("login successful")

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		User:        dto.NewUserResponse(user),
	}, nil
}

func (s *authServiceImpl) VerifyEmail(ctx context.Context, token string) (*dto.Message, error) {
	record, err := s.tokenRepo.FindByToken(ctx, token, model.TokenEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("Token inválido o ya utilizado")
		}
		return nil, fmt.Errorf("lookup token: %w", err)
	}

	if record.Used {
		return nil, apperr.Validation("Token inválido o ya utilizado")
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, apperr.Validation("El token ha expirado")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.MarkVerified(ctx, tx, record.UserID); err != nil {
			return fmt.Errorf("mark user verified: %w", err)
		}
		if err := s.tokenRepo.MarkUsed(ctx, tx, record.ID); err != nil {
			return fmt.Errorf("mark token used: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint("user_id", record.UserID).Msg("email verified")

	return dto.OK("Email verificado exitosamente. Ya puedes iniciar sesión."), nil
}

// VerifyEmailPage drives the human-facing verification link. Unlike the JSON
// variant it never fails with an API error, every outcome maps to a page.
func (s *authServiceImpl) VerifyEmailPage(ctx context.Context, token string) (*VerifyPageResult, error) {
	record, err := s.tokenRepo.FindByToken(ctx, token, model.TokenEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &VerifyPageResult{Status: VerifyPageError, Reason: "El enlace de verificación no es válido o ha expirado."}, nil
		}
		return nil, fmt.Errorf("lookup token: %w", err)
	}

	if record.Used {
		return &VerifyPageResult{Status: VerifyPageAlreadyVerified}, nil
	}
	if time.Now().After(record.ExpiresAt) {
		return &VerifyPageResult{Status: VerifyPageError, Reason: "El enlace de verificación ha expirado. Por favor solicita uno nuevo."}, nil
	}

	user, err := s.userRepo.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &VerifyPageResult{Status: VerifyPageError, Reason: "Usuario no encontrado."}, nil
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.Verified {
		return &VerifyPageResult{Status: VerifyPageAlreadyVerified}, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.MarkVerified(ctx, tx, user.ID); err != nil {
			return fmt.Errorf("mark user verified: %w", err)
		}
		if err := s.tokenRepo.MarkUsed(ctx, tx, record.ID); err != nil {
			return fmt.Errorf("mark token used: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", user.Email).Msg("email verified via page")

	return &VerifyPageResult{Status: VerifyPageSuccess, UserName: user.Name}, nil
}

func (s *authServiceImpl) UpdateProfile(ctx context.Context, user *model.User, req *dto.UpdateProfileRequest, avatar *multipart.FileHeader) (*dto.UserResponse, error) {
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}

	oldAvatar := ""
	if avatar != nil {
		url, err := s.media.SaveAvatar(ctx, avatar)
		if err != nil {
			return nil, err
		}
		oldAvatar = user.AvatarURL
		user.AvatarURL = url
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	// replaced avatars are cleaned up best effort
	if oldAvatar != "" {
		if strings.Contains(oldAvatar, "cloudinary") {
			s.media.DeleteRemoteAsset(ctx, oldAvatar, "image")
		} else {
			s.media.DeleteLocalFile(oldAvatar)
		}
	}

	return dto.NewUserResponse(user), nil
}

func (s *authServiceImpl) ChangePassword(ctx context.Context, user *model.User, req *dto.ChangePasswordRequest) (*dto.Message, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Current)); err != nil {
		return nil, apperr.Validation("Contraseña actual incorrecta")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.New), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.userRepo.UpdatePassword(ctx, tx, user.ID, string(hash))
	})
	if err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	s.logger.Info().Str("email", user.Email).Msg("password changed")

	return dto.OK("Contraseña actualizada exitosamente"), nil
}

func (s *authServiceImpl) RequestPasswordReset(ctx context.Context, email string) (*dto.Message, error) {
	// the response never reveals whether the account exists
	neutral := dto.OK("Si el correo existe, recibirás un enlace de recuperación")

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return neutral, nil
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	token, err := generateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}

	if err := s.tokenRepo.Create(ctx, &model.VerificationToken{
		UserID:    user.ID,
		Token:     token,
		Purpose:   model.TokenPasswordReset,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}); err != nil {
		return nil, fmt.Errorf("create reset token: %w", err)
	}

	s.notifier.SendPasswordResetMail(ctx, user.Email, user.Name, token)

	s.logger.Info().Str("email", email).Msg("password recovery requested")

	return neutral, nil
}

func (s *authServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) (*dto.Message, error) {
	if len(newPassword) < 6 {
		return nil, apperr.Validation("La contraseña debe tener al menos 6 caracteres")
	}

	record, err := s.tokenRepo.FindByToken(ctx, token, model.TokenPasswordReset)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("Token inválido o ya utilizado")
		}
		return nil, fmt.Errorf("lookup token: %w", err)
	}

	if record.Used {
		return nil, apperr.Validation("Token inválido o ya utilizado")
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, apperr.Validation("El token ha expirado")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.UpdatePassword(ctx, tx, record.UserID, string(hash)); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := s.tokenRepo.MarkUsed(ctx, tx, record.ID); err != nil {
			return fmt.Errorf("mark token used: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint("user_id", record.UserID).Msg("password reset completed")

	return dto.OK("Contraseña actualizada exitosamente"), nil
}

func (s *authServiceImpl) signAccessToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(s.authCfg.AccessTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.authCfg.Secret))
}

func generateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
