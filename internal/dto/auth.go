package dto

import (
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
)

type RegisterRequest struct {
	Name     string `json:"nombre" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	// admin accounts are never self-registered
	AccountType model.AccountType `json:"tipo_cuenta" validate:"omitempty,oneof=comprador desarrollador"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        *UserResponse `json:"usuario"`
}

type UserResponse struct {
	ID          uint              `json:"id"`
	Name        string            `json:"nombre"`
	Email       string            `json:"email"`
	AccountType model.AccountType `json:"tipo_cuenta"`
	Verified    bool              `json:"verificado"`
	AvatarURL   string            `json:"avatar_url,omitempty"`
	Bio         string            `json:"bio,omitempty"`
	CreatedAt   time.Time         `json:"fecha_registro"`
}

func NewUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		AccountType: u.AccountType,
		Verified:    u.Verified,
		AvatarURL:   u.AvatarURL,
		Bio:         u.Bio,
		CreatedAt:   u.CreatedAt,
	}
}

type UpdateProfileRequest struct {
	Name string `form:"nombre"`
	Bio  string `form:"bio"`
}

type ChangePasswordRequest struct {
	Current string `json:"password_actual" validate:"required"`
	New     string `json:"password_nueva" validate:"required,min=6"`
}

// Message is the generic success envelope the frontend expects.
type Message struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func OK(msg string) *Message {
	return &Message{Message: msg, Success: true}
}
