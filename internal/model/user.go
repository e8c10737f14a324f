package model

import "time"

type AccountType string

const (
	AccountBuyer     AccountType = "comprador"
	AccountDeveloper AccountType = "desarrollador"
	AccountAdmin     AccountType = "administrador"
)

type User struct {
	ID           uint        `gorm:"primaryKey"`
	Name         string      `gorm:"size:100;not null"`
	Email        string      `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string      `gorm:"size:255;not null"`
	AccountType  AccountType `gorm:"size:20;not null;default:comprador"`
	Verified     bool        `gorm:"not null;default:false"`
	AvatarURL    string      `gorm:"size:500"`
	Bio          string      `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type TokenPurpose string

const (
	TokenEmail         TokenPurpose = "email"
	TokenPasswordReset TokenPurpose = "password_reset"
)

// VerificationToken backs both email verification (24h window) and
// password reset (1h window). Single use, tracked via Used.
type VerificationToken struct {
	ID uint `gorm:"primaryKey"`
	// FK → users.id
	UserID    uint         `gorm:"index;not null"`
	Token     string       `gorm:"size:255;uniqueIndex;not null"`
	Purpose   TokenPurpose `gorm:"size:50;not null"`
	ExpiresAt time.Time    `gorm:"not null"`
	Used      bool         `gorm:"not null;default:false"`

	CreatedAt time.Time
}
