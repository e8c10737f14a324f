package model

import "time"

type Review struct {
	ID uint `gorm:"primaryKey"`
	// FK → users.id
	UserID uint `gorm:"uniqueIndex:idx_review_user_game;not null"`
	// FK → games.id
	GameID uint `gorm:"uniqueIndex:idx_review_user_game;not null"`
	Rating int    `gorm:"not null"` // 1-5 stars
	Text   string `gorm:"type:text;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type DownloadLog struct {
	ID uint `gorm:"primaryKey"`
	// FK → users.id
	UserID uint `gorm:"index;not null"`
	// FK → games.id
	GameID    uint   `gorm:"index;not null"`
	IPAddress string `gorm:"size:50"`

	CreatedAt time.Time
}
