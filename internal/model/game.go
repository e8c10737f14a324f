package model

import "time"

type GameState string

const (
	StateDraft    GameState = "borrador"
	StateInReview GameState = "en_revision"
	StateApproved GameState = "aprobado"
	StateRejected GameState = "rechazado"
)

type DownloadKind string

const (
	DownloadFile DownloadKind = "archivo" // package stored by us
	DownloadLink DownloadKind = "link"    // external link (Drive, itch.io, ...)
)

type Game struct {
	ID           uint    `gorm:"primaryKey"`
	Title        string  `gorm:"size:200;index;not null"`
	Description  string  `gorm:"type:text;not null"`
	Genre        string  `gorm:"size:50;index;not null"`
	Price        float64 `gorm:"not null;default:0"`
	Requirements string  `gorm:"type:text"`

	CoverURL       string `gorm:"size:500;not null"`
	ScreenshotURLs string `gorm:"type:text"` // JSON array of URLs
	TrailerURL     string `gorm:"size:500"`

	DownloadKind DownloadKind `gorm:"size:20;not null;default:archivo"`
	// archive location for DownloadFile, the external link for DownloadLink
	PackageURL string `gorm:"size:500"`
	SizeMB     float64

	State GameState `gorm:"size:20;index;not null;default:en_revision"`
	// FK → users.id
	DeveloperID uint `gorm:"index;not null"`
	// FK → users.id, admin who approved
	ApprovedByID *uint
	ApprovedAt   *time.Time
	RejectReason string `gorm:"type:text"`

	AvgRating     float64 `gorm:"not null;default:0"`
	ReviewCount   int     `gorm:"not null;default:0"`
	DownloadCount int     `gorm:"not null;default:0"`
	SaleCount     int     `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
