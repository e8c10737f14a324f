package model

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pendiente"
	OrderCompleted OrderStatus = "completada"
	OrderCancelled OrderStatus = "cancelada"
	OrderRefunded  OrderStatus = "reembolsada"
)

type CartItem struct {
	ID uint `gorm:"primaryKey"`
	// FK → users.id
	UserID uint `gorm:"uniqueIndex:idx_cart_user_game;not null"`
	// FK → games.id
	GameID uint `gorm:"uniqueIndex:idx_cart_user_game;not null"`

	CreatedAt time.Time
}

type Order struct {
	ID uint `gorm:"primaryKey"`
	// FK → users.id
	UserID uint `gorm:"index;not null"`

	Subtotal float64 `gorm:"not null"`
	Tax      float64 `gorm:"not null"`
	Total    float64 `gorm:"not null"`

	Status        OrderStatus `gorm:"size:20;not null;default:completada"`
	PaymentMethod string      `gorm:"size:50;not null"`
	ReceiptURL    string      `gorm:"size:500"`
	OrderNumber   string      `gorm:"size:50;uniqueIndex;not null"`

	CreatedAt time.Time
}

type OrderLine struct {
	ID uint `gorm:"primaryKey"`
	// FK → orders.id
	OrderID uint `gorm:"index;not null"`
	// FK → games.id
	GameID uint `gorm:"index;not null"`
	// price snapshot, immutable after creation
	Price float64 `gorm:"not null"`
}

type LibraryItem struct {
	ID uint `gorm:"primaryKey"`
	// FK → users.id
	UserID uint `gorm:"uniqueIndex:idx_library_user_game;not null"`
	// FK → games.id
	GameID uint `gorm:"uniqueIndex:idx_library_user_game;not null"`
	IsFree bool `gorm:"not null;default:false"`

	CreatedAt time.Time
}
