package dto

import (
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
)

type CreateReviewRequest struct {
	GameID uint   `json:"juego_id" validate:"required"`
	Rating int    `json:"calificacion" validate:"required,gte=1,lte=5"`
	Text   string `json:"texto" validate:"required,min=10,max=1000"`
}

type ReviewResponse struct {
	ID        uint          `json:"id"`
	UserID    uint          `json:"usuario_id"`
	GameID    uint          `json:"juego_id"`
	Rating    int           `json:"calificacion"`
	Text      string        `json:"texto"`
	CreatedAt time.Time     `json:"fecha_creacion"`
	User      *UserResponse `json:"usuario,omitempty"`
}

func NewReviewResponse(r *model.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		GameID:    r.GameID,
		Rating:    r.Rating,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	}
}
