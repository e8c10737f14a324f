package dto

import "time"

type LibraryItemResponse struct {
	ID         uint          `json:"id"`
	GameID     uint          `json:"juego_id"`
	AcquiredAt time.Time     `json:"fecha_obtencion"`
	IsFree     bool          `json:"es_gratuito"`
	Game       *GameResponse `json:"juego"`
}
