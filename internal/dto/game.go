package dto

import (
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
)

// PublishGameRequest carries the multipart form fields of a publish
// submission. Files (portada, screenshots, trailer, archivo_juego) are
// read separately from the multipart payload.
type PublishGameRequest struct {
	Title        string  `form:"titulo" validate:"required,min=3,max=200"`
	Description  string  `form:"descripcion" validate:"required,min=10"`
	Genre        string  `form:"genero" validate:"required"`
	Price        float64 `form:"precio" validate:"gte=0"`
	Requirements string  `form:"requisitos"`
	DownloadKind string  `form:"tipo_descarga" validate:"required,oneof=archivo link"`
	ExternalLink string  `form:"link_externo"`
}

type GameResponse struct {
	ID           uint    `json:"id"`
	Title        string  `json:"titulo"`
	Description  string  `json:"descripcion"`
	Genre        string  `json:"genero"`
	Price        float64 `json:"precio"`
	Requirements string  `json:"requisitos,omitempty"`

	CoverURL string `json:"portada_url"`
	// JSON-encoded array, decoded client side
	ScreenshotURLs string `json:"screenshots_urls,omitempty"`
	TrailerURL     string `json:"trailer_url,omitempty"`

	DownloadKind model.DownloadKind `json:"tipo_descarga"`
	PackageURL   string             `json:"archivo_juego_url"`
	SizeMB       float64            `json:"tamano_mb,omitempty"`

	State        model.GameState `json:"estado"`
	DeveloperID  uint            `json:"desarrollador_id"`
	RejectReason string          `json:"motivo_rechazo,omitempty"`

	AvgRating   float64 `json:"calificacion_promedio"`
	ReviewCount int     `json:"total_resenas"`
	Downloads   int     `json:"total_descargas"`
	Sales       int     `json:"total_ventas"`

	CreatedAt time.Time     `json:"fecha_creacion"`
	Developer *UserResponse `json:"desarrollador,omitempty"`
}

func NewGameResponse(g *model.Game) *GameResponse {
	return &GameResponse{
		ID:             g.ID,
		Title:          g.Title,
		Description:    g.Description,
		Genre:          g.Genre,
		Price:          g.Price,
		Requirements:   g.Requirements,
		CoverURL:       g.CoverURL,
		ScreenshotURLs: g.ScreenshotURLs,
		TrailerURL:     g.TrailerURL,
		DownloadKind:   g.DownloadKind,
		PackageURL:     g.PackageURL,
		SizeMB:         g.SizeMB,
		State:          g.State,
		DeveloperID:    g.DeveloperID,
		RejectReason:   g.RejectReason,
		AvgRating:      g.AvgRating,
		ReviewCount:    g.ReviewCount,
		Downloads:      g.DownloadCount,
		Sales:          g.SaleCount,
		CreatedAt:      g.CreatedAt,
	}
}

// GameSummary is the trimmed shape used by catalog, cart and order listings.
type GameSummary struct {
	ID          uint            `json:"id"`
	Title       string          `json:"titulo"`
	Description string          `json:"descripcion"`
	Genre       string          `json:"genero"`
	Price       float64         `json:"precio"`
	CoverURL    string          `json:"portada_url"`
	AvgRating   float64         `json:"calificacion_promedio"`
	ReviewCount int             `json:"total_resenas"`
	State       model.GameState `json:"estado"`
}

func NewGameSummary(g *model.Game) *GameSummary {
	return &GameSummary{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Genre:       g.Genre,
		Price:       g.Price,
		CoverURL:    g.CoverURL,
		AvgRating:   g.AvgRating,
		ReviewCount: g.ReviewCount,
		State:       g.State,
	}
}

type CatalogQuery struct {
	Search    string   `query:"busqueda"`
	Genre     string   `query:"genero"`
	PriceMin  *float64 `query:"precio_min"`
	PriceMax  *float64 `query:"precio_max"`
	FreeOnly  bool     `query:"solo_gratuitos"`
	SortBy    string   `query:"ordenar_por"`
	SortOrder string   `query:"orden"`
	Page      int      `query:"pagina"`
	PerPage   int      `query:"por_pagina"`
}

type ModerationRequest struct {
	Approved     bool   `json:"aprobado"`
	RejectReason string `json:"motivo_rechazo"`
}
