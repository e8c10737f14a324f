package dto

import (
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
)

type CheckoutRequest struct {
	GameIDs       []uint `json:"juegos_ids" validate:"required,min=1"`
	PaymentMethod string `json:"metodo_pago"`
}

type CreateIntentRequest struct {
	GameIDs []uint `json:"juegos_ids" validate:"required,min=1"`
}

type CreateIntentResponse struct {
	IntentID     string  `json:"intent_id"`
	ClientSecret string  `json:"client_secret"`
	Total        float64 `json:"total"`
}

type ConfirmCheckoutRequest struct {
	IntentID string `json:"intent_id" validate:"required"`
	GameIDs  []uint `json:"juegos_ids" validate:"required,min=1"`
}

type CartItemResponse struct {
	ID      uint         `json:"id"`
	GameID  uint         `json:"juego_id"`
	AddedAt time.Time    `json:"fecha_agregado"`
	Game    *GameSummary `json:"juego"`
}

type OrderLineResponse struct {
	ID     uint         `json:"id"`
	GameID uint         `json:"juego_id"`
	Price  float64      `json:"precio"`
	Game   *GameSummary `json:"juego,omitempty"`
}

type OrderResponse struct {
	ID            uint              `json:"id"`
	UserID        uint              `json:"usuario_id"`
	Subtotal      float64           `json:"subtotal"`
	Tax           float64           `json:"iva"`
	Total         float64           `json:"total"`
	Status        model.OrderStatus `json:"estado"`
	PaymentMethod string            `json:"metodo_pago"`
	OrderNumber   string            `json:"numero_orden"`
	ReceiptURL    string            `json:"recibo_url,omitempty"`
	CreatedAt     time.Time         `json:"fecha_compra"`

	Lines []*OrderLineResponse `json:"items"`
}

func NewOrderResponse(o *model.Order, lines []*OrderLineResponse) *OrderResponse {
	return &OrderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Subtotal:      o.Subtotal,
		Tax:           o.Tax,
		Total:         o.Total,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		OrderNumber:   o.OrderNumber,
		ReceiptURL:    o.ReceiptURL,
		CreatedAt:     o.CreatedAt,
		Lines:         lines,
	}
}
