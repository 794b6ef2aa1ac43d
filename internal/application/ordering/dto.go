package ordering

import (
	"github.com/b2bportal/backend/internal/domain/ordering"
	"github.com/b2bportal/backend/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine references one product the client wants, by brand/article pair
// and the supplier whose offer to buy from.
type CartLine struct {
	Brand    string `json:"brand" binding:"required"`
	Article  string `json:"article" binding:"required"`
	Supplier string `json:"supplier" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// PlaceOrderRequest is a full order placement submission. PriceTier
// overrides the client's default tier when set. ClientRequestID is the
// caller's idempotency key; resubmitting with the same key returns the
// original order instead of placing a second one.
type PlaceOrderRequest struct {
	ClientID        uuid.UUID          `json:"clientId" binding:"required"`
	Lines           []CartLine         `json:"lines" binding:"required,dive"`
	PriceTier       *pricing.PriceTier `json:"priceTier,omitempty"`
	ClientRequestID *string            `json:"clientRequestId,omitempty"`
}

// PlaceOrderResult reports the placed (or replayed) order. Reused is true
// when the idempotency key matched an earlier order and nothing new was
// written.
type PlaceOrderResult struct {
	OrderID     uuid.UUID            `json:"orderId"`
	OrderNumber int64                `json:"orderNumber"`
	Total       decimal.Decimal      `json:"total"`
	Status      ordering.OrderStatus `json:"status"`
	Lines       []ordering.OrderLine `json:"lines"`
	Reused      bool                 `json:"reused"`
}

func resultFromOrder(order *ordering.Order, reused bool) *PlaceOrderResult {
	return &PlaceOrderResult{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Total:       order.Total,
		Status:      order.Status,
		Lines:       order.Lines,
		Reused:      reused,
	}
}
