package handler

import (
	orderingapp "github.com/b2bportal/backend/internal/application/ordering"
	"github.com/b2bportal/backend/internal/domain/ordering"
	"github.com/b2bportal/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles order placement and lookup.
type OrderHandler struct {
	BaseHandler
	service   *orderingapp.Service
	orderRepo ordering.OrderRepository
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service *orderingapp.Service, orderRepo ordering.OrderRepository) *OrderHandler {
	return &OrderHandler{
		service:   service,
		orderRepo: orderRepo,
	}
}

// PlaceOrder places an order for a validated cart.
// POST /api/v1/orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req orderingapp.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// A replayed idempotency key returns the original order, not a new one.
	if result.Reused {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// GetOrder fetches one order by id.
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	order, err := h.orderRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}
