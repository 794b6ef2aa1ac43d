package handler

import (
	pricingapp "github.com/b2bportal/backend/internal/application/pricing"
	"github.com/b2bportal/backend/internal/domain/catalog"
	"github.com/b2bportal/backend/internal/domain/partner"
	"github.com/b2bportal/backend/internal/domain/pricing"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/b2bportal/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PricingHandler exposes ad-hoc price resolution.
type PricingHandler struct {
	BaseHandler
	resolver      *pricingapp.Resolver
	productReader catalog.ProductReader
	clientRepo    partner.ClientRepository
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(resolver *pricingapp.Resolver, productReader catalog.ProductReader, clientRepo partner.ClientRepository) *PricingHandler {
	return &PricingHandler{
		resolver:      resolver,
		productReader: productReader,
		clientRepo:    clientRepo,
	}
}

// ResolvePriceRequest asks what one client pays for one product/offer pair.
type ResolvePriceRequest struct {
	ClientID  *uuid.UUID         `json:"clientId,omitempty"`
	Brand     string             `json:"brand" binding:"required"`
	Article   string             `json:"article" binding:"required"`
	Supplier  string             `json:"supplier" binding:"required"`
	PriceTier *pricing.PriceTier `json:"priceTier,omitempty"`
}

// ResolvePrice resolves the unit price for a product/offer pair.
// POST /api/v1/pricing/resolve
func (h *PricingHandler) ResolvePrice(c *gin.Context) {
	var req ResolvePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	ctx := c.Request.Context()

	tier := pricing.TierRetail
	if req.ClientID != nil {
		client, err := h.clientRepo.FindByID(ctx, *req.ClientID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if client.DefaultTier.IsValid() {
			tier = client.DefaultTier
		}
	}
	if req.PriceTier != nil {
		tier = *req.PriceTier
	}

	key := catalog.ProductKey(req.Brand, req.Article)
	product, err := h.productReader.FindByKey(ctx, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	supplier := catalog.NormalizeBrandKey(req.Supplier)
	offer, ok := product.Offers.Get(supplier)
	if !ok {
		h.HandleError(c, shared.ErrNotFound.WithMessage("Supplier "+supplier+" has no offer for "+key))
		return
	}

	res, err := h.resolver.ResolveUnitPrice(ctx, req.ClientID, product, offer, tier)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, res)
}
