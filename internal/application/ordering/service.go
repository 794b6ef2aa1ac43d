package ordering

import (
	"context"
	"errors"
	"time"

	pricingapp "github.com/b2bportal/backend/internal/application/pricing"
	"github.com/b2bportal/backend/internal/application/reconcile"
	"github.com/b2bportal/backend/internal/domain/catalog"
	"github.com/b2bportal/backend/internal/domain/ordering"
	"github.com/b2bportal/backend/internal/domain/partner"
	"github.com/b2bportal/backend/internal/domain/pricing"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// inFlightTTL bounds how long a request id stays marked as in flight when
// a placement crashes before releasing its guard slot.
const inFlightTTL = time.Minute

// Service places client orders: idempotency replay, batched product
// loading, per-line price resolution and transactional numbering.
type Service struct {
	orderRepo     ordering.OrderRepository
	clientRepo    partner.ClientRepository
	productReader catalog.ProductReader
	resolver      *pricingapp.Resolver
	ruleRepo      pricing.SupplierPricingRuleRepository
	supplierRepo  pricing.SupplierRepository
	guard         shared.RunGuard
	logger        *zap.Logger
}

// NewService creates an order placement service. The guard is optional; a
// nil guard disables the best-effort in-flight duplicate suppression and
// leaves only the persisted idempotency check.
func NewService(
	orderRepo ordering.OrderRepository,
	clientRepo partner.ClientRepository,
	productReader catalog.ProductReader,
	resolver *pricingapp.Resolver,
	ruleRepo pricing.SupplierPricingRuleRepository,
	supplierRepo pricing.SupplierRepository,
	guard shared.RunGuard,
	logger *zap.Logger,
) *Service {
	return &Service{
		orderRepo:     orderRepo,
		clientRepo:    clientRepo,
		productReader: productReader,
		resolver:      resolver,
		ruleRepo:      ruleRepo,
		supplierRepo:  supplierRepo,
		guard:         guard,
		logger:        logger.Named("ordering"),
	}
}

// PlaceOrder places an order for a validated cart. A request carrying a
// clientRequestId seen before returns the original order with Reused set.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if err := validateCart(req.Lines); err != nil {
		return nil, err
	}

	if req.ClientRequestID != nil && *req.ClientRequestID != "" {
		release, err := s.markInFlight(ctx, req.ClientID.String()+":"+*req.ClientRequestID)
		if err != nil {
			return nil, err
		}
		defer release()

		existing, err := s.orderRepo.FindByClientRequestID(ctx, req.ClientID, *req.ClientRequestID)
		if err == nil {
			s.logger.Info("order replayed by client request id",
				zap.String("client_id", req.ClientID.String()),
				zap.String("client_request_id", *req.ClientRequestID),
				zap.Int64("order_number", existing.Number),
			)
			return resultFromOrder(existing, true), nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	client, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	// Tier resolution: explicit choice, then the client's stored preference,
	// then retail. Only an explicit invalid tier is the caller's error; a bad
	// stored preference silently degrades to the hard default.
	tier := client.DefaultTier
	if !tier.IsValid() {
		tier = pricing.TierRetail
	}
	if req.PriceTier != nil {
		tier = *req.PriceTier
		if !tier.IsValid() {
			return nil, shared.ErrInvalidArgument.WithMessage("unknown price tier: " + tier.String())
		}
	}

	products, err := s.loadProducts(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	clientRules, err := s.resolver.ClientRules(ctx, &req.ClientID)
	if err != nil {
		return nil, err
	}
	markups := reconcile.NewRulesCache(s.ruleRepo, s.supplierRepo)

	lines := make([]ordering.OrderLine, 0, len(req.Lines))
	total := decimal.Zero
	for _, cartLine := range req.Lines {
		line, err := s.buildLine(ctx, cartLine, products, clientRules, markups, tier)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
		total = total.Add(line.LineTotal()).Round(2)
	}

	order, err := ordering.NewOrder(req.ClientID, lines, total, req.ClientRequestID)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.CreateNumbered(ctx, order); err != nil {
		return nil, err
	}

	// Secondary bookkeeping: the aggregate counter must never fail a
	// committed order.
	if err := s.orderRepo.IncrementStatusCount(ctx, ordering.OrderStatusNew, 1); err != nil {
		s.logger.Warn("failed to bump order status aggregate",
			zap.String("status", string(ordering.OrderStatusNew)),
			zap.Error(err),
		)
	}

	s.logger.Info("order placed",
		zap.String("client_id", req.ClientID.String()),
		zap.Int64("order_number", order.Number),
		zap.Int("lines", len(order.Lines)),
		zap.String("total", order.Total.String()),
	)
	return resultFromOrder(order, false), nil
}

// markInFlight takes the best-effort duplicate-suppression slot for a
// request id. It narrows, but does not close, the window between the
// idempotency read and the insert.
func (s *Service) markInFlight(ctx context.Context, key string) (func(), error) {
	if s.guard == nil {
		return func() {}, nil
	}
	ok, err := s.guard.Acquire(ctx, "order:"+key, inFlightTTL)
	if err != nil {
		// The guard is an optimization; losing it must not block orders.
		s.logger.Warn("order in-flight guard unavailable", zap.Error(err))
		return func() {}, nil
	}
	if !ok {
		return nil, shared.ErrConflict.WithMessage("An order with this request id is already being placed")
	}
	return func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), "order:"+key); err != nil {
			s.logger.Warn("failed to release order in-flight guard", zap.Error(err))
		}
	}, nil
}

// loadProducts fetches every distinct product referenced by the cart in one
// batched read and rejects the whole order when any is missing.
func (s *Service) loadProducts(ctx context.Context, cart []CartLine) (map[string]*catalog.Product, error) {
	seen := make(map[string]struct{}, len(cart))
	keys := make([]string, 0, len(cart))
	for _, line := range cart {
		key := catalog.ProductKey(line.Brand, line.Article)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	found, err := s.productReader.FindByKeys(ctx, keys)
	if err != nil {
		return nil, err
	}

	products := make(map[string]*catalog.Product, len(found))
	for i := range found {
		products[found[i].Key] = &found[i]
	}
	for _, key := range keys {
		if _, ok := products[key]; !ok {
			return nil, shared.ErrNotFound.WithMessage("Product not found: " + key)
		}
	}
	return products, nil
}

// buildLine resolves one cart line into a priced order line.
func (s *Service) buildLine(
	ctx context.Context,
	cartLine CartLine,
	products map[string]*catalog.Product,
	clientRules *pricing.ClientPricingRules,
	markups pricingapp.MarkupSource,
	tier pricing.PriceTier,
) (*ordering.OrderLine, error) {
	key := catalog.ProductKey(cartLine.Brand, cartLine.Article)
	product := products[key]

	supplier := catalog.NormalizeBrandKey(cartLine.Supplier)
	offer, ok := product.Offers.Get(supplier)
	if !ok {
		return nil, shared.ErrNotFound.WithMessage("Supplier " + supplier + " has no offer for " + key)
	}

	res, err := s.resolver.ResolveLine(ctx, clientRules, markups, product, offer, tier)
	if err != nil {
		return nil, err
	}
	if !res.Price.IsPositive() {
		return nil, shared.ErrFailedPrecondition.WithMessage("No valid price for " + key + " from supplier " + supplier)
	}

	return &ordering.OrderLine{
		ProductID:         product.ID,
		ProductKey:        product.Key,
		Brand:             product.Brand,
		Article:           product.Article,
		Name:              product.Name,
		Supplier:          supplier,
		Quantity:          cartLine.Quantity,
		Price:             res.Price,
		PriceGroup:        res.PriceGroup,
		DefaultPriceGroup: res.DefaultPriceGroup,
		HasAdjustment:     res.HasAdjustment,
	}, nil
}

// validateCart rejects structurally invalid carts before any IO happens.
func validateCart(cart []CartLine) error {
	if len(cart) == 0 {
		return shared.ErrInvalidArgument.WithMessage("Order must contain at least one line")
	}
	for _, line := range cart {
		if line.Brand == "" || line.Article == "" {
			return shared.ErrInvalidArgument.WithMessage("Cart line is missing brand or article")
		}
		if line.Supplier == "" {
			return shared.ErrInvalidArgument.WithMessage("Cart line is missing supplier")
		}
		if line.Quantity <= 0 {
			return shared.ErrInvalidArgument.WithMessage("Cart line quantity must be positive")
		}
	}
	return nil
}
