package pricing

import (
	"context"
	"errors"

	"github.com/b2bportal/backend/internal/application/reconcile"
	"github.com/b2bportal/backend/internal/domain/catalog"
	"github.com/b2bportal/backend/internal/domain/pricing"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MarkupSource supplies per-supplier markup percentages for the legacy
// pricing fallback. The per-run rules cache implements it.
type MarkupSource interface {
	PercentagesFor(ctx context.Context, supplierID string) (pricing.TierPercentages, error)
}

// Resolution is the full answer to "what does this client pay per unit".
// Everything here is persisted per order line so a charged amount can be
// explained later. A zero Price means no valid price could be resolved;
// callers must treat that as a failure, not as a free product.
type Resolution struct {
	Price             decimal.Decimal   `json:"price"`
	PriceGroup        pricing.PriceTier `json:"priceGroup"`
	DefaultPriceGroup pricing.PriceTier `json:"defaultPriceGroup"`
	HasAdjustment     bool              `json:"hasAdjustment"`
}

// Resolver turns base prices plus a client's cascading override rules into
// one unit price. Given identical inputs it is a pure function; all state
// it reads is read-only.
type Resolver struct {
	clientRulesRepo pricing.ClientPricingRulesRepository
	ruleRepo        pricing.SupplierPricingRuleRepository
	supplierRepo    pricing.SupplierRepository
	logger          *zap.Logger
}

// NewResolver creates a pricing resolver.
func NewResolver(
	clientRulesRepo pricing.ClientPricingRulesRepository,
	ruleRepo pricing.SupplierPricingRuleRepository,
	supplierRepo pricing.SupplierRepository,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		clientRulesRepo: clientRulesRepo,
		ruleRepo:        ruleRepo,
		supplierRepo:    supplierRepo,
		logger:          logger.Named("pricing"),
	}
}

// ResolveUnitPrice resolves the unit price for one product/offer pair. A
// nil clientID means an anonymous caller: no override rules, straight to
// the legacy fallback path.
func (r *Resolver) ResolveUnitPrice(
	ctx context.Context,
	clientID *uuid.UUID,
	product *catalog.Product,
	offer catalog.Offer,
	defaultTier pricing.PriceTier,
) (*Resolution, error) {
	clientRules, err := r.ClientRules(ctx, clientID)
	if err != nil {
		return nil, err
	}
	markups := reconcile.NewRulesCache(r.ruleRepo, r.supplierRepo)
	return r.ResolveLine(ctx, clientRules, markups, product, offer, defaultTier)
}

// ClientRules loads a client's rule set; a client without rules yields nil,
// which selects the legacy fallback in ResolveLine.
func (r *Resolver) ClientRules(ctx context.Context, clientID *uuid.UUID) (*pricing.ClientPricingRules, error) {
	if clientID == nil {
		return nil, nil
	}
	rules, err := r.clientRulesRepo.FindByClient(ctx, *clientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rules, nil
}

// ResolveLine is the resolution core, shared with order placement which
// loads the client rules once and reuses one markup source across lines.
func (r *Resolver) ResolveLine(
	ctx context.Context,
	clientRules *pricing.ClientPricingRules,
	markups MarkupSource,
	product *catalog.Product,
	offer catalog.Offer,
	defaultTier pricing.PriceTier,
) (*Resolution, error) {
	if !defaultTier.IsValid() {
		return nil, shared.ErrInvalidArgument.WithMessage("unknown price tier: " + defaultTier.String())
	}
	if product == nil {
		return nil, shared.ErrInvalidArgument.WithMessage("product cannot be nil")
	}

	if clientRules == nil {
		return r.resolveLegacy(ctx, markups, offer, defaultTier)
	}

	activeTier, adjustment := matchRule(clientRules, product, offer, defaultTier)

	base, ok := offer.PublicPrices.Get(activeTier)
	if !ok {
		// Fall back to retail; if that is also unusable the price is 0 and
		// the caller must reject the line.
		base, ok = offer.PublicPrices.Get(pricing.TierRetail)
		if !ok {
			return &Resolution{
				Price:             decimal.Zero,
				PriceGroup:        activeTier,
				DefaultPriceGroup: defaultTier,
			}, nil
		}
	}

	price := pricing.ApplyPercent(base, adjustment)
	price = pricing.ApplyPercent(price, clientRules.GlobalAdjustment)
	// Final client prices round UP so rounding never under-charges. Derived
	// base prices round to nearest elsewhere; the two policies are distinct
	// on purpose.
	price = pricing.RoundUp2(price)

	return &Resolution{
		Price:             price,
		PriceGroup:        activeTier,
		DefaultPriceGroup: defaultTier,
		HasAdjustment:     !adjustment.IsZero() || !clientRules.GlobalAdjustment.IsZero(),
	}, nil
}

// matchRule walks the client's rules product-scope first, then brand, then
// supplier; the first matching rule supplies both the tier and the
// adjustment. No match keeps the default tier with zero adjustment.
func matchRule(
	clientRules *pricing.ClientPricingRules,
	product *catalog.Product,
	offer catalog.Offer,
	defaultTier pricing.PriceTier,
) (pricing.PriceTier, decimal.Decimal) {
	for _, scope := range []pricing.RuleScope{pricing.ScopeProduct, pricing.ScopeBrand, pricing.ScopeSupplier} {
		for _, rule := range clientRules.RulesForScope(scope) {
			if ruleMatches(rule, product, offer) {
				return rule.PriceGroup, rule.Adjustment
			}
		}
	}
	return defaultTier, decimal.Zero
}

// ruleMatches checks one rule's matcher against the product or offer.
func ruleMatches(rule pricing.ClientRule, product *catalog.Product, offer catalog.Offer) bool {
	switch rule.Scope {
	case pricing.ScopeProduct:
		return rule.Matcher == product.Key
	case pricing.ScopeBrand:
		return catalog.NormalizeBrandKey(rule.Matcher) == catalog.NormalizeBrandKey(product.Brand)
	case pricing.ScopeSupplier:
		return catalog.NormalizeBrandKey(rule.Matcher) == offer.Supplier
	}
	return false
}

// resolveLegacy prices a line for clients with no rule set at all: the
// requested tier's public price taken directly, or derived from the retail
// price by the ratio of the supplier's tier/retail markups, rounded to
// nearest.
func (r *Resolver) resolveLegacy(
	ctx context.Context,
	markups MarkupSource,
	offer catalog.Offer,
	defaultTier pricing.PriceTier,
) (*Resolution, error) {
	res := &Resolution{
		PriceGroup:        defaultTier,
		DefaultPriceGroup: defaultTier,
	}

	if price, ok := offer.PublicPrices.Get(defaultTier); ok {
		res.Price = price
		return res, nil
	}

	retail, ok := offer.PublicPrices.Get(pricing.TierRetail)
	if !ok {
		return res, nil
	}

	pct, err := markups.PercentagesFor(ctx, offer.Supplier)
	if err != nil {
		return nil, err
	}

	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	tierFactor := one.Add(pct.PercentFor(defaultTier).Div(hundred))
	retailFactor := one.Add(pct.PercentFor(pricing.TierRetail).Div(hundred))
	if retailFactor.IsZero() {
		return res, nil
	}

	res.Price = retail.Mul(tierFactor).Div(retailFactor).Round(2)
	return res, nil
}
