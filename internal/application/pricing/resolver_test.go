package pricing

import (
	"context"
	"testing"

	"github.com/b2bportal/backend/internal/domain/catalog"
	"github.com/b2bportal/backend/internal/domain/pricing"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixedMarkups is a MarkupSource returning the same percentages for every
// supplier.
type fixedMarkups struct {
	pct pricing.TierPercentages
	err error
}

func (f fixedMarkups) PercentagesFor(context.Context, string) (pricing.TierPercentages, error) {
	return f.pct, f.err
}

type stubClientRulesRepo struct {
	rules *pricing.ClientPricingRules
	err   error
}

func (s *stubClientRulesRepo) FindByClient(context.Context, uuid.UUID) (*pricing.ClientPricingRules, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rules, nil
}

func newTestResolver(clientRules *stubClientRulesRepo) *Resolver {
	return NewResolver(clientRules, stubRuleRepo{}, stubSupplierRepo{}, zap.NewNop())
}

// stubRuleRepo and stubSupplierRepo always miss; resolver tests drive the
// markup path through fixedMarkups instead.
type stubRuleRepo struct{}

func (stubRuleRepo) FindByRuleID(context.Context, string) (*pricing.SupplierPricingRule, error) {
	return nil, shared.ErrNotFound
}

func (stubRuleRepo) FindBySupplierID(context.Context, string) (*pricing.SupplierPricingRule, error) {
	return nil, shared.ErrNotFound
}

func (stubRuleRepo) FindByAlias(context.Context, string) (*pricing.SupplierPricingRule, error) {
	return nil, shared.ErrNotFound
}

type stubSupplierRepo struct{}

func (stubSupplierRepo) FindByKey(context.Context, string) (*pricing.Supplier, error) {
	return nil, shared.ErrNotFound
}

func testProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("bosch-X1", "Bosch", "X1", "Oil Filter")
	require.NoError(t, err)
	return p
}

func offerWith(prices pricing.PriceTable) catalog.Offer {
	return catalog.Offer{Supplier: "alpha", Stock: 5, PublicPrices: prices}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolveLine_NoRulesSelectsDefaultTier(t *testing.T) {
	r := newTestResolver(&stubClientRulesRepo{})
	offer := offerWith(pricing.PriceTable{
		pricing.TierRetail: dec("120"),
		pricing.TierPrice2: dec("100"),
	})

	res, err := r.ResolveLine(context.Background(), &pricing.ClientPricingRules{}, fixedMarkups{}, testProduct(t), offer, pricing.TierPrice2)
	require.NoError(t, err)

	assert.Equal(t, "100", res.Price.String())
	assert.Equal(t, pricing.TierPrice2, res.PriceGroup)
	assert.Equal(t, pricing.TierPrice2, res.DefaultPriceGroup)
	assert.False(t, res.HasAdjustment)
}

func TestResolveLine_ScopePrecedence(t *testing.T) {
	prices := pricing.PriceTable{
		pricing.TierRetail:    dec("120"),
		pricing.TierPrice1:    dec("110"),
		pricing.TierPrice2:    dec("100"),
		pricing.TierWholesale: dec("90"),
	}
	product := testProduct(t)
	offer := offerWith(prices)

	clientRules := &pricing.ClientPricingRules{
		Rules: pricing.RuleList{
			// Declared out of order on purpose; scope precedence wins.
			{Scope: pricing.ScopeSupplier, Matcher: "alpha", PriceGroup: pricing.TierWholesale},
			{Scope: pricing.ScopeBrand, Matcher: "BOSCH", PriceGroup: pricing.TierPrice1},
			{Scope: pricing.ScopeProduct, Matcher: "bosch-X1", PriceGroup: pricing.TierPrice2},
		},
	}

	r := newTestResolver(&stubClientRulesRepo{})

	t.Run("product rule beats brand and supplier rules", func(t *testing.T) {
		res, err := r.ResolveLine(context.Background(), clientRules, fixedMarkups{}, product, offer, pricing.TierRetail)
		require.NoError(t, err)
		assert.Equal(t, "100", res.Price.String())
		assert.Equal(t, pricing.TierPrice2, res.PriceGroup)
	})

	t.Run("brand rule applies when no product rule matches", func(t *testing.T) {
		rules := &pricing.ClientPricingRules{Rules: clientRules.Rules[:2]}
		res, err := r.ResolveLine(context.Background(), rules, fixedMarkups{}, product, offer, pricing.TierRetail)
		require.NoError(t, err)
		assert.Equal(t, "110", res.Price.String())
		assert.Equal(t, pricing.TierPrice1, res.PriceGroup)
	})

	t.Run("supplier rule is the last resort", func(t *testing.T) {
		rules := &pricing.ClientPricingRules{Rules: clientRules.Rules[:1]}
		res, err := r.ResolveLine(context.Background(), rules, fixedMarkups{}, product, offer, pricing.TierRetail)
		require.NoError(t, err)
		assert.Equal(t, "90", res.Price.String())
		assert.Equal(t, pricing.TierWholesale, res.PriceGroup)
	})
}

func TestResolveLine_AdjustmentAndCeilingRounding(t *testing.T) {
	r := newTestResolver(&stubClientRulesRepo{})
	product := testProduct(t)
	offer := offerWith(pricing.PriceTable{
		pricing.TierRetail: dec("120"),
		pricing.TierPrice2: dec("99.99"),
	})

	clientRules := &pricing.ClientPricingRules{
		Rules: pricing.RuleList{
			{Scope: pricing.ScopeBrand, Matcher: "bosch", PriceGroup: pricing.TierPrice2, Adjustment: dec("-10")},
		},
	}

	res, err := r.ResolveLine(context.Background(), clientRules, fixedMarkups{}, product, offer, pricing.TierRetail)
	require.NoError(t, err)

	// 99.99 * 0.9 = 89.991, rounded UP to 90.00
	assert.Equal(t, "90", res.Price.String())
	assert.True(t, res.HasAdjustment)
	assert.Equal(t, pricing.TierPrice2, res.PriceGroup)
	assert.Equal(t, pricing.TierRetail, res.DefaultPriceGroup)
}

func TestResolveLine_GlobalAdjustmentStacks(t *testing.T) {
	r := newTestResolver(&stubClientRulesRepo{})
	offer := offerWith(pricing.PriceTable{pricing.TierRetail: dec("100")})

	clientRules := &pricing.ClientPricingRules{
		GlobalAdjustment: dec("5"),
		Rules: pricing.RuleList{
			{Scope: pricing.ScopeBrand, Matcher: "bosch", PriceGroup: pricing.TierRetail, Adjustment: dec("-10")},
		},
	}

	res, err := r.ResolveLine(context.Background(), clientRules, fixedMarkups{}, testProduct(t), offer, pricing.TierRetail)
	require.NoError(t, err)

	// 100 * 0.9 * 1.05 = 94.5
	assert.Equal(t, "94.5", res.Price.String())
	assert.True(t, res.HasAdjustment)
}

func TestResolveLine_GlobalAdjustmentAloneSetsFlag(t *testing.T) {
	r := newTestResolver(&stubClientRulesRepo{})
	offer := offerWith(pricing.PriceTable{pricing.TierRetail: dec("100")})
	clientRules := &pricing.ClientPricingRules{GlobalAdjustment: dec("2")}

	res, err := r.ResolveLine(context.Background(), clientRules, fixedMarkups{}, testProduct(t), offer, pricing.TierRetail)
	require.NoError(t, err)

	assert.Equal(t, "102", res.Price.String())
	assert.True(t, res.HasAdjustment)
}

func TestResolveLine_RetailFallbackWhenTierMissing(t *testing.T) {
	r := newTestResolver(&stubClientRulesRepo{})
	offer := offerWith(pricing.PriceTable{pricing.TierRetail: dec("120")})

	res, err := r.ResolveLine(context.Background(), &pricing.ClientPricingRules{}, fixedMarkups{}, testProduct(t), offer, pricing.TierPrice3)
	require.NoError(t, err)

	assert.Equal(t, "120", res.Price.String())
	assert.Equal(t, pricing.TierPrice3, res.PriceGroup, "requested tier is reported even when retail backed the price")
}

func TestResolveLine_NoUsablePriceIsZero(t *testing.T) {
	r := newTestResolver(&stubClientRulesRepo{})
	offer := offerWith(pricing.PriceTable{pricing.TierRetail: decimal.Zero})

	res, err := r.ResolveLine(context.Background(), &pricing.ClientPricingRules{}, fixedMarkups{}, testProduct(t), offer, pricing.TierPrice1)
	require.NoError(t, err)

	assert.True(t, res.Price.IsZero(), "zero price signals no valid price; callers must reject the line")
}

func TestResolveLine_InvalidInputs(t *testing.T) {
	r := newTestResolver(&stubClientRulesRepo{})
	offer := offerWith(pricing.PriceTable{pricing.TierRetail: dec("120")})

	_, err := r.ResolveLine(context.Background(), nil, fixedMarkups{}, testProduct(t), offer, pricing.PriceTier("gold"))
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	_, err = r.ResolveLine(context.Background(), nil, fixedMarkups{}, nil, offer, pricing.TierRetail)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
}

func TestResolveLegacy_DirectTierPrice(t *testing.T) {
	r := newTestResolver(&stubClientRulesRepo{})
	offer := offerWith(pricing.PriceTable{pricing.TierPrice1: dec("110")})

	// nil client rules select the legacy path.
	res, err := r.ResolveLine(context.Background(), nil, fixedMarkups{}, testProduct(t), offer, pricing.TierPrice1)
	require.NoError(t, err)

	assert.Equal(t, "110", res.Price.String())
	assert.False(t, res.HasAdjustment)
}

func TestResolveLegacy_RatioFallback(t *testing.T) {
	r := newTestResolver(&stubClientRulesRepo{})
	offer := offerWith(pricing.PriceTable{pricing.TierRetail: dec("120")})
	markups := fixedMarkups{pct: pricing.TierPercentages{
		Retail: dec("20"),
		Price1: dec("10"),
	}}

	res, err := r.ResolveLine(context.Background(), nil, markups, testProduct(t), offer, pricing.TierPrice1)
	require.NoError(t, err)

	// 120 * (1.10 / 1.20) = 110, rounded to nearest
	assert.Equal(t, "110", res.Price.String())
	assert.Equal(t, pricing.TierPrice1, res.PriceGroup)
}

func TestResolveLegacy_NoRetailMeansZero(t *testing.T) {
	r := newTestResolver(&stubClientRulesRepo{})
	offer := offerWith(pricing.PriceTable{})

	res, err := r.ResolveLine(context.Background(), nil, fixedMarkups{}, testProduct(t), offer, pricing.TierPrice1)
	require.NoError(t, err)
	assert.True(t, res.Price.IsZero())
}

func TestResolveLegacy_DegenerateRetailFactor(t *testing.T) {
	r := newTestResolver(&stubClientRulesRepo{})
	offer := offerWith(pricing.PriceTable{pricing.TierRetail: dec("120")})
	markups := fixedMarkups{pct: pricing.TierPercentages{Retail: dec("-100")}}

	res, err := r.ResolveLine(context.Background(), nil, markups, testProduct(t), offer, pricing.TierPrice1)
	require.NoError(t, err)
	assert.True(t, res.Price.IsZero(), "division by a zero retail factor must not happen")
}

func TestClientRules(t *testing.T) {
	t.Run("nil client id yields nil rules", func(t *testing.T) {
		r := newTestResolver(&stubClientRulesRepo{})
		rules, err := r.ClientRules(context.Background(), nil)
		require.NoError(t, err)
		assert.Nil(t, rules)
	})

	t.Run("client without rules yields nil, not an error", func(t *testing.T) {
		r := newTestResolver(&stubClientRulesRepo{err: shared.ErrNotFound})
		id := uuid.New()
		rules, err := r.ClientRules(context.Background(), &id)
		require.NoError(t, err)
		assert.Nil(t, rules)
	})

	t.Run("real repository errors propagate", func(t *testing.T) {
		r := newTestResolver(&stubClientRulesRepo{err: shared.ErrInternal})
		id := uuid.New()
		_, err := r.ClientRules(context.Background(), &id)
		assert.ErrorIs(t, err, shared.ErrInternal)
	})
}

func TestResolveUnitPrice_UsesClientRules(t *testing.T) {
	clientRules := &pricing.ClientPricingRules{
		Rules: pricing.RuleList{
			{Scope: pricing.ScopeBrand, Matcher: "bosch", PriceGroup: pricing.TierPrice2, Adjustment: dec("-10")},
		},
	}
	r := newTestResolver(&stubClientRulesRepo{rules: clientRules})
	offer := offerWith(pricing.PriceTable{
		pricing.TierRetail: dec("120"),
		pricing.TierPrice2: dec("100"),
	})
	id := uuid.New()

	res, err := r.ResolveUnitPrice(context.Background(), &id, testProduct(t), offer, pricing.TierRetail)
	require.NoError(t, err)

	assert.Equal(t, "90", res.Price.String())
	assert.True(t, res.HasAdjustment)
}
