package reconcile

import (
	"context"
	"errors"
	"sync"

	"github.com/b2bportal/backend/internal/domain/catalog"
	"github.com/b2bportal/backend/internal/domain/pricing"
	"github.com/b2bportal/backend/internal/domain/shared"
)

// RulesCache memoizes supplier markup percentages for the duration of one
// reconciliation run. It is created per run and discarded with it, so rule
// edits take effect on the next run without any cross-run invalidation.
//
// Resolution order for a supplier id, first hit wins:
//  1. a rules record whose RuleID equals the supplier id
//  2. a rules record whose SupplierID field equals it
//  3. a rules record matched by one of the legacy alias columns
//  4. the supplier master record's embedded markups
//  5. all-zero percentages
type RulesCache struct {
	ruleRepo     pricing.SupplierPricingRuleRepository
	supplierRepo pricing.SupplierRepository

	mu   sync.Mutex
	memo map[string]pricing.TierPercentages
}

// NewRulesCache creates a fresh per-run cache.
func NewRulesCache(ruleRepo pricing.SupplierPricingRuleRepository, supplierRepo pricing.SupplierRepository) *RulesCache {
	return &RulesCache{
		ruleRepo:     ruleRepo,
		supplierRepo: supplierRepo,
		memo:         make(map[string]pricing.TierPercentages),
	}
}

// PercentagesFor resolves the markup percentages for a supplier id,
// memoizing the result for the remainder of the run.
func (c *RulesCache) PercentagesFor(ctx context.Context, supplierID string) (pricing.TierPercentages, error) {
	normalized := catalog.NormalizeBrandKey(supplierID)

	c.mu.Lock()
	if pct, ok := c.memo[normalized]; ok {
		c.mu.Unlock()
		return pct, nil
	}
	c.mu.Unlock()

	pct, err := c.resolve(ctx, normalized)
	if err != nil {
		return pricing.TierPercentages{}, err
	}

	c.mu.Lock()
	c.memo[normalized] = pct
	c.mu.Unlock()
	return pct, nil
}

// resolve walks the lookup cascade. Each step either hits, misses
// (shared.ErrNotFound), or fails; only a real failure stops the walk.
func (c *RulesCache) resolve(ctx context.Context, supplierID string) (pricing.TierPercentages, error) {
	lookups := []func(context.Context) (*pricing.TierPercentages, error){
		func(ctx context.Context) (*pricing.TierPercentages, error) {
			return percentagesOf(c.ruleRepo.FindByRuleID(ctx, supplierID))
		},
		func(ctx context.Context) (*pricing.TierPercentages, error) {
			return percentagesOf(c.ruleRepo.FindBySupplierID(ctx, supplierID))
		},
		func(ctx context.Context) (*pricing.TierPercentages, error) {
			return percentagesOf(c.ruleRepo.FindByAlias(ctx, supplierID))
		},
		func(ctx context.Context) (*pricing.TierPercentages, error) {
			supplier, err := c.supplierRepo.FindByKey(ctx, supplierID)
			if err != nil {
				return nil, err
			}
			if supplier.EmbeddedRules == nil {
				return nil, shared.ErrNotFound
			}
			return &supplier.EmbeddedRules.TierPercentages, nil
		},
	}

	for _, lookup := range lookups {
		pct, err := lookup(ctx)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return pricing.TierPercentages{}, err
		}
		return *pct, nil
	}
	return pricing.ZeroPercentages(), nil
}

// percentagesOf unwraps a rule lookup into its percentages.
func percentagesOf(rule *pricing.SupplierPricingRule, err error) (*pricing.TierPercentages, error) {
	if err != nil {
		return nil, err
	}
	return &rule.Percentages, nil
}
