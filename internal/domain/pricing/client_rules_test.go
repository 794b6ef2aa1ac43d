package pricing

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleScope_IsValid(t *testing.T) {
	assert.True(t, ScopeProduct.IsValid())
	assert.True(t, ScopeBrand.IsValid())
	assert.True(t, ScopeSupplier.IsValid())
	assert.False(t, RuleScope("category").IsValid())
}

func TestClientPricingRules_RulesForScope(t *testing.T) {
	rules := &ClientPricingRules{
		Rules: RuleList{
			{Scope: ScopeBrand, Matcher: "bosch", PriceGroup: TierPrice1},
			{Scope: ScopeProduct, Matcher: "bosch-X1", PriceGroup: TierPrice2},
			{Scope: ScopeBrand, Matcher: "mann", PriceGroup: TierPrice3},
		},
	}

	brand := rules.RulesForScope(ScopeBrand)
	require.Len(t, brand, 2)
	assert.Equal(t, "bosch", brand[0].Matcher, "declared order preserved")
	assert.Equal(t, "mann", brand[1].Matcher)

	assert.Len(t, rules.RulesForScope(ScopeProduct), 1)
	assert.Empty(t, rules.RulesForScope(ScopeSupplier))
}

func TestRuleList_ScanValue(t *testing.T) {
	list := RuleList{
		{Scope: ScopeBrand, Matcher: "bosch", PriceGroup: TierPrice2, Adjustment: decimal.NewFromInt(-10)},
	}

	v, err := list.Value()
	require.NoError(t, err)

	var restored RuleList
	require.NoError(t, restored.Scan(v))
	require.Len(t, restored, 1)
	assert.Equal(t, ScopeBrand, restored[0].Scope)
	assert.Equal(t, "-10", restored[0].Adjustment.String())
}

func TestRuleList_ScanNil(t *testing.T) {
	var list RuleList
	require.NoError(t, list.Scan(nil))
	assert.Empty(t, list)
}

func TestClientRule_JSONShape(t *testing.T) {
	rule := ClientRule{Scope: ScopeSupplier, Matcher: "alpha", PriceGroup: TierWholesale, Adjustment: decimal.NewFromInt(5)}

	data, err := json.Marshal(rule)
	require.NoError(t, err)
	assert.JSONEq(t, `{"scope":"supplier","matcher":"alpha","priceGroup":"wholesale","adjustment":"5"}`, string(data))
}
