package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPriceTier_IsValid(t *testing.T) {
	for _, tier := range AllTiers() {
		assert.True(t, tier.IsValid(), tier.String())
	}
	assert.False(t, PriceTier("gold").IsValid())
	assert.False(t, PriceTier("").IsValid())
}

func TestPriceTable_Get(t *testing.T) {
	table := PriceTable{
		TierRetail:    decimal.NewFromInt(100),
		TierPrice1:    decimal.Zero,
		TierWholesale: decimal.NewFromInt(-5),
	}

	t.Run("positive price is present", func(t *testing.T) {
		price, ok := table.Get(TierRetail)
		assert.True(t, ok)
		assert.Equal(t, "100", price.String())
	})

	t.Run("zero price is treated as absent", func(t *testing.T) {
		_, ok := table.Get(TierPrice1)
		assert.False(t, ok)
	})

	t.Run("negative price is treated as absent", func(t *testing.T) {
		_, ok := table.Get(TierWholesale)
		assert.False(t, ok)
	})

	t.Run("missing tier is absent", func(t *testing.T) {
		_, ok := table.Get(TierPrice3)
		assert.False(t, ok)
	})
}

func TestPriceTable_Complete(t *testing.T) {
	table := PriceTable{}
	for _, tier := range AllTiers() {
		assert.False(t, table.Complete())
		table[tier] = decimal.NewFromInt(1)
	}
	assert.True(t, table.Complete())
}

func TestPriceTable_Clone(t *testing.T) {
	table := PriceTable{TierRetail: decimal.NewFromInt(100)}
	clone := table.Clone()
	clone[TierRetail] = decimal.NewFromInt(1)

	assert.Equal(t, "100", table[TierRetail].String(), "clone must not alias the original")
}
