package pricing

import (
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// TierPercentages holds one percentage markup per price tier. Markups are
// applied to a supplier's purchase cost to synthesize public prices when a
// feed carries cost instead of price.
type TierPercentages struct {
	Retail    decimal.Decimal `json:"retail"`
	Price1    decimal.Decimal `json:"price_1"`
	Price2    decimal.Decimal `json:"price_2"`
	Price3    decimal.Decimal `json:"price_3"`
	Wholesale decimal.Decimal `json:"wholesale"`
}

// ZeroPercentages returns all-zero markups, the terminal fallback when no
// pricing rule can be found for a supplier.
func ZeroPercentages() TierPercentages {
	return TierPercentages{}
}

// PercentFor returns the markup percentage for the given tier.
func (t TierPercentages) PercentFor(tier PriceTier) decimal.Decimal {
	switch tier {
	case TierRetail:
		return t.Retail
	case TierPrice1:
		return t.Price1
	case TierPrice2:
		return t.Price2
	case TierPrice3:
		return t.Price3
	case TierWholesale:
		return t.Wholesale
	}
	return decimal.Zero
}

// IsZero reports whether every tier markup is zero.
func (t TierPercentages) IsZero() bool {
	return t.Retail.IsZero() && t.Price1.IsZero() && t.Price2.IsZero() &&
		t.Price3.IsZero() && t.Wholesale.IsZero()
}

// DerivePublicPrices builds a full price table from a purchase cost by
// applying the per-tier markup: price = cost * (1 + percent/100).
// Derived prices round to the NEAREST 2 decimals. This intentionally
// differs from the ceiling rounding used when resolving a client price;
// the two policies must not be unified.
func DerivePublicPrices(purchase decimal.Decimal, markups TierPercentages) PriceTable {
	table := make(PriceTable, 5)
	for _, tier := range AllTiers() {
		factor := decimal.NewFromInt(1).Add(markups.PercentFor(tier).Div(oneHundred))
		table[tier] = purchase.Mul(factor).Round(2)
	}
	return table
}

// ApplyPercent applies a percentage adjustment to a price without rounding:
// price * (1 + percent/100). Callers decide the rounding policy.
func ApplyPercent(price, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return price
	}
	return price.Mul(decimal.NewFromInt(1).Add(percent.Div(oneHundred)))
}

// RoundUp2 rounds a price up (ceiling) to 2 decimals. Used for final
// client-facing prices so rounding never under-charges.
func RoundUp2(price decimal.Decimal) decimal.Decimal {
	return price.RoundCeil(2)
}
