package pricing

import (
	"github.com/shopspring/decimal"
)

// PriceTier identifies one of the five fixed client price categories.
// Every public price table carries exactly these tiers; anything else
// coming from a supplier feed must be derived through markup rules.
type PriceTier string

const (
	TierRetail    PriceTier = "retail"
	TierPrice1    PriceTier = "price_1"
	TierPrice2    PriceTier = "price_2"
	TierPrice3    PriceTier = "price_3"
	TierWholesale PriceTier = "wholesale"
)

// AllTiers returns the five recognized tiers in canonical order.
func AllTiers() []PriceTier {
	return []PriceTier{TierRetail, TierPrice1, TierPrice2, TierPrice3, TierWholesale}
}

// IsValid checks if the tier is one of the recognized five
func (t PriceTier) IsValid() bool {
	switch t {
	case TierRetail, TierPrice1, TierPrice2, TierPrice3, TierWholesale:
		return true
	}
	return false
}

// String returns the string representation of the tier
func (t PriceTier) String() string {
	return string(t)
}

// PriceTable maps each price tier to a public unit price.
type PriceTable map[PriceTier]decimal.Decimal

// Get returns the price for a tier and whether it is present and positive.
// A zero or negative stored price is treated as absent, matching the
// resolution fallback rules.
func (p PriceTable) Get(tier PriceTier) (decimal.Decimal, bool) {
	price, ok := p[tier]
	if !ok || !price.IsPositive() {
		return decimal.Zero, false
	}
	return price, true
}

// Complete reports whether the table carries all five recognized tiers.
func (p PriceTable) Complete() bool {
	for _, tier := range AllTiers() {
		if _, ok := p[tier]; !ok {
			return false
		}
	}
	return true
}

// Clone returns a copy of the table.
func (p PriceTable) Clone() PriceTable {
	out := make(PriceTable, len(p))
	for tier, price := range p {
		out[tier] = price
	}
	return out
}
