package reconcile

import (
	"github.com/b2bportal/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// FeedRow is one normalized-shape row of a supplier's price/stock feed.
// The feed layer has already resolved column aliases; the engine only sees
// logical fields. Either Cost (a single purchase-or-price value the markup
// rules expand into the five tiers) or a complete PublicPrices table must
// be present for an upsert.
type FeedRow struct {
	Brand        string
	Article      string
	Name         string
	Stock        int
	Cost         *decimal.Decimal
	PublicPrices pricing.PriceTable
}

// ItemFailure records one per-product operation that failed after the
// store's own retries were exhausted. Failures never abort the run.
type ItemFailure struct {
	ProductKey string `json:"productKey"`
	Op         string `json:"op"` // "upsert" or "remove"
	Error      string `json:"error"`
}

// Result is the outcome of one reconciliation run.
type Result struct {
	OK        int           `json:"ok"`
	Skipped   int           `json:"skipped"`
	Removed   int           `json:"removed"`
	Total     int           `json:"total"`
	Unchanged int           `json:"unchanged"` // subset of OK that needed no write
	Failures  []ItemFailure `json:"failures,omitempty"`
}
