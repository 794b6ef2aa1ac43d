package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferUpsert is the unit of work for merging one feed row into the
// catalog: the product fields to create or refresh, the supplier's new
// offer, and optionally the purchase cost that accompanied it.
type OfferUpsert struct {
	Key         string
	Brand       string
	Article     string
	Name        string
	NeedsReview bool
	Categories  StringList
	Pack        string
	Tolerances  string
	Synonyms    StringList
	Offer       Offer
	Purchase    *decimal.Decimal
}

// ReconciliationStore is the transactional storage surface the catalog
// reconciliation engine runs against. ApplyOffer and RemoveOffer each
// execute as a single per-product transaction; no atomicity across
// products is provided or required.
type ReconciliationStore interface {
	// IndexEntriesBySupplier loads the supplier's reverse-index rows in one query
	IndexEntriesBySupplier(ctx context.Context, supplier string) ([]SupplierProductIndexEntry, error)

	// ProductsByIDs fetches products for a batch of ids. Callers chunk the
	// id list to the backing store's query ceiling.
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// ApplyOffer merges the upsert into the product and cost records and
	// refreshes the reverse-index entry, all in one transaction.
	ApplyOffer(ctx context.Context, upsert OfferUpsert) error

	// RemoveOffer splices the supplier's offer out of the product, deleting
	// product and cost records when the last offer goes, and always deletes
	// the stale reverse-index entry, all in one transaction.
	RemoveOffer(ctx context.Context, supplier, productKey string) error
}

// ProductReader is the read-side surface used by pricing and ordering.
type ProductReader interface {
	// FindByKey finds a product by its canonical key
	FindByKey(ctx context.Context, key string) (*Product, error)

	// FindByKeys fetches products for a batch of canonical keys in one query
	FindByKeys(ctx context.Context, keys []string) ([]Product, error)
}

// MasterDataRepository loads the curated metadata for cache rebuilds.
type MasterDataRepository interface {
	// FindAll returns every master-data record in one pass
	FindAll(ctx context.Context) ([]MasterDataEntry, error)
}

// BrandSynonymRepository loads the brand synonym records for cache rebuilds.
type BrandSynonymRepository interface {
	// FindAll returns every brand synonym record in one pass
	FindAll(ctx context.Context) ([]BrandSynonym, error)
}
