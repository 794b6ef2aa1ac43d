package catalog

import (
	"time"

	"github.com/google/uuid"
)

// SupplierProductIndexEntry is one row of the denormalized reverse index
// (supplier, product key) -> product id. It lets a reconciliation run load
// a supplier's whole footprint in one query instead of scanning the
// catalog. The reconciliation engine owns these rows exclusively and prunes
// stale ones in the same pass that removes an offer.
type SupplierProductIndexEntry struct {
	Supplier   string    `gorm:"type:varchar(100);not null;primaryKey"`
	ProductKey string    `gorm:"type:varchar(200);not null;primaryKey"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM
func (SupplierProductIndexEntry) TableName() string {
	return "supplier_product_index"
}
