package persistence

import (
	"context"
	"errors"

	"github.com/b2bportal/backend/internal/domain/catalog"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCatalogStore implements the catalog's transactional reconciliation
// surface and the read side used by pricing and ordering. ApplyOffer and
// RemoveOffer each run in one transaction covering the product, its cost
// record and the reverse-index row, so a crashed run leaves every touched
// product either fully merged or untouched.
type GormCatalogStore struct {
	db *gorm.DB
}

// NewGormCatalogStore creates a new GormCatalogStore
func NewGormCatalogStore(db *gorm.DB) *GormCatalogStore {
	return &GormCatalogStore{db: db}
}

// FindByKey finds a product by its canonical key
func (s *GormCatalogStore) FindByKey(ctx context.Context, key string) (*catalog.Product, error) {
	var product catalog.Product
	if err := s.db.WithContext(ctx).First(&product, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByKeys fetches products for a batch of canonical keys in one query
func (s *GormCatalogStore) FindByKeys(ctx context.Context, keys []string) ([]catalog.Product, error) {
	if len(keys) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := s.db.WithContext(ctx).Where("key IN ?", keys).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// IndexEntriesBySupplier loads the supplier's reverse-index rows in one query
func (s *GormCatalogStore) IndexEntriesBySupplier(ctx context.Context, supplier string) ([]catalog.SupplierProductIndexEntry, error) {
	var entries []catalog.SupplierProductIndexEntry
	if err := s.db.WithContext(ctx).
		Where("supplier = ?", supplier).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ProductsByIDs fetches products for a batch of ids
func (s *GormCatalogStore) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ApplyOffer merges one feed row's outcome into the catalog: create or
// refresh the product, splice in the supplier's offer, record the purchase
// cost when one came with the row, and refresh the reverse-index entry.
func (s *GormCatalogStore) ApplyOffer(ctx context.Context, upsert catalog.OfferUpsert) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product catalog.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "key = ?", upsert.Key).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			fresh, err := catalog.NewProduct(upsert.Key, upsert.Brand, upsert.Article, upsert.Name)
			if err != nil {
				return err
			}
			product = *fresh
		case err != nil:
			return err
		}

		product.ApplyUpsert(upsert)

		if err := tx.Save(&product).Error; err != nil {
			return err
		}

		if upsert.Purchase != nil {
			if err := s.savePurchase(tx, upsert.Key, upsert.Offer.Supplier, upsert); err != nil {
				return err
			}
		}

		entry := catalog.SupplierProductIndexEntry{
			Supplier:   upsert.Offer.Supplier,
			ProductKey: upsert.Key,
			ProductID:  product.ID,
			UpdatedAt:  product.UpdatedAt,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "supplier"}, {Name: "product_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"product_id", "updated_at"}),
		}).Create(&entry).Error
	})
}

// savePurchase upserts the supplier's cost into the product's cost record.
func (s *GormCatalogStore) savePurchase(tx *gorm.DB, productKey, supplier string, upsert catalog.OfferUpsert) error {
	var cost catalog.ProductCost
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cost, "product_key = ?", productKey).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		cost = *catalog.NewProductCost(productKey)
	case err != nil:
		return err
	}
	cost.SetPurchase(supplier, *upsert.Purchase)
	return tx.Save(&cost).Error
}

// RemoveOffer splices the supplier's offer out of the product. When the
// last offer goes the product and its cost record are deleted outright; the
// reverse-index row is deleted in every case, including when the product or
// offer is already gone, so the index can never outlive what it points at.
// A missing product or offer commits the index cleanup and then reports
// shared.ErrNotFound.
func (s *GormCatalogStore) RemoveOffer(ctx context.Context, supplier, productKey string) error {
	var notFound bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product catalog.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "key = ?", productKey).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound = true
			return s.deleteIndexEntry(tx, supplier, productKey)
		}
		if err != nil {
			return err
		}

		removed, empty := product.RemoveOffer(supplier)
		if !removed {
			notFound = true
			return s.deleteIndexEntry(tx, supplier, productKey)
		}

		if empty {
			if err := tx.Delete(&catalog.Product{}, "key = ?", productKey).Error; err != nil {
				return err
			}
			if err := tx.Delete(&catalog.ProductCost{}, "product_key = ?", productKey).Error; err != nil {
				return err
			}
			return s.deleteIndexEntry(tx, supplier, productKey)
		}

		if err := tx.Save(&product).Error; err != nil {
			return err
		}
		if err := s.removePurchase(tx, supplier, productKey); err != nil {
			return err
		}
		return s.deleteIndexEntry(tx, supplier, productKey)
	})
	if err != nil {
		return err
	}
	if notFound {
		return shared.ErrNotFound
	}
	return nil
}

// removePurchase drops the supplier's cost from the product's cost record,
// tolerating a missing record.
func (s *GormCatalogStore) removePurchase(tx *gorm.DB, supplier, productKey string) error {
	var cost catalog.ProductCost
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cost, "product_key = ?", productKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	cost.RemovePurchase(supplier)
	return tx.Save(&cost).Error
}

func (s *GormCatalogStore) deleteIndexEntry(tx *gorm.DB, supplier, productKey string) error {
	return tx.Delete(
		&catalog.SupplierProductIndexEntry{},
		"supplier = ? AND product_key = ?", supplier, productKey,
	).Error
}

// Ensure GormCatalogStore implements both catalog surfaces
var (
	_ catalog.ReconciliationStore = (*GormCatalogStore)(nil)
	_ catalog.ProductReader       = (*GormCatalogStore)(nil)
)
