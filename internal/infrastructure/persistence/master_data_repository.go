package persistence

import (
	"context"

	"github.com/b2bportal/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormMasterDataRepository implements MasterDataRepository using GORM
type GormMasterDataRepository struct {
	db *gorm.DB
}

// NewGormMasterDataRepository creates a new GormMasterDataRepository
func NewGormMasterDataRepository(db *gorm.DB) *GormMasterDataRepository {
	return &GormMasterDataRepository{db: db}
}

// FindAll returns every master-data record in one pass
func (r *GormMasterDataRepository) FindAll(ctx context.Context) ([]catalog.MasterDataEntry, error) {
	var entries []catalog.MasterDataEntry
	if err := r.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// GormBrandSynonymRepository implements BrandSynonymRepository using GORM
type GormBrandSynonymRepository struct {
	db *gorm.DB
}

// NewGormBrandSynonymRepository creates a new GormBrandSynonymRepository
func NewGormBrandSynonymRepository(db *gorm.DB) *GormBrandSynonymRepository {
	return &GormBrandSynonymRepository{db: db}
}

// FindAll returns every brand synonym record in one pass
func (r *GormBrandSynonymRepository) FindAll(ctx context.Context) ([]catalog.BrandSynonym, error) {
	var synonyms []catalog.BrandSynonym
	if err := r.db.WithContext(ctx).Find(&synonyms).Error; err != nil {
		return nil, err
	}
	return synonyms, nil
}

// Ensure implementations satisfy their interfaces
var (
	_ catalog.MasterDataRepository   = (*GormMasterDataRepository)(nil)
	_ catalog.BrandSynonymRepository = (*GormBrandSynonymRepository)(nil)
)
