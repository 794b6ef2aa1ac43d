package catalog

import (
	"github.com/b2bportal/backend/internal/domain/shared"
)

// MasterDataEntry is curated per-product metadata independent of any
// supplier feed: corrected name, categories, pack, tolerances and the
// synonym articles that resolve to the same product.
type MasterDataEntry struct {
	shared.BaseEntity
	Brand      string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_master_brand_article,priority:1"`
	Article    string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_master_brand_article,priority:2"` // normalized
	Name       string     `gorm:"type:varchar(300)"`
	Categories StringList `gorm:"type:jsonb"`
	Pack       string     `gorm:"type:varchar(50)"`
	Tolerances string     `gorm:"type:varchar(100)"`
	Synonyms   StringList `gorm:"type:jsonb"` // alternate article spellings, normalized on load
}

// TableName returns the table name for GORM
func (MasterDataEntry) TableName() string {
	return "master_data_entries"
}

// BrandSynonym maps a retired brand spelling (normalized key form) to the
// canonical display brand.
type BrandSynonym struct {
	shared.BaseEntity
	OldBrandKey    string `gorm:"type:varchar(100);not null;uniqueIndex"`
	CanonicalBrand string `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (BrandSynonym) TableName() string {
	return "brand_synonyms"
}

// BrandSynonymTable is the in-memory form of the synonym records:
// normalized old brand key -> canonical display brand.
type BrandSynonymTable map[string]string
