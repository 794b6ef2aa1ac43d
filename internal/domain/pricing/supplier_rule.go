package pricing

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/b2bportal/backend/internal/domain/shared"
)

// SupplierPricingRule carries the per-tier markup percentages for one
// supplier. The record may be matched by its primary id, its SupplierID
// field, or one of the legacy alias columns; the rules cache resolves them
// in fixed priority order.
type SupplierPricingRule struct {
	shared.BaseEntity
	RuleID      string          `gorm:"type:varchar(100);uniqueIndex"` // primary match: equals the normalized supplier id
	SupplierID  string          `gorm:"type:varchar(100);index"`       // secondary match
	SupplierKey string          `gorm:"type:varchar(100);index"`       // legacy alias
	Vendor      string          `gorm:"type:varchar(100);index"`       // legacy alias
	Percentages TierPercentages `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (SupplierPricingRule) TableName() string {
	return "supplier_pricing_rules"
}

// Supplier is the supplier master record. Besides identification it may
// embed its own markup percentages, the last non-default stop in the
// pricing-rule resolution cascade.
type Supplier struct {
	shared.BaseEntity
	Key           string               `gorm:"type:varchar(100);not null;uniqueIndex"` // normalized supplier name
	Name          string               `gorm:"type:varchar(200);not null"`
	EmbeddedRules *EmbeddedTierMarkups `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// EmbeddedTierMarkups wraps TierPercentages for storage as a nullable
// JSONB column on the supplier master record.
type EmbeddedTierMarkups struct {
	TierPercentages
}

// Value implements driver.Valuer for database storage
func (m EmbeddedTierMarkups) Value() (driver.Value, error) {
	b, err := json.Marshal(m.TierPercentages)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (m *EmbeddedTierMarkups) Scan(value any) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into EmbeddedTierMarkups", value)
	}
	return json.Unmarshal(data, &m.TierPercentages)
}

// SupplierPricingRuleRepository defines lookups used by the per-run rules
// cache. Each method returns shared.ErrNotFound when no record matches, so
// the cache can fall through the cascade without error-driven control flow.
type SupplierPricingRuleRepository interface {
	// FindByRuleID finds a rules record whose RuleID equals the supplier id
	FindByRuleID(ctx context.Context, ruleID string) (*SupplierPricingRule, error)

	// FindBySupplierID finds a rules record whose SupplierID field equals the supplier id
	FindBySupplierID(ctx context.Context, supplierID string) (*SupplierPricingRule, error)

	// FindByAlias finds a rules record by any of the legacy alias columns
	FindByAlias(ctx context.Context, alias string) (*SupplierPricingRule, error)
}

// SupplierRepository provides access to supplier master records.
type SupplierRepository interface {
	// FindByKey finds a supplier by its normalized key
	FindByKey(ctx context.Context, key string) (*Supplier, error)
}
