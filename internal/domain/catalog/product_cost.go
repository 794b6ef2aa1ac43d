package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CostMap maps a supplier name to the purchase cost it last reported,
// stored as a JSONB column.
type CostMap map[string]decimal.Decimal

// Value implements driver.Valuer for database storage
func (m CostMap) Value() (driver.Value, error) {
	if m == nil {
		m = CostMap{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (m *CostMap) Scan(value any) error {
	if value == nil {
		*m = CostMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CostMap", value)
	}
	return json.Unmarshal(data, m)
}

// ProductCost is the private purchase-cost record parallel to a Product.
// It shares the owning product's lifecycle but its own emptiness never
// forces product deletion.
type ProductCost struct {
	shared.BaseEntity
	ProductKey         string  `gorm:"type:varchar(200);not null;uniqueIndex"`
	PurchaseBySupplier CostMap `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (ProductCost) TableName() string {
	return "product_costs"
}

// NewProductCost creates an empty cost record for a product key.
func NewProductCost(productKey string) *ProductCost {
	return &ProductCost{
		BaseEntity:         shared.NewBaseEntity(),
		ProductKey:         productKey,
		PurchaseBySupplier: CostMap{},
	}
}

// SetPurchase records the supplier's purchase cost.
func (c *ProductCost) SetPurchase(supplier string, cost decimal.Decimal) {
	if c.PurchaseBySupplier == nil {
		c.PurchaseBySupplier = CostMap{}
	}
	c.PurchaseBySupplier[supplier] = cost
}

// RemovePurchase drops the supplier's purchase cost, if present.
func (c *ProductCost) RemovePurchase(supplier string) {
	delete(c.PurchaseBySupplier, supplier)
}

// Purchase returns the supplier's purchase cost, if recorded.
func (c *ProductCost) Purchase(supplier string) (decimal.Decimal, bool) {
	cost, ok := c.PurchaseBySupplier[supplier]
	return cost, ok
}
