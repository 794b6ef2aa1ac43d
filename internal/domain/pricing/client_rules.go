package pricing

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RuleScope determines what a client pricing rule matches against.
type RuleScope string

const (
	ScopeProduct  RuleScope = "product"
	ScopeBrand    RuleScope = "brand"
	ScopeSupplier RuleScope = "supplier"
)

// IsValid checks if the scope is a recognized value
func (s RuleScope) IsValid() bool {
	switch s {
	case ScopeProduct, ScopeBrand, ScopeSupplier:
		return true
	}
	return false
}

// ClientRule is one cascading override: when its matcher fits the product
// or offer being priced, it selects the price tier to use and applies a
// percentage adjustment (negative for a discount).
type ClientRule struct {
	Scope      RuleScope       `json:"scope"`
	Matcher    string          `json:"matcher"`
	PriceGroup PriceTier       `json:"priceGroup"`
	Adjustment decimal.Decimal `json:"adjustment"`
}

// RuleList is the ordered list of client rules, stored as a JSONB column.
type RuleList []ClientRule

// Value implements driver.Valuer for database storage
func (l RuleList) Value() (driver.Value, error) {
	if l == nil {
		l = RuleList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (l *RuleList) Scan(value any) error {
	if value == nil {
		*l = RuleList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into RuleList", value)
	}
	return json.Unmarshal(data, l)
}

// ClientPricingRules holds one client's override rule set plus a single
// global percentage adjustment. It is read-only input to price resolution
// and never mutated by the pricing engine.
type ClientPricingRules struct {
	shared.BaseEntity
	ClientID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	GlobalAdjustment decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0"`
	Rules            RuleList        `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (ClientPricingRules) TableName() string {
	return "client_pricing_rules"
}

// RulesForScope returns the client's rules of one scope, preserving their
// declared order. Resolution walks product, then brand, then supplier.
func (c *ClientPricingRules) RulesForScope(scope RuleScope) []ClientRule {
	var out []ClientRule
	for _, r := range c.Rules {
		if r.Scope == scope {
			out = append(out, r)
		}
	}
	return out
}

// ClientPricingRulesRepository provides access to client rule sets.
type ClientPricingRulesRepository interface {
	// FindByClient returns the rule set for a client, or shared.ErrNotFound
	// when the client has no rules at all (legacy pricing applies then).
	FindByClient(ctx context.Context, clientID uuid.UUID) (*ClientPricingRules, error)
}
