package persistence

import (
	"context"
	"errors"

	"github.com/b2bportal/backend/internal/domain/pricing"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierPricingRuleRepository implements SupplierPricingRuleRepository using GORM
type GormSupplierPricingRuleRepository struct {
	db *gorm.DB
}

// NewGormSupplierPricingRuleRepository creates a new GormSupplierPricingRuleRepository
func NewGormSupplierPricingRuleRepository(db *gorm.DB) *GormSupplierPricingRuleRepository {
	return &GormSupplierPricingRuleRepository{db: db}
}

// FindByRuleID finds a rules record whose RuleID equals the supplier id
func (r *GormSupplierPricingRuleRepository) FindByRuleID(ctx context.Context, ruleID string) (*pricing.SupplierPricingRule, error) {
	return r.findOne(ctx, "rule_id = ?", ruleID)
}

// FindBySupplierID finds a rules record whose SupplierID field equals the supplier id
func (r *GormSupplierPricingRuleRepository) FindBySupplierID(ctx context.Context, supplierID string) (*pricing.SupplierPricingRule, error) {
	return r.findOne(ctx, "supplier_id = ?", supplierID)
}

// FindByAlias finds a rules record by any of the legacy alias columns
func (r *GormSupplierPricingRuleRepository) FindByAlias(ctx context.Context, alias string) (*pricing.SupplierPricingRule, error) {
	return r.findOne(ctx, "supplier_key = ? OR vendor = ?", alias, alias)
}

func (r *GormSupplierPricingRuleRepository) findOne(ctx context.Context, query string, args ...any) (*pricing.SupplierPricingRule, error) {
	var rule pricing.SupplierPricingRule
	if err := r.db.WithContext(ctx).Where(query, args...).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByKey finds a supplier by its normalized key
func (r *GormSupplierRepository) FindByKey(ctx context.Context, key string) (*pricing.Supplier, error) {
	var supplier pricing.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// GormClientPricingRulesRepository implements ClientPricingRulesRepository using GORM
type GormClientPricingRulesRepository struct {
	db *gorm.DB
}

// NewGormClientPricingRulesRepository creates a new GormClientPricingRulesRepository
func NewGormClientPricingRulesRepository(db *gorm.DB) *GormClientPricingRulesRepository {
	return &GormClientPricingRulesRepository{db: db}
}

// FindByClient returns the rule set for a client, or shared.ErrNotFound
func (r *GormClientPricingRulesRepository) FindByClient(ctx context.Context, clientID uuid.UUID) (*pricing.ClientPricingRules, error) {
	var rules pricing.ClientPricingRules
	if err := r.db.WithContext(ctx).First(&rules, "client_id = ?", clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rules, nil
}

// Ensure implementations satisfy their interfaces
var (
	_ pricing.SupplierPricingRuleRepository = (*GormSupplierPricingRuleRepository)(nil)
	_ pricing.SupplierRepository            = (*GormSupplierRepository)(nil)
	_ pricing.ClientPricingRulesRepository  = (*GormClientPricingRulesRepository)(nil)
)
