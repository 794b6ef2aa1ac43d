package persistence

import (
	"context"
	"errors"

	"github.com/b2bportal/backend/internal/domain/ordering"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// statusCounterPrefix namespaces the per-status aggregate rows in the
// shared counters table.
const statusCounterPrefix = "order_status:"

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByClientRequestID returns the client's earliest order carrying the
// given idempotency key, or shared.ErrNotFound.
func (r *GormOrderRepository) FindByClientRequestID(ctx context.Context, clientID uuid.UUID, requestID string) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND client_request_id = ?", clientID, requestID).
		Order("created_at ASC").
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// CreateNumbered assigns the next order number and inserts the order in one
// transaction. The counter row is locked for the duration, so numbers are
// unique and strictly increasing in commit order; a rolled-back insert
// rolls the increment back with it and leaves no gap.
func (r *GormOrderRepository) CreateNumbered(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter ordering.Counter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&counter, "name = ?", ordering.OrderNumberSequence).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			counter = ordering.Counter{Name: ordering.OrderNumberSequence}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		counter.Value++
		if err := tx.Model(&ordering.Counter{}).
			Where("name = ?", counter.Name).
			Update("value", counter.Value).Error; err != nil {
			return err
		}

		order.Number = counter.Value
		return tx.Create(order).Error
	})
}

// IncrementStatusCount bumps the per-status aggregate counter.
func (r *GormOrderRepository) IncrementStatusCount(ctx context.Context, status ordering.OrderStatus, delta int) error {
	row := ordering.Counter{
		Name:  statusCounterPrefix + string(status),
		Value: int64(delta),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("counters.value + ?", delta)}),
	}).Create(&row).Error
}

// Ensure GormOrderRepository implements OrderRepository
var _ ordering.OrderRepository = (*GormOrderRepository)(nil)
