package ordering

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the persistence surface for order placement.
type OrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByClientRequestID returns the client's earlier order carrying the
	// same idempotency key, or shared.ErrNotFound. Note this is a plain
	// read: two concurrent placements with the same key can both miss here
	// before either commits. Closing that window needs a uniqueness
	// constraint on (client_id, client_request_id) at the storage layer.
	FindByClientRequestID(ctx context.Context, clientID uuid.UUID, requestID string) (*Order, error)

	// CreateNumbered assigns the next order number from the shared counter
	// and inserts the order, both inside one transaction.
	CreateNumbered(ctx context.Context, order *Order) error

	// IncrementStatusCount bumps the per-status aggregate counter. Failures
	// here are secondary bookkeeping: callers log and swallow them.
	IncrementStatusCount(ctx context.Context, status OrderStatus, delta int) error
}
