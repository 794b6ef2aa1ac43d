package ordering

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/b2bportal/backend/internal/domain/pricing"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "NEW"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a recognized value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNew, OrderStatusProcessing, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderLine is one resolved cart line. The resolved price, the tier it came
// from, the tier originally requested and the adjustment flag are persisted
// for audit, so a charged amount can always be explained later.
type OrderLine struct {
	ProductID         uuid.UUID         `json:"productId"`
	ProductKey        string            `json:"productKey"`
	Brand             string            `json:"brand"`
	Article           string            `json:"article"`
	Name              string            `json:"name"`
	Supplier          string            `json:"supplier"`
	Quantity          int               `json:"quantity"`
	Price             decimal.Decimal   `json:"price"`
	PriceGroup        pricing.PriceTier `json:"priceGroup"`
	DefaultPriceGroup pricing.PriceTier `json:"defaultPriceGroup"`
	HasAdjustment     bool              `json:"hasAdjustment"`
	ConfirmedQuantity int               `json:"confirmedQuantity"`
}

// LineTotal returns quantity * price rounded to 2 decimals.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// LineList is the order's line items, stored as a JSONB column so the
// whole order aggregate lives in a single row and commits atomically.
type LineList []OrderLine

// Value implements driver.Valuer for database storage
func (l LineList) Value() (driver.Value, error) {
	if l == nil {
		l = LineList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (l *LineList) Scan(value any) error {
	if value == nil {
		*l = LineList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into LineList", value)
	}
	return json.Unmarshal(data, l)
}

// Order is a placed client order. Number and Total are immutable after
// creation; only status and per-line confirmed quantities change later,
// and that happens in fulfillment flows outside this engine.
type Order struct {
	shared.BaseEntity
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Number          int64           `gorm:"not null;uniqueIndex"`
	Lines           LineList        `gorm:"type:jsonb"`
	Total           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'NEW'"`
	ClientRequestID *string         `gorm:"type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates an order ready for numbering and persistence. The
// number is assigned by the repository inside the counter transaction.
func NewOrder(clientID uuid.UUID, lines []OrderLine, total decimal.Decimal, clientRequestID *string) (*Order, error) {
	if clientID == uuid.Nil {
		return nil, shared.ErrInvalidArgument.WithMessage("Client ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.ErrInvalidArgument.WithMessage("Order must contain at least one line")
	}
	return &Order{
		BaseEntity:      shared.NewBaseEntity(),
		ClientID:        clientID,
		Lines:           lines,
		Total:           total,
		Status:          OrderStatusNew,
		ClientRequestID: clientRequestID,
	}, nil
}
