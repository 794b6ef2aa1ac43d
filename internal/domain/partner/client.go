package partner

import (
	"context"

	"github.com/b2bportal/backend/internal/domain/pricing"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Client is a B2B buyer account. Only the fields the pricing and ordering
// engines read are modeled here; account management lives elsewhere.
type Client struct {
	shared.BaseEntity
	Name        string            `gorm:"type:varchar(200);not null"`
	DefaultTier pricing.PriceTier `gorm:"type:varchar(20);not null;default:'retail'"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// ClientRepository provides read access to client accounts.
type ClientRepository interface {
	// FindByID finds a client by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
}
