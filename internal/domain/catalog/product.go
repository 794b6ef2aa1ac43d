package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/b2bportal/backend/internal/domain/shared"
)

// StringList is a string slice stored as a JSONB column.
type StringList []string

// Value implements driver.Valuer for database storage
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	return json.Unmarshal(data, l)
}

// Product is the canonical catalog record merging all suppliers' offers for
// one brand/article. It exists only while at least one offer does: the
// reconciliation engine creates it on the first successful upsert and
// deletes it the moment the offer set becomes empty.
type Product struct {
	shared.BaseEntity
	Key         string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	Brand       string     `gorm:"type:varchar(100);not null"`
	Article     string     `gorm:"type:varchar(100);not null"`
	Name        string     `gorm:"type:varchar(300)"`
	Categories  StringList `gorm:"type:jsonb"`
	Pack        string     `gorm:"type:varchar(50)"`
	Tolerances  string     `gorm:"type:varchar(100)"`
	Synonyms    StringList `gorm:"type:jsonb"`
	NeedsReview bool       `gorm:"not null;default:false"`
	Offers      OfferSet   `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a canonical product from normalized row data. The key
// must already be the canonical join key for (brand, article).
func NewProduct(key, brand, article, name string) (*Product, error) {
	if key == "" {
		return nil, shared.ErrInvalidArgument.WithMessage("Product key cannot be empty")
	}
	if brand == "" {
		return nil, shared.ErrInvalidArgument.WithMessage("Product brand cannot be empty")
	}
	if article == "" {
		return nil, shared.ErrInvalidArgument.WithMessage("Product article cannot be empty")
	}
	return &Product{
		BaseEntity:  shared.NewBaseEntity(),
		Key:         key,
		Brand:       brand,
		Article:     article,
		Name:        name,
		NeedsReview: true,
		Offers:      NewOfferSet(),
	}, nil
}

// PutOffer inserts or replaces the supplier's offer.
func (p *Product) PutOffer(o Offer) {
	p.Offers.Put(o)
	p.UpdatedAt = time.Now()
}

// RemoveOffer removes the supplier's offer. It returns whether an offer was
// removed and whether the product is now empty and must be deleted.
func (p *Product) RemoveOffer(supplier string) (removed, empty bool) {
	removed = p.Offers.Remove(supplier)
	if removed {
		p.UpdatedAt = time.Now()
	}
	return removed, p.Offers.IsEmpty()
}

// ApplyUpsert overwrites the product's descriptive fields with one
// reconciled feed row's outcome and splices in the supplier's offer. The
// upsert's spelling is already canonical, so it takes precedence over
// whatever the product carried; a feed name never clobbers a stored one
// with emptiness.
func (p *Product) ApplyUpsert(u OfferUpsert) {
	p.Brand = u.Brand
	p.Article = u.Article
	if u.Name != "" {
		p.Name = u.Name
	}
	p.Categories = u.Categories
	p.Pack = u.Pack
	p.Tolerances = u.Tolerances
	p.Synonyms = u.Synonyms
	p.NeedsReview = u.NeedsReview
	p.PutOffer(u.Offer)
}
