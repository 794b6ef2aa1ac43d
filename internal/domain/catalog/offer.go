package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/b2bportal/backend/internal/domain/pricing"
)

// Offer is one supplier's stock/price contribution to a canonical product.
// It is replaced wholesale on every reconciliation pass for that supplier.
type Offer struct {
	Supplier     string             `json:"supplier"`
	Stock        int                `json:"stock"`
	PublicPrices pricing.PriceTable `json:"publicPrices"`
	ExternalID   string             `json:"externalId,omitempty"`
	MinStock     int                `json:"minStock,omitempty"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// OfferSet keeps a product's offers keyed by supplier, making the
// one-offer-per-supplier invariant structural instead of a linear-scan
// check. It serializes to a supplier-ordered list at the storage boundary.
type OfferSet struct {
	offers map[string]Offer
}

// NewOfferSet creates an offer set from zero or more offers. A later offer
// for the same supplier replaces the earlier one.
func NewOfferSet(offers ...Offer) OfferSet {
	s := OfferSet{offers: make(map[string]Offer, len(offers))}
	for _, o := range offers {
		s.offers[o.Supplier] = o
	}
	return s
}

// Put inserts or replaces the offer for its supplier.
func (s *OfferSet) Put(o Offer) {
	if s.offers == nil {
		s.offers = make(map[string]Offer, 1)
	}
	s.offers[o.Supplier] = o
}

// Remove deletes the offer for a supplier; returns true if one was present.
func (s *OfferSet) Remove(supplier string) bool {
	if s.offers == nil {
		return false
	}
	if _, ok := s.offers[supplier]; !ok {
		return false
	}
	delete(s.offers, supplier)
	return true
}

// Get returns the offer for a supplier, if present.
func (s OfferSet) Get(supplier string) (Offer, bool) {
	o, ok := s.offers[supplier]
	return o, ok
}

// Len returns the number of offers.
func (s OfferSet) Len() int {
	return len(s.offers)
}

// IsEmpty reports whether the set holds no offers. A product whose offer
// set becomes empty must be deleted.
func (s OfferSet) IsEmpty() bool {
	return len(s.offers) == 0
}

// List returns the offers ordered by supplier name for deterministic
// serialization and display.
func (s OfferSet) List() []Offer {
	out := make([]Offer, 0, len(s.offers))
	for _, o := range s.offers {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Supplier < out[j].Supplier })
	return out
}

// Suppliers returns the supplier names present, sorted.
func (s OfferSet) Suppliers() []string {
	out := make([]string, 0, len(s.offers))
	for name := range s.offers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON serializes the set as an ordered list.
func (s OfferSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// UnmarshalJSON rebuilds the keyed set from a stored list. Duplicate
// suppliers in legacy data collapse to the last entry.
func (s *OfferSet) UnmarshalJSON(data []byte) error {
	var list []Offer
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = NewOfferSet(list...)
	return nil
}

// Value implements driver.Valuer for database storage
func (s OfferSet) Value() (driver.Value, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (s *OfferSet) Scan(value any) error {
	if value == nil {
		*s = NewOfferSet()
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into OfferSet", value)
	}
	return s.UnmarshalJSON(data)
}
