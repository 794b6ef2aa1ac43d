package catalog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/b2bportal/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeOffer(supplier string, stock int) Offer {
	return Offer{
		Supplier: supplier,
		Stock:    stock,
		PublicPrices: pricing.PriceTable{
			pricing.TierRetail: decimal.NewFromInt(100),
		},
		UpdatedAt: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestOfferSet_PutReplacesSameSupplier(t *testing.T) {
	var s OfferSet
	s.Put(makeOffer("alpha", 5))
	s.Put(makeOffer("alpha", 9))

	assert.Equal(t, 1, s.Len())
	o, ok := s.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, 9, o.Stock)
}

func TestOfferSet_Remove(t *testing.T) {
	s := NewOfferSet(makeOffer("alpha", 5), makeOffer("beta", 3))

	assert.True(t, s.Remove("alpha"))
	assert.False(t, s.Remove("alpha"), "second removal finds nothing")
	assert.False(t, s.IsEmpty())

	assert.True(t, s.Remove("beta"))
	assert.True(t, s.IsEmpty())
}

func TestOfferSet_RemoveOnZeroValue(t *testing.T) {
	var s OfferSet
	assert.False(t, s.Remove("anyone"))
	assert.True(t, s.IsEmpty())
}

func TestOfferSet_ListOrdersBySupplier(t *testing.T) {
	s := NewOfferSet(makeOffer("zeta", 1), makeOffer("alpha", 2), makeOffer("mid", 3))

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Supplier)
	assert.Equal(t, "mid", list[1].Supplier)
	assert.Equal(t, "zeta", list[2].Supplier)

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, s.Suppliers())
}

func TestOfferSet_JSONRoundTrip(t *testing.T) {
	s := NewOfferSet(makeOffer("beta", 3), makeOffer("alpha", 5))

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var restored OfferSet
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, 2, restored.Len())
	o, ok := restored.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, 5, o.Stock)
}

func TestOfferSet_UnmarshalCollapsesDuplicateSuppliers(t *testing.T) {
	data := []byte(`[{"supplier":"alpha","stock":1},{"supplier":"alpha","stock":7}]`)

	var s OfferSet
	require.NoError(t, json.Unmarshal(data, &s))

	assert.Equal(t, 1, s.Len())
	o, _ := s.Get("alpha")
	assert.Equal(t, 7, o.Stock)
}

func TestOfferSet_ScanNil(t *testing.T) {
	var s OfferSet
	require.NoError(t, s.Scan(nil))
	assert.True(t, s.IsEmpty())
}

func TestOfferSet_ValueScanRoundTrip(t *testing.T) {
	s := NewOfferSet(makeOffer("alpha", 5))

	v, err := s.Value()
	require.NoError(t, err)

	var restored OfferSet
	require.NoError(t, restored.Scan(v))
	assert.Equal(t, 1, restored.Len())
}
