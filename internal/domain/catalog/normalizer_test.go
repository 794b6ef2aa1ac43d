package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArticle(t *testing.T) {
	t.Run("uppercases and keeps allowed characters", func(t *testing.T) {
		assert.Equal(t, "ABC-123.X_9", NormalizeArticle("abc-123.x_9"))
	})

	t.Run("strips whitespace and punctuation", func(t *testing.T) {
		assert.Equal(t, "OC90", NormalizeArticle(" oc 90 "))
		assert.Equal(t, "OC90", NormalizeArticle("OC/90"))
		assert.Equal(t, "OC90", NormalizeArticle("oc#90!"))
	})

	t.Run("case and punctuation variants collapse to the same article", func(t *testing.T) {
		variants := []string{"W 914/2", "w914/2", "w 914 / 2", "W914/2"}
		for _, v := range variants {
			assert.Equal(t, "W9142", NormalizeArticle(v), "variant %q", v)
		}
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		assert.Equal(t, "", NormalizeArticle(""))
		assert.Equal(t, "", NormalizeArticle("  !!  "))
	})
}

func TestNormalizeBrandKey(t *testing.T) {
	t.Run("lowercases and trims", func(t *testing.T) {
		assert.Equal(t, "mann filter", NormalizeBrandKey("  MANN Filter  "))
	})

	t.Run("collapses unicode space variants", func(t *testing.T) {
		// NBSP and tab both fold to a single ASCII space.
		assert.Equal(t, "mann filter", NormalizeBrandKey("Mann  Filter"))
		assert.Equal(t, "mann filter", NormalizeBrandKey("Mann\tFilter"))
	})
}

func TestCleanBrand(t *testing.T) {
	assert.Equal(t, "Mann Filter", CleanBrand("  Mann   Filter "))
	assert.Equal(t, "Bosch", CleanBrand(" Bosch "))
}

func TestNormalizeBrand(t *testing.T) {
	synonyms := BrandSynonymTable{"victor reinz": "REINZ"}

	t.Run("substitutes canonical brand via synonym key", func(t *testing.T) {
		assert.Equal(t, "REINZ", NormalizeBrand("Victor  Reinz", synonyms))
		assert.Equal(t, "REINZ", NormalizeBrand("VICTOR REINZ", synonyms))
	})

	t.Run("returns cleaned input when no synonym matches", func(t *testing.T) {
		assert.Equal(t, "Mann Filter", NormalizeBrand(" Mann  Filter ", synonyms))
	})
}

func TestProductKey(t *testing.T) {
	t.Run("joins normalized brand key and article", func(t *testing.T) {
		assert.Equal(t, "mann filter-W9142", ProductKey("Mann Filter", "w 914/2"))
	})

	t.Run("is stable across input variants", func(t *testing.T) {
		assert.Equal(t, ProductKey("BOSCH", "0 986 452 041"), ProductKey("bosch", "0986452041"))
	})
}
