package catalog

import (
	"strings"
	"unicode"
)

// NormalizeArticle canonicalizes a supplier-provided article string:
// uppercases, strips whitespace and every character outside [A-Za-z0-9._-].
// Two feed rows differing only in case or stray punctuation must collapse
// to the same article.
func NormalizeArticle(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(raw) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeBrandKey canonicalizes a brand string for use as a lookup key:
// folds all Unicode space variants to a single ASCII space, trims, and
// lowercases. The result is never stored as a display value.
func NormalizeBrandKey(raw string) string {
	return strings.ToLower(collapseSpaces(raw))
}

// CleanBrand trims and collapses whitespace without changing case. It is
// the display form of a brand before synonym substitution.
func CleanBrand(raw string) string {
	return collapseSpaces(raw)
}

// NormalizeBrand returns the display brand: the cleaned input, or the
// canonical brand when the brand-key appears in the synonym table.
func NormalizeBrand(raw string, synonyms BrandSynonymTable) string {
	cleaned := CleanBrand(raw)
	if canonical, ok := synonyms[NormalizeBrandKey(cleaned)]; ok {
		return canonical
	}
	return cleaned
}

// ProductKey builds the canonical product join key shared by all suppliers:
// normalized brand key and normalized article joined by a dash.
func ProductKey(brand, article string) string {
	return NormalizeBrandKey(brand) + "-" + NormalizeArticle(article)
}

// collapseSpaces folds any run of Unicode whitespace (including NBSP and
// other space variants) into a single ASCII space and trims the ends.
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
