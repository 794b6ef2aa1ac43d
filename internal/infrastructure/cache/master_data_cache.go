package cache

import (
	"context"
	"sync"
	"time"

	"github.com/b2bportal/backend/internal/domain/catalog"
	"github.com/b2bportal/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultMasterDataTTL is the freshness window after which the cache
// rebuilds itself from the source-of-truth store.
const DefaultMasterDataTTL = 10 * time.Hour

// masterKey addresses one cached metadata entry.
type masterKey struct {
	brandKey string
	article  string
}

// cachedEntry tags an entry with how it was reached. The synonym marker is
// observability-only and is stripped before an entry is returned.
type cachedEntry struct {
	entry      catalog.MasterDataEntry
	viaSynonym bool
}

// MasterDataCache is the process-wide lookup of curated product metadata
// and the brand-synonym table. It rebuilds lazily whenever it is empty or
// older than its freshness window. Correctness never depends on the cache
// being warm, only performance does, so every accessor may trigger a full
// rebuild.
type MasterDataCache struct {
	masterRepo  catalog.MasterDataRepository
	synonymRepo catalog.BrandSynonymRepository
	clock       shared.Clock
	ttl         time.Duration
	logger      *zap.Logger

	mu       sync.RWMutex
	entries  map[masterKey]cachedEntry
	synonyms catalog.BrandSynonymTable
	builtAt  time.Time
}

// NewMasterDataCache creates a cache over the given repositories. The clock
// is injected so tests can age the cache without sleeping.
func NewMasterDataCache(
	masterRepo catalog.MasterDataRepository,
	synonymRepo catalog.BrandSynonymRepository,
	clock shared.Clock,
	ttl time.Duration,
	logger *zap.Logger,
) *MasterDataCache {
	if ttl <= 0 {
		ttl = DefaultMasterDataTTL
	}
	return &MasterDataCache{
		masterRepo:  masterRepo,
		synonymRepo: synonymRepo,
		clock:       clock,
		ttl:         ttl,
		logger:      logger.Named("master_data_cache"),
	}
}

// GetMasterData returns the curated metadata for a brand/article pair, or
// nil when none is known. The article may be given in any spelling a
// declared synonym covers.
func (c *MasterDataCache) GetMasterData(ctx context.Context, brand, article string) (*catalog.MasterDataEntry, error) {
	if err := c.ensureFresh(ctx); err != nil {
		return nil, err
	}

	key := masterKey{
		brandKey: catalog.NormalizeBrandKey(brand),
		article:  catalog.NormalizeArticle(article),
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	entry := cached.entry // copy; the synonym tag stays internal
	return &entry, nil
}

// BrandSynonyms returns the normalized-old-brand -> canonical-brand table.
func (c *MasterDataCache) BrandSynonyms(ctx context.Context) (catalog.BrandSynonymTable, error) {
	if err := c.ensureFresh(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	table := make(catalog.BrandSynonymTable, len(c.synonyms))
	for k, v := range c.synonyms {
		table[k] = v
	}
	return table, nil
}

// FindCanonicalArticleByAnyFormat resolves any article string, in any
// brand, to its canonical article via a full-cache scan. When the article
// is unknown everywhere it resolves to its own normalized form. The second
// return reports whether resolution went through a declared synonym.
func (c *MasterDataCache) FindCanonicalArticleByAnyFormat(ctx context.Context, article string) (string, bool, error) {
	if err := c.ensureFresh(ctx); err != nil {
		return "", false, err
	}

	normalized := catalog.NormalizeArticle(article)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for key, cached := range c.entries {
		if key.article == normalized {
			return cached.entry.Article, cached.viaSynonym, nil
		}
	}
	return normalized, false, nil
}

// Invalidate clears the cache so the next lookup rebuilds. Privileged
// operators only; the HTTP layer enforces that.
func (c *MasterDataCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.synonyms = nil
	c.builtAt = time.Time{}
	c.logger.Info("master data cache invalidated")
}

// ensureFresh rebuilds the cache when it is empty or past its freshness
// window. Concurrent callers during a rebuild serialize on the write lock;
// the double-check keeps them from rebuilding twice.
func (c *MasterDataCache) ensureFresh(ctx context.Context) error {
	c.mu.RLock()
	fresh := c.entries != nil && c.clock.Now().Sub(c.builtAt) < c.ttl
	c.mu.RUnlock()
	if fresh {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries != nil && c.clock.Now().Sub(c.builtAt) < c.ttl {
		return nil
	}
	return c.rebuildLocked(ctx)
}

// rebuildLocked loads all master-data and brand-synonym records in one pass
// and indexes every entry under its own article plus every declared synonym
// article. Caller must hold the write lock.
func (c *MasterDataCache) rebuildLocked(ctx context.Context) error {
	started := c.clock.Now()

	masters, err := c.masterRepo.FindAll(ctx)
	if err != nil {
		c.logger.Error("master data cache rebuild failed", zap.Error(err))
		return shared.ErrInternal.WithMessage("failed to load master data")
	}
	synonymRecords, err := c.synonymRepo.FindAll(ctx)
	if err != nil {
		c.logger.Error("brand synonym load failed during cache rebuild", zap.Error(err))
		return shared.ErrInternal.WithMessage("failed to load brand synonyms")
	}

	entries := make(map[masterKey]cachedEntry, len(masters)*2)
	for _, m := range masters {
		brandKey := catalog.NormalizeBrandKey(m.Brand)
		entry := m
		entry.Article = catalog.NormalizeArticle(m.Article)

		normalizedSynonyms := make(catalog.StringList, 0, len(m.Synonyms))
		for _, s := range m.Synonyms {
			normalizedSynonyms = append(normalizedSynonyms, catalog.NormalizeArticle(s))
		}
		entry.Synonyms = normalizedSynonyms

		entries[masterKey{brandKey: brandKey, article: entry.Article}] = cachedEntry{entry: entry}
		for _, syn := range normalizedSynonyms {
			if syn == entry.Article {
				continue
			}
			entries[masterKey{brandKey: brandKey, article: syn}] = cachedEntry{entry: entry, viaSynonym: true}
		}
	}

	synonyms := make(catalog.BrandSynonymTable, len(synonymRecords))
	for _, s := range synonymRecords {
		synonyms[catalog.NormalizeBrandKey(s.OldBrandKey)] = s.CanonicalBrand
	}

	c.entries = entries
	c.synonyms = synonyms
	c.builtAt = c.clock.Now()

	c.logger.Info("master data cache rebuilt",
		zap.Int("entries", len(entries)),
		zap.Int("brand_synonyms", len(synonyms)),
		zap.Duration("took", c.clock.Now().Sub(started)),
	)
	return nil
}
