package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/b2bportal/backend/internal/domain/catalog"
	"github.com/b2bportal/backend/internal/domain/pricing"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MasterDataProvider is the slice of the master-data cache the engine needs.
type MasterDataProvider interface {
	// GetMasterData returns curated metadata for a brand/article, or nil
	GetMasterData(ctx context.Context, brand, article string) (*catalog.MasterDataEntry, error)

	// BrandSynonyms returns the normalized-brand-key synonym table
	BrandSynonyms(ctx context.Context) (catalog.BrandSynonymTable, error)
}

// Config bounds one reconciliation run.
type Config struct {
	// RowCap rejects oversized feeds before any work happens, protecting
	// downstream batch operations from unbounded cost.
	RowCap int

	// ChunkSize is the id-list query ceiling of the backing store.
	ChunkSize int

	// WorkerLimit caps concurrent per-product transactions.
	WorkerLimit int
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{
		RowCap:      3000,
		ChunkSize:   30,
		WorkerLimit: 15,
	}
}

// Service is the catalog reconciliation engine. It merges one supplier's
// feed into the canonical catalog: per-product transactional upserts and
// removals, reverse-index maintenance, and a cleanup diff for products the
// supplier dropped entirely. A run is idempotent per product and safe to
// re-run after a crash; it is NOT atomic across products. Concurrent runs
// for the same supplier race on the cleanup pass and must be prevented by
// the caller (single-flight per supplier).
type Service struct {
	store        catalog.ReconciliationStore
	masterData   MasterDataProvider
	ruleRepo     pricing.SupplierPricingRuleRepository
	supplierRepo pricing.SupplierRepository
	logger       *zap.Logger
	cfg          Config
}

// NewService creates a reconciliation engine.
func NewService(
	store catalog.ReconciliationStore,
	masterData MasterDataProvider,
	ruleRepo pricing.SupplierPricingRuleRepository,
	supplierRepo pricing.SupplierRepository,
	logger *zap.Logger,
	cfg Config,
) *Service {
	if cfg.RowCap <= 0 {
		cfg = DefaultConfig()
	}
	return &Service{
		store:        store,
		masterData:   masterData,
		ruleRepo:     ruleRepo,
		supplierRepo: supplierRepo,
		logger:       logger.Named("reconcile"),
		cfg:          cfg,
	}
}

// opKind distinguishes planned per-product operations.
type opKind int

const (
	opUpsert opKind = iota
	opRemove
)

// plannedOp is one per-product unit of work. A later feed row for the same
// canonical key replaces an earlier plan, so a run never issues two
// conflicting writes for one product.
type plannedOp struct {
	kind   opKind
	key    string
	upsert catalog.OfferUpsert
}

// ReconcileSupplierFeed merges the supplier's feed into the catalog and
// returns per-run counts. A single row's failure is counted and logged,
// never fatal; only malformed input (empty supplier, feed over the row
// cap) fails the whole call.
func (s *Service) ReconcileSupplierFeed(ctx context.Context, supplierID string, rows []FeedRow) (*Result, error) {
	supplier := catalog.NormalizeBrandKey(supplierID)
	if supplier == "" {
		return nil, shared.ErrInvalidArgument.WithMessage("supplier id cannot be empty")
	}
	if len(rows) > s.cfg.RowCap {
		return nil, shared.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("feed has %d rows, cap is %d", len(rows), s.cfg.RowCap))
	}

	log := s.logger.With(zap.String("supplier", supplier))
	started := time.Now()

	synonyms, err := s.masterData.BrandSynonyms(ctx)
	if err != nil {
		return nil, err
	}
	rules := NewRulesCache(s.ruleRepo, s.supplierRepo)

	result := &Result{Total: len(rows)}
	plan := make(map[string]*plannedOp, len(rows))
	order := make([]string, 0, len(rows))
	// Every key the feed names, including keys of rows that are later
	// skipped. The cleanup pass diffs against this set, never against the
	// plan: a row that failed pricing or enrichment still proves the
	// supplier lists the product, and must not get it deleted.
	mentioned := make(map[string]struct{}, len(rows))

	for i, row := range rows {
		op, ok := s.planRow(ctx, supplier, row, synonyms, rules, mentioned, result, log.With(zap.Int("row", i)))
		if !ok {
			continue
		}
		if _, seen := plan[op.key]; !seen {
			order = append(order, op.key)
		}
		plan[op.key] = op
	}

	// Preload the supplier's current footprint: reverse index in one query,
	// then the referenced products in id chunks.
	indexEntries, err := s.store.IndexEntriesBySupplier(ctx, supplier)
	if err != nil {
		return nil, err
	}
	existing, err := s.loadExisting(ctx, indexEntries)
	if err != nil {
		return nil, err
	}

	// Cleanup diff: anything the supplier had indexed but did not mention
	// in this feed is gone from its catalog, not just zero-stocked.
	for _, entry := range indexEntries {
		if _, listed := mentioned[entry.ProductKey]; !listed {
			plan[entry.ProductKey] = &plannedOp{kind: opRemove, key: entry.ProductKey}
			order = append(order, entry.ProductKey)
		}
	}

	s.execute(ctx, supplier, plan, order, existing, result, log)

	log.Info("reconciliation run finished",
		zap.Int("total", result.Total),
		zap.Int("ok", result.OK),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("skipped", result.Skipped),
		zap.Int("removed", result.Removed),
		zap.Int("failures", len(result.Failures)),
		zap.Duration("took", time.Since(started)),
	)
	return result, nil
}

// planRow turns one feed row into a planned op. Rows that cannot be
// processed are counted as skipped; false is returned for them.
func (s *Service) planRow(
	ctx context.Context,
	supplier string,
	row FeedRow,
	synonyms catalog.BrandSynonymTable,
	rules *RulesCache,
	mentioned map[string]struct{},
	result *Result,
	log *zap.Logger,
) (*plannedOp, bool) {
	brand := catalog.NormalizeBrand(row.Brand, synonyms)
	article := catalog.NormalizeArticle(row.Article)
	if brand == "" || article == "" {
		result.Skipped++
		return nil, false
	}

	key := catalog.ProductKey(brand, article)
	mentioned[key] = struct{}{}

	md, err := s.masterData.GetMasterData(ctx, brand, article)
	if err != nil {
		result.Skipped++
		log.Warn("master data lookup failed", zap.Error(err))
		return nil, false
	}

	// Canonical spelling from master data wins over the row's own.
	if md != nil {
		key = catalog.ProductKey(md.Brand, md.Article)
		mentioned[key] = struct{}{}
	}

	// A supplier reporting zero stock is discontinuation, not an update.
	if row.Stock <= 0 {
		return &plannedOp{kind: opRemove, key: key}, true
	}

	prices, err := s.publicPrices(ctx, supplier, row, rules)
	if err != nil {
		result.Skipped++
		log.Warn("cannot price row", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	upsert := catalog.OfferUpsert{
		Key:         key,
		Brand:       brand,
		Article:     article,
		Name:        row.Name,
		NeedsReview: md == nil,
		Purchase:    row.Cost,
		Offer: catalog.Offer{
			Supplier:     supplier,
			Stock:        row.Stock,
			PublicPrices: prices,
			UpdatedAt:    time.Now(),
		},
	}
	if md != nil {
		upsert.Brand = md.Brand
		upsert.Article = md.Article
		if md.Name != "" {
			upsert.Name = md.Name
		}
		upsert.Categories = md.Categories
		upsert.Pack = md.Pack
		upsert.Tolerances = md.Tolerances
		upsert.Synonyms = md.Synonyms
	}
	return &plannedOp{kind: opUpsert, key: key, upsert: upsert}, true
}

// publicPrices returns the row's full price table: taken directly when the
// feed supplied all five tiers, otherwise derived from the single cost
// value through the supplier's markup percentages.
func (s *Service) publicPrices(ctx context.Context, supplier string, row FeedRow, rules *RulesCache) (pricing.PriceTable, error) {
	if row.PublicPrices != nil && row.PublicPrices.Complete() {
		return row.PublicPrices.Clone(), nil
	}
	if row.Cost == nil {
		return nil, shared.ErrInvalidArgument.WithMessage("row carries neither a complete price table nor a cost value")
	}
	pct, err := rules.PercentagesFor(ctx, supplier)
	if err != nil {
		return nil, err
	}
	return pricing.DerivePublicPrices(*row.Cost, pct), nil
}

// loadExisting fetches the products referenced by the supplier's index in
// fixed-size id chunks and maps them by canonical key.
func (s *Service) loadExisting(ctx context.Context, entries []catalog.SupplierProductIndexEntry) (map[string]catalog.Product, error) {
	existing := make(map[string]catalog.Product, len(entries))
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}

	for start := 0; start < len(ids); start += s.cfg.ChunkSize {
		end := min(start+s.cfg.ChunkSize, len(ids))
		products, err := s.store.ProductsByIDs(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			existing[p.Key] = p
		}
	}
	return existing, nil
}

// execute runs the planned ops with bounded concurrency. Each op is its own
// transaction; a failure is recorded and the batch continues.
func (s *Service) execute(
	ctx context.Context,
	supplier string,
	plan map[string]*plannedOp,
	order []string,
	existing map[string]catalog.Product,
	result *Result,
	log *zap.Logger,
) {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.cfg.WorkerLimit)
	)

	for _, key := range order {
		op := plan[key]

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			switch op.kind {
			case opUpsert:
				s.runUpsert(ctx, op, existing, result, &mu, log)
			case opRemove:
				s.runRemove(ctx, supplier, op.key, result, &mu, log)
			}
		}()
	}
	wg.Wait()
}

// runUpsert applies one offer upsert, skipping the write when the stored
// offer is already identical so re-running an unchanged feed is a no-op.
func (s *Service) runUpsert(
	ctx context.Context,
	op *plannedOp,
	existing map[string]catalog.Product,
	result *Result,
	mu *sync.Mutex,
	log *zap.Logger,
) {
	if current, ok := existing[op.key]; ok {
		if stored, has := current.Offers.Get(op.upsert.Offer.Supplier); has && offersEqual(stored, op.upsert.Offer) {
			mu.Lock()
			result.OK++
			result.Unchanged++
			mu.Unlock()
			return
		}
	}

	if err := s.store.ApplyOffer(ctx, op.upsert); err != nil {
		log.Warn("offer upsert failed", zap.String("key", op.key), zap.Error(err))
		mu.Lock()
		result.Failures = append(result.Failures, ItemFailure{ProductKey: op.key, Op: "upsert", Error: err.Error()})
		mu.Unlock()
		return
	}

	mu.Lock()
	result.OK++
	mu.Unlock()
}

// runRemove splices the supplier's offer out of one product. A missing
// product or offer is nothing to do, not a failure.
func (s *Service) runRemove(
	ctx context.Context,
	supplier, key string,
	result *Result,
	mu *sync.Mutex,
	log *zap.Logger,
) {
	err := s.store.RemoveOffer(ctx, supplier, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			mu.Lock()
			result.Skipped++
			mu.Unlock()
			return
		}
		log.Warn("offer removal failed", zap.String("key", key), zap.Error(err))
		mu.Lock()
		result.Failures = append(result.Failures, ItemFailure{ProductKey: key, Op: "remove", Error: err.Error()})
		mu.Unlock()
		return
	}

	mu.Lock()
	result.Removed++
	mu.Unlock()
}

// offersEqual compares two offers field by field, including the full price
// table. UpdatedAt is ignored; it changes every run by construction.
func offersEqual(a, b catalog.Offer) bool {
	if a.Supplier != b.Supplier || a.Stock != b.Stock || a.ExternalID != b.ExternalID || a.MinStock != b.MinStock {
		return false
	}
	if len(a.PublicPrices) != len(b.PublicPrices) {
		return false
	}
	for tier, price := range a.PublicPrices {
		other, ok := b.PublicPrices[tier]
		if !ok || !price.Equal(other) {
			return false
		}
	}
	return true
}
