package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/b2bportal/backend/internal/domain/catalog"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubMasterRepo struct {
	entries []catalog.MasterDataEntry
	calls   int
	err     error
}

func (s *stubMasterRepo) FindAll(context.Context) ([]catalog.MasterDataEntry, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

type stubSynonymRepo struct {
	records []catalog.BrandSynonym
	calls   int
}

func (s *stubSynonymRepo) FindAll(context.Context) ([]catalog.BrandSynonym, error) {
	s.calls++
	return s.records, nil
}

// testClock is a settable clock for aging the cache without sleeping.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newCacheFixture(ttl time.Duration) (*MasterDataCache, *stubMasterRepo, *stubSynonymRepo, *testClock) {
	master := &stubMasterRepo{
		entries: []catalog.MasterDataEntry{
			{
				Brand:    "BOSCH",
				Article:  "x1",
				Name:     "Curated Filter",
				Synonyms: catalog.StringList{"x1-a", "x1 b"},
			},
		},
	}
	synonyms := &stubSynonymRepo{
		records: []catalog.BrandSynonym{
			{OldBrandKey: "Victor Reinz", CanonicalBrand: "REINZ"},
		},
	}
	clock := &testClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	c := NewMasterDataCache(master, synonyms, clock, ttl, zap.NewNop())
	return c, master, synonyms, clock
}

func TestMasterDataCache_LookupAndNormalization(t *testing.T) {
	c, _, _, _ := newCacheFixture(10 * time.Hour)
	ctx := context.Background()

	t.Run("finds entry by any brand/article spelling", func(t *testing.T) {
		entry, err := c.GetMasterData(ctx, " bosch ", "X 1")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "Curated Filter", entry.Name)
		assert.Equal(t, "X1", entry.Article, "article comes back normalized")
	})

	t.Run("finds entry by synonym article", func(t *testing.T) {
		entry, err := c.GetMasterData(ctx, "BOSCH", "x1-a")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "X1", entry.Article, "synonym resolves to the canonical article")

		entry, err = c.GetMasterData(ctx, "BOSCH", "X1 B")
		require.NoError(t, err)
		require.NotNil(t, entry)
	})

	t.Run("unknown pair yields nil without error", func(t *testing.T) {
		entry, err := c.GetMasterData(ctx, "Mann", "W914")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})
}

func TestMasterDataCache_BrandSynonyms(t *testing.T) {
	c, _, _, _ := newCacheFixture(10 * time.Hour)

	table, err := c.BrandSynonyms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "REINZ", table["victor reinz"], "old brand key is normalized on load")
}

func TestMasterDataCache_FindCanonicalArticleByAnyFormat(t *testing.T) {
	c, _, _, _ := newCacheFixture(10 * time.Hour)
	ctx := context.Background()

	t.Run("synonym resolves with the synonym flag", func(t *testing.T) {
		article, viaSynonym, err := c.FindCanonicalArticleByAnyFormat(ctx, "x1-a")
		require.NoError(t, err)
		assert.Equal(t, "X1", article)
		assert.True(t, viaSynonym)
	})

	t.Run("canonical article resolves without the flag", func(t *testing.T) {
		article, viaSynonym, err := c.FindCanonicalArticleByAnyFormat(ctx, "x1")
		require.NoError(t, err)
		assert.Equal(t, "X1", article)
		assert.False(t, viaSynonym)
	})

	t.Run("unknown article resolves to its normalized self", func(t *testing.T) {
		article, viaSynonym, err := c.FindCanonicalArticleByAnyFormat(ctx, "w 914/2")
		require.NoError(t, err)
		assert.Equal(t, "W9142", article)
		assert.False(t, viaSynonym)
	})
}

func TestMasterDataCache_TTL(t *testing.T) {
	c, master, _, clock := newCacheFixture(10 * time.Hour)
	ctx := context.Background()

	_, err := c.GetMasterData(ctx, "bosch", "x1")
	require.NoError(t, err)
	assert.Equal(t, 1, master.calls)

	// Within the window every lookup is served from memory.
	clock.Advance(9 * time.Hour)
	_, err = c.GetMasterData(ctx, "bosch", "x1")
	require.NoError(t, err)
	assert.Equal(t, 1, master.calls)

	// Past the window the next lookup rebuilds.
	clock.Advance(2 * time.Hour)
	_, err = c.GetMasterData(ctx, "bosch", "x1")
	require.NoError(t, err)
	assert.Equal(t, 2, master.calls)
}

func TestMasterDataCache_Invalidate(t *testing.T) {
	c, master, synonyms, _ := newCacheFixture(10 * time.Hour)
	ctx := context.Background()

	_, err := c.BrandSynonyms(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, master.calls)

	c.Invalidate()

	_, err = c.BrandSynonyms(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, master.calls, "invalidate forces a rebuild on next access")
	assert.Equal(t, 2, synonyms.calls)
}

func TestMasterDataCache_RebuildFailure(t *testing.T) {
	c, master, _, _ := newCacheFixture(10 * time.Hour)
	master.err = shared.ErrInternal

	_, err := c.GetMasterData(context.Background(), "bosch", "x1")
	assert.ErrorIs(t, err, shared.ErrInternal)

	// A later successful rebuild recovers.
	master.err = nil
	entry, err := c.GetMasterData(context.Background(), "bosch", "x1")
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestMasterDataCache_RebuildFailureLogsCause(t *testing.T) {
	core, observed := observer.New(zap.ErrorLevel)
	master := &stubMasterRepo{err: errors.New("connection refused")}
	clock := &testClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	c := NewMasterDataCache(master, &stubSynonymRepo{}, clock, 10*time.Hour, zap.New(core))

	_, err := c.GetMasterData(context.Background(), "bosch", "x1")
	assert.ErrorIs(t, err, shared.ErrInternal, "the caller sees only the generic error")

	// The underlying cause must survive in the log, not vanish behind the
	// generic error.
	logs := observed.FilterMessage("master data cache rebuild failed").All()
	require.Len(t, logs, 1)
	assert.Equal(t, "connection refused", logs[0].ContextMap()["error"])
}
