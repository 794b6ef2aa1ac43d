package persistence

import (
	"context"
	"testing"

	"github.com/b2bportal/backend/internal/domain/catalog"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMasterDataTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&catalog.MasterDataEntry{}, &catalog.BrandSynonym{})
	require.NoError(t, err)

	return db
}

func TestGormMasterDataRepository_FindAll(t *testing.T) {
	db := setupMasterDataTestDB(t)
	repo := NewGormMasterDataRepository(db)
	ctx := context.Background()

	t.Run("empty table yields empty slice", func(t *testing.T) {
		entries, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("returns all records with JSON columns intact", func(t *testing.T) {
		require.NoError(t, db.Create(&catalog.MasterDataEntry{
			BaseEntity: shared.NewBaseEntity(),
			Brand:      "BOSCH",
			Article:    "X1",
			Name:       "Oil Filter",
			Categories: catalog.StringList{"filters", "engine"},
			Synonyms:   catalog.StringList{"X1A"},
		}).Error)
		require.NoError(t, db.Create(&catalog.MasterDataEntry{
			BaseEntity: shared.NewBaseEntity(),
			Brand:      "MANN",
			Article:    "W9142",
		}).Error)

		entries, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		byBrand := map[string]catalog.MasterDataEntry{}
		for _, e := range entries {
			byBrand[e.Brand] = e
		}
		assert.Equal(t, catalog.StringList{"filters", "engine"}, byBrand["BOSCH"].Categories)
		assert.Equal(t, catalog.StringList{"X1A"}, byBrand["BOSCH"].Synonyms)
	})
}

func TestGormBrandSynonymRepository_FindAll(t *testing.T) {
	db := setupMasterDataTestDB(t)
	repo := NewGormBrandSynonymRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&catalog.BrandSynonym{
		BaseEntity:     shared.NewBaseEntity(),
		OldBrandKey:    "victor reinz",
		CanonicalBrand: "REINZ",
	}).Error)

	records, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "victor reinz", records[0].OldBrandKey)
	assert.Equal(t, "REINZ", records[0].CanonicalBrand)
}
