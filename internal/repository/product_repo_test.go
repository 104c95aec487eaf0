package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-product-bridge/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Product{}))
	return db
}

func seed(t *testing.T, repo ProductRepository, name, sku, country string) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, SKU: sku, CountryCode: country, LoadDate: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestProductRepo_ActiveReadsSkipSoftDeleted(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(setupTestDB(t))

	iphone := seed(t, repo, "iPhone 15", "CTUS1", "US")
	galaxy := seed(t, repo, "Samsung Galaxy S24", "CTKR2", "KR")

	require.NoError(t, repo.SoftDelete(ctx, galaxy.ID, time.Now()))

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, iphone.ID, active[0].ID)

	_, err = repo.FindActiveByID(ctx, galaxy.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	kept, err := repo.FindByID(ctx, galaxy.ID)
	require.NoError(t, err)
	assert.True(t, kept.IsDeleted())
	assert.Equal(t, "CTKR2", kept.SKU)
}

func TestProductRepo_MaxIDCountsDeletedRows(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(setupTestDB(t))

	maxID, err := repo.MaxID(ctx)
	require.NoError(t, err)
	assert.Zero(t, maxID)

	seed(t, repo, "A", "CTUS1", "US")
	last := seed(t, repo, "B", "CTJP2", "JP")
	require.NoError(t, repo.SoftDelete(ctx, last.ID, time.Now()))

	maxID, err = repo.MaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, last.ID, maxID)
}

func TestProductRepo_UpdateFieldsOnlyTouchesActiveRows(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(setupTestDB(t))

	p := seed(t, repo, "Pixel 8", "CTUS4", "US")
	require.NoError(t, repo.UpdateFields(ctx, p.ID, map[string]interface{}{"name": "Pixel 8 Pro"}))

	got, err := repo.FindActiveByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pixel 8 Pro", got.Name)
	assert.Equal(t, "CTUS4", got.SKU)

	require.NoError(t, repo.SoftDelete(ctx, p.ID, time.Now()))
	err = repo.UpdateFields(ctx, p.ID, map[string]interface{}{"name": "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.SoftDelete(ctx, p.ID, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductRepo_SKUIsUniqueAcrossDeletedRows(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(setupTestDB(t))

	p := seed(t, repo, "Xperia", "CTJP5", "JP")
	require.NoError(t, repo.SoftDelete(ctx, p.ID, time.Now()))

	err := repo.Create(ctx, &model.Product{Name: "Dup", SKU: "CTJP5", CountryCode: "JP", LoadDate: time.Now()})
	assert.Error(t, err)

	found, err := repo.FindBySKU(ctx, "CTJP5")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
}

func TestProductRepo_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(setupTestDB(t))
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx ProductRepository) error {
		seed(t, tx, "Temp", "CTMX1", "MX")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
