package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"go-product-bridge/internal/model"
	"go-product-bridge/internal/repository"
	"go-product-bridge/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) ProductChanged(action string, product *model.Product) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, fmt.Sprintf("%s:%s", action, product.SKU))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (ProductService, repository.ProductRepository, *fakeClock, *recordingNotifier) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Product{}))

	repo := repository.NewProductRepo(db)
	clock := &fakeClock{now: time.Date(2025, 12, 5, 9, 0, 0, 0, time.UTC)}
	notifier := &recordingNotifier{}
	svc := NewProductService(repo, WithClock(clock.Now), WithNotifier(notifier))
	return svc, repo, clock, notifier
}

func strPtr(s string) *string { return &s }

func TestCreateProduct_DerivesSKUAndLoadDate(t *testing.T) {
	ctx := context.Background()
	svc, _, clock, notifier := newTestService(t)

	p, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Demo Product", CountryCode: "ca"})
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.Equal(t, "CTCA1", p.SKU)
	assert.Equal(t, "ca", p.CountryCode, "stored country code keeps the client's casing")
	assert.True(t, p.LoadDate.Equal(clock.Now()))
	assert.Nil(t, p.DeletedAt)
	assert.Equal(t, []string{"product_created:CTCA1"}, notifier.events)
}

func TestCreateProduct_KeepsSuppliedLoadDate(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	p, err := svc.CreateProduct(context.Background(), &CreateProductRequest{
		Name: "iPhone 15", CountryCode: "US", LoadDate: strPtr("2024-01-15 10:00:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), p.LoadDate.UTC())
}

func TestCreateProduct_BlankLoadDateDefaultsToNow(t *testing.T) {
	svc, _, clock, _ := newTestService(t)

	p, err := svc.CreateProduct(context.Background(), &CreateProductRequest{
		Name: "Blank", CountryCode: "US", LoadDate: strPtr("  "),
	})
	require.NoError(t, err)
	assert.True(t, p.LoadDate.Equal(clock.Now()))
}

func TestCreateProduct_SKUSuffixExceedsDeletedIDs(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	var last *model.Product
	for i := 0; i < 3; i++ {
		p, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: fmt.Sprintf("p%d", i), CountryCode: "US"})
		require.NoError(t, err)
		last = p
	}
	// Delete the newest row: the next SKU must still move past its id.
	require.NoError(t, svc.DeleteProduct(ctx, last.ID))

	next, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "after delete", CountryCode: "jp"})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("CTJP%d", last.ID+1), next.SKU)
	assert.Greater(t, next.ID, last.ID)
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	svc, repo, _, notifier := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), &CreateProductRequest{
		Name: strings.Repeat("n", 256), CountryCode: "USA", LoadDate: strPtr("yesterday"),
	})
	var fieldErrs validator.Errors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Contains(t, fieldErrs, "name")
	assert.Contains(t, fieldErrs, "country_code")
	assert.Contains(t, fieldErrs, "load_date")

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, notifier.events)
}

func TestCreateProduct_ExplicitSKU(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	p, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "iPhone 15", CountryCode: "US", SKU: "CTUS1"})
	require.NoError(t, err)
	assert.Equal(t, "CTUS1", p.SKU)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))

	_, err = svc.CreateProduct(ctx, &CreateProductRequest{Name: "again", CountryCode: "US", SKU: "CTUS1"})
	var fieldErrs validator.Errors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Equal(t, []string{"The sku has already been taken."}, fieldErrs["sku"])
}

func TestCreateProduct_ConcurrentCreatesGetDistinctSKUs(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	const n = 10
	skus := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: fmt.Sprintf("c%d", i), CountryCode: "BR"})
			if assert.NoError(t, err) {
				skus <- p.SKU
			}
		}(i)
	}
	wg.Wait()
	close(skus)

	seen := map[string]bool{}
	for sku := range skus {
		assert.False(t, seen[sku], "duplicate sku %s", sku)
		seen[sku] = true
	}
	assert.Len(t, seen, n)
}

func TestGetProduct_NotFoundForDeletedAndMissing(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	p, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Mi 13", CountryCode: "CN"})
	require.NoError(t, err)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.SKU, got.SKU)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))

	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.GetProduct(ctx, 999)
	assert.ErrorIs(t, err, ErrProductNotFound)

	list, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// The row is still there for administrative reads.
	kept, err := svc.GetAnyProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeleted, kept.Status())
	all, err := svc.ListAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateProduct_OnlyNameChanges(t *testing.T) {
	ctx := context.Background()
	svc, _, clock, notifier := newTestService(t)

	p, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Pixel 8", CountryCode: "US", LoadDate: strPtr("2024-01-18")})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	updated, err := svc.UpdateProduct(ctx, p.ID, &UpdateProductRequest{Name: strPtr("Pixel 8 Pro")})
	require.NoError(t, err)

	assert.Equal(t, "Pixel 8 Pro", updated.Name)
	assert.Equal(t, p.CountryCode, updated.CountryCode)
	assert.Equal(t, p.SKU, updated.SKU)
	assert.True(t, p.LoadDate.Equal(updated.LoadDate))
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))
	assert.Equal(t, []string{"product_created:CTUS1", "product_updated:CTUS1"}, notifier.events)
}

func TestUpdateProduct_CountryChangeKeepsSKU(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	p, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Galaxy", CountryCode: "KR"})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, p.ID, &UpdateProductRequest{CountryCode: strPtr("JP"), LoadDate: strPtr("2024-02-01")})
	require.NoError(t, err)
	assert.Equal(t, "JP", updated.CountryCode)
	assert.Equal(t, "CTKR1", updated.SKU)
	assert.Equal(t, "2024-02", updated.LoadDate.UTC().Format("2006-01"))
}

func TestUpdateProduct_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	_, err := svc.UpdateProduct(ctx, 42, &UpdateProductRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrProductNotFound)

	p, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Galaxy", CountryCode: "KR"})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, p.ID, &UpdateProductRequest{Name: strPtr(""), CountryCode: strPtr("K")})
	var fieldErrs validator.Errors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Contains(t, fieldErrs, "name")
	assert.Contains(t, fieldErrs, "country_code")

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Galaxy", got.Name)
}

func TestDeleteProduct_Twice(t *testing.T) {
	ctx := context.Background()
	svc, _, _, notifier := newTestService(t)

	p, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Xperia", CountryCode: "JP"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), ErrProductNotFound)
	assert.Equal(t, []string{"product_created:CTJP1", "product_deleted:CTJP1"}, notifier.events)
}

func TestDeriveSKU(t *testing.T) {
	assert.Equal(t, "CTUS7", DeriveSKU("us", 7))
	assert.Equal(t, "CTMX12", DeriveSKU("Mx", 12))
	assert.Equal(t, "CTGB1", DeriveSKU("gbr", 1))
	assert.Equal(t, "CT日本3", DeriveSKU("日本", 3))
	assert.Equal(t, "CTÉS4", DeriveSKU("ésp", 4))
}

func TestSeedSampleProductsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	result, err := SeedSampleProducts(ctx, svc)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Created: 5}, result)

	result, err = SeedSampleProducts(ctx, svc)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Skipped: 5}, result)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 5)
	assert.Equal(t, "CTJP5", products[4].SKU)
	assert.Equal(t, time.Date(2024, 1, 19, 16, 10, 0, 0, time.UTC), products[4].LoadDate.UTC())

	// Derived SKUs continue after the seeded ids.
	p, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Demo", CountryCode: "ca"})
	require.NoError(t, err)
	assert.Equal(t, "CTCA6", p.SKU)
}

func TestCreateProduct_MultibyteCountryCodeKeepsValidSKU(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	p, err := svc.CreateProduct(context.Background(), &CreateProductRequest{Name: "Walkman", CountryCode: "日本"})
	require.NoError(t, err)
	assert.Equal(t, "CT日本1", p.SKU)
	assert.True(t, utf8.ValidString(p.SKU))
}

func TestCreateProduct_RejectsBlankNameAndTrims(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	_, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "   ", CountryCode: " US "})
	var fieldErrs validator.Errors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Equal(t, []string{"The name field is required."}, fieldErrs["name"])
	assert.NotContains(t, fieldErrs, "country_code")

	p, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "  Pixel 8 ", CountryCode: " us"})
	require.NoError(t, err)
	assert.Equal(t, "Pixel 8", p.Name)
	assert.Equal(t, "us", p.CountryCode)
	assert.Equal(t, "CTUS1", p.SKU)
}

func TestUpdateProduct_RejectsBlankName(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	p, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Galaxy", CountryCode: "KR"})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, p.ID, &UpdateProductRequest{Name: strPtr("  ")})
	var fieldErrs validator.Errors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Equal(t, []string{"The name field is required."}, fieldErrs["name"])

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Galaxy", got.Name)
}

func TestDecodeCreateRequest_WrongTypes(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	cases := []struct {
		name   string
		fields map[string]any
		field  string
		msg    string
	}{
		{"numeric name", map[string]any{"name": float64(123), "country_code": "US"}, "name", "The name field must be a string."},
		{"numeric country", map[string]any{"name": "Demo", "country_code": float64(12)}, "country_code", "The country code field must be a string."},
		{"numeric load date", map[string]any{"name": "Demo", "country_code": "US", "load_date": float64(20240101)}, "load_date", "The load date field must be a valid date."},
		{"object name", map[string]any{"name": map[string]any{}, "country_code": "US"}, "name", "The name field must be a string."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), DecodeCreateRequest(tc.fields))
			var fieldErrs validator.Errors
			require.True(t, errors.As(err, &fieldErrs), "%v", err)
			assert.Equal(t, []string{tc.msg}, fieldErrs[tc.field])
			assert.Len(t, fieldErrs, 1)
		})
	}

	// Type errors are reported alongside the regular rules.
	_, err := svc.CreateProduct(context.Background(), DecodeCreateRequest(map[string]any{"name": true}))
	var fieldErrs validator.Errors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Equal(t, []string{"The name field must be a string."}, fieldErrs["name"])
	assert.Equal(t, []string{"The country code field is required."}, fieldErrs["country_code"])

	// Null on create is the same as leaving the field out.
	p, err := svc.CreateProduct(context.Background(), DecodeCreateRequest(map[string]any{"name": "Demo", "country_code": "ca", "load_date": nil}))
	require.NoError(t, err)
	assert.Equal(t, "CTCA1", p.SKU)
}

func TestDecodeUpdateRequest_NullAndWrongTypes(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	p, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Galaxy", CountryCode: "KR", LoadDate: strPtr("2024-01-16")})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, p.ID, DecodeUpdateRequest(map[string]any{"name": nil, "country_code": float64(12)}))
	var fieldErrs validator.Errors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Equal(t, []string{"The name field must be a string."}, fieldErrs["name"])
	assert.Equal(t, []string{"The country code field must be a string."}, fieldErrs["country_code"])

	// A null load_date is not supplied; the stored date stays.
	updated, err := svc.UpdateProduct(ctx, p.ID, DecodeUpdateRequest(map[string]any{"load_date": nil, "name": "Galaxy S24"}))
	require.NoError(t, err)
	assert.Equal(t, "Galaxy S24", updated.Name)
	assert.Equal(t, p.LoadDate.UTC(), updated.LoadDate.UTC())
}
