package repository

import (
	"context"
	"errors"
	"time"

	"go-product-bridge/internal/model"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no row matches. Callers decide what "matches" means
// through the method they pick (active-only or including soft-deleted rows).
var ErrNotFound = errors.New("record not found")

const activeOnly = "deleted_at IS NULL"

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindActive(ctx context.Context) ([]model.Product, error)
	FindActiveByID(ctx context.Context, id uint) (*model.Product, error)
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	MaxID(ctx context.Context) (uint, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id uint, at time.Time) error
	Transaction(ctx context.Context, fn func(repo ProductRepository) error) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindActive(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where(activeOnly).Order("id").Find(&products).Error
	return products, err
}

func (r *productRepo) FindActiveByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Where(activeOnly).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindAll includes soft-deleted rows.
func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("id").Find(&products).Error
	return products, err
}

// FindByID includes soft-deleted rows.
func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindBySKU includes soft-deleted rows, since SKUs are never reused.
func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// MaxID returns the highest id ever assigned, soft-deleted rows included, or 0.
func (r *productRepo) MaxID(ctx context.Context) (uint, error) {
	var maxID uint
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error
	return maxID, err
}

// UpdateFields changes the given columns on an active row.
func (r *productRepo) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Where(activeOnly).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete stamps deleted_at on an active row. The row is never removed.
func (r *productRepo) SoftDelete(ctx context.Context, id uint, at time.Time) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{
		"deleted_at": at,
		"updated_at": at,
	})
}

// Transaction runs fn against a repository bound to a single database transaction.
func (r *productRepo) Transaction(ctx context.Context, fn func(repo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&productRepo{db: tx})
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
