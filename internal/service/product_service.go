package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-product-bridge/internal/model"
	"go-product-bridge/internal/repository"
	"go-product-bridge/pkg/validator"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

const (
	ActionCreated = "product_created"
	ActionUpdated = "product_updated"
	ActionDeleted = "product_deleted"
)

// Notifier receives product lifecycle events. It must not block.
type Notifier interface {
	ProductChanged(action string, product *model.Product)
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, req *CreateProductRequest) (*model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, req *UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error

	// Administrative reads that see soft-deleted rows.
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	GetAnyProduct(ctx context.Context, id uint) (*model.Product, error)
}

type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	CountryCode string  `json:"country_code" validate:"required,notblank,len=2"`
	LoadDate    *string `json:"load_date" validate:"omitempty,loosedate"`

	// SKU is only set by internal callers such as the seeder; the HTTP
	// surface never binds it.
	SKU string `json:"-"`

	// typeErrs holds fields whose JSON value had the wrong type.
	typeErrs validator.Errors
}

type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	CountryCode *string `json:"country_code" validate:"omitempty,notblank,len=2"`
	LoadDate    *string `json:"load_date" validate:"omitempty,loosedate"`

	typeErrs validator.Errors
}

type productService struct {
	productRepo repository.ProductRepository
	notifier    Notifier
	now         func() time.Time

	// createMu keeps id read and insert atomic for creates within this process.
	createMu sync.Mutex
}

type Option func(*productService)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *productService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNotifier attaches a listener for lifecycle events.
func WithNotifier(n Notifier) Option {
	return func(s *productService) {
		s.notifier = n
	}
}

func NewProductService(pRepo repository.ProductRepository, opts ...Option) ProductService {
	s := &productService{
		productRepo: pRepo,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindActive(ctx)
}

func (s *productService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.CountryCode = strings.TrimSpace(req.CountryCode)
	req.LoadDate = blankToNil(req.LoadDate)
	if err := validateRequest(req, req.typeErrs); err != nil {
		return nil, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	var product *model.Product
	err := s.productRepo.Transaction(ctx, func(repo repository.ProductRepository) error {
		if req.SKU != "" {
			_, err := repo.FindBySKU(ctx, req.SKU)
			if err == nil {
				return validator.Errors{"sku": {"The sku has already been taken."}}
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}

		maxID, err := repo.MaxID(ctx)
		if err != nil {
			return err
		}

		product, err = prepareForCreate(req, maxID, s.now())
		if err != nil {
			return err
		}
		return repo.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ActionCreated, product)
	return product, nil
}

// prepareForCreate is the pre-persist step: it builds the row and fills the
// derived fields (sku, load_date) the client did not supply.
func prepareForCreate(req *CreateProductRequest, maxID uint, now time.Time) (*model.Product, error) {
	product := &model.Product{
		Name:        req.Name,
		CountryCode: req.CountryCode,
		SKU:         req.SKU,
		LoadDate:    now,
	}
	product.CreatedAt = now
	product.UpdatedAt = now

	if req.LoadDate != nil {
		loadDate, err := validator.ParseDate(*req.LoadDate)
		if err != nil {
			return nil, validator.Errors{"load_date": {validator.DateMessage("load_date")}}
		}
		product.LoadDate = loadDate
	}

	if product.SKU == "" {
		product.SKU = DeriveSKU(req.CountryCode, maxID+1)
	}
	return product, nil
}

// DeriveSKU builds "CT" + the upper-cased first two characters of the country code + nextID.
func DeriveSKU(countryCode string, nextID uint) string {
	code := []rune(strings.ToUpper(countryCode))
	if len(code) > 2 {
		code = code[:2]
	}
	return fmt.Sprintf("%s%s%d", model.SKUPrefix, string(code), nextID)
}

func (s *productService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, req *UpdateProductRequest) (*model.Product, error) {
	// 1. The product has to exist before we look at the payload.
	if _, err := s.productRepo.FindActiveByID(ctx, id); err != nil {
		return nil, notFound(err)
	}

	// 2. Validate whatever was supplied. A null or blank load_date counts as absent.
	req.Name = trimPtr(req.Name)
	req.CountryCode = trimPtr(req.CountryCode)
	req.LoadDate = blankToNil(req.LoadDate)
	if err := validateRequest(req, req.typeErrs); err != nil {
		return nil, err
	}

	// 3. Only supplied fields change.
	fields := map[string]interface{}{
		"updated_at": s.now(),
	}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.CountryCode != nil {
		fields["country_code"] = *req.CountryCode
	}
	if req.LoadDate != nil {
		loadDate, err := validator.ParseDate(*req.LoadDate)
		if err != nil {
			return nil, validator.Errors{"load_date": {validator.DateMessage("load_date")}}
		}
		fields["load_date"] = loadDate
	}

	if err := s.productRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, notFound(err)
	}

	updated, err := s.productRepo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	s.notify(ActionUpdated, updated)
	return updated, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.productRepo.FindActiveByID(ctx, id)
	if err != nil {
		return notFound(err)
	}

	at := s.now()
	if err := s.productRepo.SoftDelete(ctx, id, at); err != nil {
		return notFound(err)
	}
	product.DeletedAt = &at
	product.UpdatedAt = at

	s.notify(ActionDeleted, product)
	return nil
}

func (s *productService) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *productService) GetAnyProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return product, nil
}

func (s *productService) notify(action string, product *model.Product) {
	if s.notifier == nil || product == nil {
		return
	}
	s.notifier.ProductChanged(action, product)
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}

// validateRequest runs the struct rules and merges in type errors found while
// decoding. A field with a type error reports only that error.
func validateRequest(req any, typeErrs validator.Errors) error {
	err := validator.ValidateStruct(req)
	if len(typeErrs) == 0 {
		return err
	}

	var fieldErrs validator.Errors
	if err != nil && !errors.As(err, &fieldErrs) {
		return err
	}

	merged := validator.Errors{}
	for field, msgs := range typeErrs {
		merged[field] = msgs
	}
	for field, msgs := range fieldErrs {
		if _, ok := merged[field]; !ok {
			merged[field] = msgs
		}
	}
	return merged
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
