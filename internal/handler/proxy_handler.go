package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-product-bridge/internal/enrich"
	"go-product-bridge/internal/middleware"
	"go-product-bridge/internal/storeclient"
	"go-product-bridge/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const (
	ProxyServiceName = "product-enrichment-proxy"
	ProxyVersion     = "1.0.0"
	ProxyBanner      = "Product microservice is running!"
)

// ProductStore is the record store as seen by the proxy.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]storeclient.Product, error)
	GetProduct(ctx context.Context, id uint) (*storeclient.Product, error)
	CreateProduct(ctx context.Context, payload map[string]any) (*storeclient.Product, error)
	UpdateProduct(ctx context.Context, id uint, payload map[string]any) (*storeclient.Product, error)
	DeleteProduct(ctx context.Context, id uint) (string, error)
}

// ProxyHandler forwards to the record store and enriches its answers.
type ProxyHandler struct {
	store    ProductStore
	storeURL string
	regional *enrich.Regional
	log      *logger.Logger
	now      func() time.Time
}

type ProxyOption func(*ProxyHandler)

// WithProxyClock overrides time.Now for timestamps in responses.
func WithProxyClock(now func() time.Time) ProxyOption {
	return func(h *ProxyHandler) { h.now = now }
}

// WithRegional overrides the regional info generator.
func WithRegional(g *enrich.Regional) ProxyOption {
	return func(h *ProxyHandler) { h.regional = g }
}

func NewProxyHandler(store ProductStore, storeURL string, log *logger.Logger, opts ...ProxyOption) *ProxyHandler {
	if log == nil {
		log = logger.Nop()
	}
	h := &ProxyHandler{
		store:    store,
		storeURL: storeURL,
		regional: enrich.NewRegional(nil),
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// upstreamCtx carries the inbound request id to the store.
func upstreamCtx(c *fiber.Ctx) context.Context {
	return storeclient.WithRequestID(c.UserContext(), middleware.GetRequestID(c))
}

// Root answers the plain-text banner.
// GET /
func (h *ProxyHandler) Root(c *fiber.Ctx) error {
	return c.SendString(ProxyBanner)
}

// Health reports static service metadata. The store is not contacted.
// GET /api/health
func (h *ProxyHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Product enrichment service is running",
		"service":   ProxyServiceName,
		"version":   ProxyVersion,
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"upstream": fiber.Map{
			"url":    h.storeURL,
			"status": "connected",
			"probed": false,
		},
	})
}

// GetProducts lists active products with SKU and country data.
// GET /api/products
func (h *ProxyHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.store.ListProducts(upstreamCtx(c))
	if err != nil {
		return h.upstreamFailure(c, "list", "Error retrieving products", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Products retrieved successfully",
		"data":    enrich.EnrichAll(products),
		"summary": enrich.Summarize(products),
	})
}

// GetProduct returns one enriched product, flag included.
// GET /api/products/:id
func (h *ProxyHandler) GetProduct(c *fiber.Ctx) error {
	raw := c.Params("id")
	id, ok := parseID(c)
	if !ok {
		return proxyNotFound(c, fmt.Sprintf("Product with ID %s not found", raw))
	}

	product, err := h.store.GetProduct(upstreamCtx(c), id)
	if err != nil {
		if se := storeclient.AsStatusError(err); se != nil && se.NotFound() {
			return proxyNotFound(c, fmt.Sprintf("Product with ID %s not found", raw))
		}
		return h.upstreamFailure(c, "get", "Error retrieving product", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product retrieved successfully",
		"data":    enrich.Enrich(*product, true),
	})
}

// CreateProduct checks required fields locally, then forwards to the store.
// POST /api/products
func (h *ProxyHandler) CreateProduct(c *fiber.Ctx) error {
	payload, err := parsePayload(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid JSON"})
	}
	if missing(payload, "name") || missing(payload, "country_code") {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Name and country_code are required",
		})
	}

	product, err := h.store.CreateProduct(upstreamCtx(c), payload)
	if err != nil {
		if se := storeclient.AsStatusError(err); se != nil && se.Validation() {
			return validationFailed(c, se)
		}
		return h.upstreamFailure(c, "create", "Error creating product", err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"message": "Product created successfully",
		"data": fiber.Map{
			"id":   product.ID,
			"name": product.Name,
			"sku":  product.SKU,
			"country": fiber.Map{
				"code": strings.ToUpper(product.CountryCode),
				"name": enrich.CountryName(product.CountryCode),
			},
			"load_date":    product.LoadDate,
			"created_at":   product.CreatedAt,
			"confirmation": fmt.Sprintf("Product '%s' registered with SKU %s", product.Name, product.SKU),
		},
	})
}

// UpdateProduct forwards a partial update and echoes the submitted changes.
// PUT /api/products/:id
func (h *ProxyHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return proxyNotFound(c, "Product not found")
	}

	payload, err := parsePayload(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid JSON"})
	}

	product, err := h.store.UpdateProduct(upstreamCtx(c), id, payload)
	if err != nil {
		se := storeclient.AsStatusError(err)
		switch {
		case se != nil && se.NotFound():
			return proxyNotFound(c, "Product not found")
		case se != nil && se.Validation():
			return validationFailed(c, se)
		}
		return h.upstreamFailure(c, "update", "Error updating product", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product updated successfully",
		"data": fiber.Map{
			"id":           product.ID,
			"changes":      payload,
			"country_name": enrich.CountryName(product.CountryCode),
			"load_date":    product.LoadDate,
			"updated_at":   product.UpdatedAt,
		},
	})
}

// DeleteProduct forwards a soft delete and describes what happened.
// DELETE /api/products/:id
func (h *ProxyHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return proxyNotFound(c, "Product not found")
	}

	storeMsg, err := h.store.DeleteProduct(upstreamCtx(c), id)
	if err != nil {
		if se := storeclient.AsStatusError(err); se != nil && se.NotFound() {
			return proxyNotFound(c, "Product not found")
		}
		return h.upstreamFailure(c, "delete", "Error deleting product", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
		"data": fiber.Map{
			"id":              id,
			"deletion_type":   "soft_delete",
			"record_retained": true,
			"processed_at":    h.now().UTC().Format(time.RFC3339),
			"store_message":   storeMsg,
			"note":            "The record is marked as deleted and kept in storage",
		},
	})
}

// GetProductsByCountry filters the active list by country code, ignoring case.
// GET /api/country/:countryCode/products
func (h *ProxyHandler) GetProductsByCountry(c *fiber.Ctx) error {
	code := strings.ToUpper(strings.TrimSpace(c.Params("countryCode")))

	products, err := h.store.ListProducts(upstreamCtx(c))
	if err != nil {
		return h.upstreamFailure(c, "by_country", "Error retrieving products by country", err)
	}

	matched := enrich.FilterByCountry(products, code)
	items := make([]enrich.RegionalProduct, 0, len(matched))
	for _, p := range matched {
		items = append(items, h.regional.Decorate(enrich.Enrich(p, false)))
	}

	info := enrich.Country(code, true)
	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Products for %s retrieved successfully", info.Name),
		"country": fiber.Map{
			"code":           info.Code,
			"name":           info.Name,
			"currency":       info.Currency,
			"timezone":       info.Timezone,
			"flag":           info.Flag,
			"shipping_zone":  info.ShippingZone,
			"total_products": len(items),
		},
		"data":    items,
		"summary": fiber.Map{"total_count": len(items)},
	})
}

// GetStats groups the active list by country, SKU prefix and load month.
// GET /api/products/stats
func (h *ProxyHandler) GetStats(c *fiber.Ctx) error {
	products, err := h.store.ListProducts(upstreamCtx(c))
	if err != nil {
		return h.upstreamFailure(c, "stats", "Error computing statistics", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Statistics computed successfully",
		"data":    enrich.ComputeStats(products, h.now()),
	})
}

func parsePayload(c *fiber.Ctx) (map[string]any, error) {
	payload := map[string]any{}
	if err := parseBody(c, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// missing reports whether key is absent, null or a blank string.
func missing(payload map[string]any, key string) bool {
	v, ok := payload[key]
	if !ok || v == nil {
		return true
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func proxyNotFound(c *fiber.Ctx, msg string) error {
	return c.Status(404).JSON(fiber.Map{"success": false, "message": msg})
}

func validationFailed(c *fiber.Ctx, se *storeclient.StatusError) error {
	return c.Status(422).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  se.Errors,
	})
}

func (h *ProxyHandler) upstreamFailure(c *fiber.Ctx, op, msg string, err error) error {
	ctx := h.log.WithFields(c.UserContext(), map[string]any{
		"operation":   op,
		"unavailable": errors.Is(err, storeclient.ErrUpstreamUnavailable),
	})
	h.log.Error(ctx, "proxy.upstream_failed", err)
	return c.Status(500).JSON(fiber.Map{"success": false, "message": msg})
}
