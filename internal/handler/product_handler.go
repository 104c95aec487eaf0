package handler

import (
	"errors"
	"strconv"

	"go-product-bridge/internal/model"
	"go-product-bridge/internal/service"
	"go-product-bridge/pkg/logger"
	"go-product-bridge/pkg/metrics"
	"go-product-bridge/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

// ProductHandler serves the record store's /products surface.
type ProductHandler struct {
	service service.ProductService
	log     *logger.Logger
	metrics *metrics.StoreMetrics
}

func NewProductHandler(s service.ProductService, log *logger.Logger, m *metrics.StoreMetrics) *ProductHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductHandler{service: s, log: log, metrics: m}
}

// parseID accepts positive integers only; anything else cannot match a row.
func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseBody tolerates an empty body so a bare PUT means "no changes".
// Field types are checked by the service decoders, so only a body that is
// not a JSON object fails here.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

// GetProducts lists active products.
// GET /api/products
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return h.internalError(c, "list", err)
	}
	if products == nil {
		products = []model.Product{}
	}
	h.metrics.Observe("list", outcomeOK)
	return c.JSON(fiber.Map{"ok": true, "data": products})
}

// CreateProduct validates and stores a product, deriving sku and load_date.
// POST /api/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	fields := map[string]any{}
	if err := parseBody(c, &fields); err != nil {
		h.metrics.Observe("create", outcomeInvalid)
		return c.Status(400).JSON(fiber.Map{"ok": false, "msg": "Invalid JSON"})
	}

	product, err := h.service.CreateProduct(c.UserContext(), service.DecodeCreateRequest(fields))
	if err != nil {
		return h.fail(c, "create", err)
	}

	h.metrics.Observe("create", outcomeOK)
	return c.Status(201).JSON(fiber.Map{
		"ok":   true,
		"msg":  "Product created successfully",
		"data": product,
	})
}

// GetProduct returns one active product.
// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return h.notFound(c, "get", "The product does not exist")
	}

	product, err := h.service.GetProduct(c.UserContext(), id)
	if errors.Is(err, service.ErrProductNotFound) {
		return h.notFound(c, "get", "The product does not exist")
	}
	if err != nil {
		return h.internalError(c, "get", err)
	}

	h.metrics.Observe("get", outcomeOK)
	return c.JSON(fiber.Map{"ok": true, "data": product})
}

// UpdateProduct applies a partial update.
// PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return h.notFound(c, "update", "Product not found")
	}

	fields := map[string]any{}
	if err := parseBody(c, &fields); err != nil {
		h.metrics.Observe("update", outcomeInvalid)
		return c.Status(400).JSON(fiber.Map{"ok": false, "msg": "Invalid JSON"})
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, service.DecodeUpdateRequest(fields))
	if err != nil {
		return h.fail(c, "update", err)
	}

	h.metrics.Observe("update", outcomeOK)
	return c.JSON(fiber.Map{"ok": true, "msg": "Product updated", "data": product})
}

// DeleteProduct soft-deletes a product.
// DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return h.notFound(c, "delete", "Product not found")
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return h.fail(c, "delete", err)
	}

	h.metrics.Observe("delete", outcomeOK)
	return c.JSON(fiber.Map{"ok": true, "msg": "Product deleted"})
}

// fail maps service errors onto the store's response shapes.
func (h *ProductHandler) fail(c *fiber.Ctx, op string, err error) error {
	var fieldErrs validator.Errors
	switch {
	case errors.As(err, &fieldErrs):
		h.metrics.Observe(op, outcomeInvalid)
		return c.Status(422).JSON(fiber.Map{"ok": false, "errors": fieldErrs})
	case errors.Is(err, service.ErrProductNotFound):
		return h.notFound(c, op, "Product not found")
	default:
		return h.internalError(c, op, err)
	}
}

func (h *ProductHandler) notFound(c *fiber.Ctx, op, msg string) error {
	h.metrics.Observe(op, outcomeNotFound)
	return c.Status(404).JSON(fiber.Map{"ok": false, "msg": msg})
}

func (h *ProductHandler) internalError(c *fiber.Ctx, op string, err error) error {
	h.metrics.Observe(op, outcomeError)
	h.log.Error(h.log.WithField(c.UserContext(), "operation", op), "product.operation_failed", err)
	return c.Status(500).JSON(fiber.Map{"ok": false, "msg": "Internal Server Error"})
}
