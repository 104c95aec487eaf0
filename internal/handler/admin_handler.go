package handler

import (
	"errors"

	"go-product-bridge/internal/model"
	"go-product-bridge/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes read-only views that include soft-deleted rows.
type AdminHandler struct {
	service service.ProductService
}

func NewAdminHandler(s service.ProductService) *AdminHandler {
	return &AdminHandler{service: s}
}

type adminProduct struct {
	model.Product
	Status string `json:"status"`
}

func toAdminProduct(p model.Product) adminProduct {
	return adminProduct{Product: p, Status: p.Status()}
}

// GetAllProducts
// GET /api/admin/products
func (h *AdminHandler) GetAllProducts(c *fiber.Ctx) error {
	products, err := h.service.ListAllProducts(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"ok": false, "msg": "Internal Server Error"})
	}

	out := make([]adminProduct, 0, len(products))
	for _, p := range products {
		out = append(out, toAdminProduct(p))
	}
	return c.JSON(fiber.Map{"ok": true, "data": out})
}

// GetAnyProduct
// GET /api/admin/products/:id
func (h *AdminHandler) GetAnyProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(404).JSON(fiber.Map{"ok": false, "msg": "The product does not exist"})
	}

	product, err := h.service.GetAnyProduct(c.UserContext(), id)
	if errors.Is(err, service.ErrProductNotFound) {
		return c.Status(404).JSON(fiber.Map{"ok": false, "msg": "The product does not exist"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"ok": false, "msg": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"ok": true, "data": toAdminProduct(*product)})
}
