package server

import (
	"go-product-bridge/internal/handler"
	"go-product-bridge/internal/middleware"
	"go-product-bridge/internal/service"
	"go-product-bridge/internal/ws"
	"go-product-bridge/pkg/logger"
	"go-product-bridge/pkg/metrics"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
)

const StoreAppName = "Product Record Store v1.0"

// StoreDeps is what the record store app is built from.
type StoreDeps struct {
	Service     service.ProductService
	Log         *logger.Logger
	Metrics     *metrics.StoreMetrics
	Gatherer    prometheus.Gatherer
	Hub         *ws.Hub
	AdminSecret string
}

// NewStoreApp wires the record store routes.
func NewStoreApp(deps StoreDeps) *fiber.App {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		AppName:      StoreAppName,
		ErrorHandler: storeErrorHandler,
	})

	// Middleware
	app.Use(cors.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New())

	productHandler := handler.NewProductHandler(deps.Service, log, deps.Metrics)

	// Routes
	api := app.Group("/api")
	api.Get("/products", productHandler.GetProducts)
	api.Post("/products", productHandler.CreateProduct)
	api.Get("/products/:id", productHandler.GetProduct)
	api.Put("/products/:id", productHandler.UpdateProduct)
	api.Delete("/products/:id", productHandler.DeleteProduct)

	// Admin routes are only mounted when a signing secret is configured.
	if deps.AdminSecret != "" {
		adminHandler := handler.NewAdminHandler(deps.Service)
		admin := api.Group("/admin", middleware.RequireAdmin([]byte(deps.AdminSecret)))
		admin.Get("/products", adminHandler.GetAllProducts)
		admin.Get("/products/:id", adminHandler.GetAnyProduct)
	}

	if deps.Gatherer != nil {
		app.Get("/metrics", metrics.Handler(deps.Gatherer))
	}

	// WebSocket Route
	if deps.Hub != nil {
		hub := deps.Hub
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(func(c *websocket.Conn) {
			if !hub.Join(c) {
				return
			}
			defer hub.Leave(c)

			for {
				// Keep alive loop
				if _, _, err := c.ReadMessage(); err != nil {
					break
				}
			}
		}))
	}

	return app
}
