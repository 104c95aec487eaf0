package server

import (
	"go-product-bridge/internal/handler"
	"go-product-bridge/internal/middleware"
	"go-product-bridge/pkg/logger"
	"go-product-bridge/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
)

const ProxyAppName = "Product Enrichment Proxy v1.0"

// ProxyDeps is what the enrichment proxy app is built from.
type ProxyDeps struct {
	Store    handler.ProductStore
	StoreURL string
	Log      *logger.Logger
	Gatherer prometheus.Gatherer
	Options  []handler.ProxyOption
}

// NewProxyApp wires the enrichment proxy routes.
func NewProxyApp(deps ProxyDeps) *fiber.App {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		AppName:      ProxyAppName,
		ErrorHandler: proxyErrorHandler,
	})

	app.Use(cors.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New())

	h := handler.NewProxyHandler(deps.Store, deps.StoreURL, log, deps.Options...)

	app.Get("/", h.Root)

	api := app.Group("/api")
	api.Get("/health", h.Health)

	// /products/stats must be registered before /products/:id.
	api.Get("/products/stats", h.GetStats)
	api.Get("/products", h.GetProducts)
	api.Get("/products/:id", h.GetProduct)
	api.Post("/products", h.CreateProduct)
	api.Put("/products/:id", h.UpdateProduct)
	api.Delete("/products/:id", h.DeleteProduct)

	api.Get("/country/:countryCode/products", h.GetProductsByCountry)

	if deps.Gatherer != nil {
		app.Get("/metrics", metrics.Handler(deps.Gatherer))
	}

	return app
}
