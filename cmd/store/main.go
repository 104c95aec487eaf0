package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-product-bridge/internal/model"
	"go-product-bridge/internal/repository"
	"go-product-bridge/internal/server"
	"go-product-bridge/internal/service"
	"go-product-bridge/internal/ws"
	"go-product-bridge/pkg/config"
	"go-product-bridge/pkg/database"
	"go-product-bridge/pkg/logger"
	"go-product-bridge/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// 1. Load Env
	config.LoadDotenv()
	cfg, err := config.LoadStore()
	if err != nil {
		logger.New(logger.Options{ServiceName: "product-store"}).Error(context.Background(), "config.invalid", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "product-store",
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Setup Database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Error(ctx, "database.connect_failed", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close(db) }()

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&model.Product{}); err != nil {
			log.Error(ctx, "database.migrate_failed", err)
			os.Exit(1)
		}
	}
	log.Info(log.WithField(ctx, "driver", cfg.DB.Driver), "database.ready")

	// 3. Setup WebSocket Hub
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	// 4. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	productService := service.NewProductService(productRepo, service.WithNotifier(hub))

	if cfg.AdminSecret == "" {
		log.Warn(ctx, "admin.disabled")
	}

	app := server.NewStoreApp(server.StoreDeps{
		Service:     productService,
		Log:         log,
		Metrics:     metrics.NewStoreMetrics(reg),
		Gatherer:    reg,
		Hub:         hub,
		AdminSecret: cfg.AdminSecret,
	})

	// 6. Graceful Shutdown
	go func() {
		log.Info(log.WithField(ctx, "port", cfg.Port), "server.listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error(ctx, "server.listen_failed", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info(ctx, "server.shutting_down")
	cancel()
	if err := app.Shutdown(); err != nil {
		log.Error(ctx, "server.shutdown_failed", err)
		os.Exit(1)
	}
	log.Info(ctx, "server.exited")
}
