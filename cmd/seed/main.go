package main

import (
	"context"
	"os"

	"go-product-bridge/internal/model"
	"go-product-bridge/internal/repository"
	"go-product-bridge/internal/service"
	"go-product-bridge/pkg/config"
	"go-product-bridge/pkg/database"
	"go-product-bridge/pkg/logger"
)

func main() {
	// 1. Load Env
	config.LoadDotenv()
	cfg, err := config.LoadStore()
	if err != nil {
		logger.New(logger.Options{ServiceName: "product-seed"}).Error(context.Background(), "config.invalid", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "product-seed",
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
	})
	ctx := context.Background()

	// 2. Setup Database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Error(ctx, "database.connect_failed", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close(db) }()

	if err := db.AutoMigrate(&model.Product{}); err != nil {
		log.Error(ctx, "database.migrate_failed", err)
		os.Exit(1)
	}

	// 3. Seed
	svc := service.NewProductService(repository.NewProductRepo(db))
	result, err := service.SeedSampleProducts(ctx, svc)
	if err != nil {
		log.Error(ctx, "seed.failed", err)
		os.Exit(1)
	}

	log.Info(log.WithFields(ctx, map[string]any{
		"created": result.Created,
		"skipped": result.Skipped,
	}), "seed.complete")
}
