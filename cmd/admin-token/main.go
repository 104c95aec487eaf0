package main

import (
	"context"
	"fmt"
	"os"

	"go-product-bridge/pkg/config"
	"go-product-bridge/pkg/jwt"
	"go-product-bridge/pkg/logger"
)

// Prints a bearer token for the record store's /api/admin routes.
func main() {
	config.LoadDotenv()

	log := logger.New(logger.Options{ServiceName: "admin-token", Output: os.Stderr})
	ctx := context.Background()

	cfg, err := config.LoadAdminToken()
	if err != nil {
		log.Error(ctx, "config.invalid", err)
		os.Exit(1)
	}

	token, err := jwt.GenerateToken([]byte(cfg.Secret), cfg.Subject, cfg.TTL)
	if err != nil {
		log.Error(ctx, "token.sign_failed", err)
		os.Exit(1)
	}

	log.Info(log.WithFields(ctx, map[string]any{
		"subject":    cfg.Subject,
		"expires_in": cfg.TTL.String(),
	}), "token.issued")
	fmt.Println(token)
}
