package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-product-bridge/internal/server"
	"go-product-bridge/internal/storeclient"
	"go-product-bridge/pkg/config"
	"go-product-bridge/pkg/logger"
	"go-product-bridge/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	config.LoadDotenv()
	cfg, err := config.LoadProxy()
	if err != nil {
		logger.New(logger.Options{ServiceName: "product-proxy"}).Error(context.Background(), "config.invalid", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "product-proxy",
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client, err := storeclient.New(cfg.StoreBaseURL,
		storeclient.WithTimeout(cfg.StoreTimeout),
		storeclient.WithMetrics(metrics.NewUpstreamMetrics(reg)),
	)
	if err != nil {
		log.Error(ctx, "storeclient.invalid", err)
		os.Exit(1)
	}

	app := server.NewProxyApp(server.ProxyDeps{
		Store:    client,
		StoreURL: client.BaseURL(),
		Log:      log,
		Gatherer: reg,
	})

	go func() {
		ctx := log.WithFields(ctx, map[string]any{"port": cfg.Port, "store_url": client.BaseURL()})
		log.Info(ctx, "server.listening")
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
	if err := app.Shutdown(); err != nil {
		log.Error(ctx, "server.shutdown_failed", err)
		os.Exit(1)
	}
	log.Info(ctx, "server.exited")
}
