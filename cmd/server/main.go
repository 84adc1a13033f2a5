// Package main - Entry point for the ifc-cost HTTP server
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ifc-cost/api"
	"ifc-cost/core/engine"
	"ifc-cost/core/provider"
	"ifc-cost/core/rules"
	"ifc-cost/internal/config"
	"ifc-cost/internal/logging"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "config file (yaml or json)")
	addr := flag.String("addr", "", "server address (overrides config)")
	flag.Parse()

	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()
	logger := logging.Named(logging.ComponentServer)

	handler, err := newHandler(cfg)
	if err != nil {
		logger.Fatal("failed to build api server", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("ifc-cost server listening",
			zap.String("version", version),
			zap.String("addr", cfg.Server.Addr),
			zap.String("rules_dir", cfg.Rules.Dir),
			zap.String("rules_hcl", cfg.Rules.HCLFile))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutting down server", zap.Error(err))
	}
	logger.Info("server stopped")
}

// newHandler wires loader, registry, engine and catalog behind the API
func newHandler(cfg *config.Config) (http.Handler, error) {
	loaderOpts := []rules.Option{
		rules.WithSchemaValidation(cfg.Rules.ValidateSchema),
		rules.WithLogger(logging.Named(logging.ComponentRules)),
	}
	loader := rules.NewLoader(rules.NewSource(cfg.Rules.Dir, cfg.Rules.HCLFile), loaderOpts...)

	eng := engine.New(loader, provider.DefaultRegistry(),
		engine.WithWorkers(cfg.Engine.Workers),
		engine.WithProjectName(cfg.Engine.ProjectName),
		engine.WithLogger(logging.Named(logging.ComponentEngine)))

	catalog := rules.NewCatalog(cfg.Rules.Dir, loader, logging.Named(logging.ComponentRules), loaderOpts...)

	apiServer, err := api.NewServer(version, eng, catalog,
		api.WithConfig(api.Config{
			CacheSize:      cfg.Server.CacheSize,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			RequestTimeout: cfg.Server.RequestTimeout,
		}),
		api.WithLogger(logging.Named(logging.ComponentAPI)))
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", apiServer))
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux, nil
}
