package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beamlak/srts/internal/api"
	"github.com/beamlak/srts/internal/cache"
	"github.com/beamlak/srts/internal/client"
	"github.com/beamlak/srts/internal/config"
	"github.com/beamlak/srts/internal/metrics"
	"github.com/beamlak/srts/internal/reporting"
	"github.com/beamlak/srts/internal/services"
	"github.com/beamlak/srts/internal/storage"
	"github.com/beamlak/srts/internal/web"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Str("version", version).
		Str("proxy_connection_string", cfg.ProxyConnectionString).
		Str("index_base_url", cfg.Index.BaseURL).
		Str("database_driver", cfg.Database.Driver).
		Str("cache_provider", cfg.Cache.Provider).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Msg("Application started with configuration")

	flush, err := reporting.Init(cfg.Sentry.DSN, cfg.Sentry.Environment, version)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Sentry, continuing without error reporting")
	}
	defer flush()

	store, err := storage.OpenHistoryStore(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open history store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close history store")
		}
	}()

	relayCache, err := cache.New(cfg.Cache.Provider, cache.ProviderConfig{
		Size:          cfg.Cache.Size,
		TTL:           config.ParseDuration(cfg.Cache.TTL, time.Hour),
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		Group:         "relay",
	})
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.Cache.Provider).Msg("Failed to create relay cache")
	}
	defer func() {
		if err := relayCache.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close relay cache")
		}
	}()

	// One client instance shared by the gateway and the relay
	httpClient := client.NewClient(cfg)

	router := api.NewRouter(api.Dependencies{
		Search:  services.NewSearchGateway(httpClient, cfg.Index.DownloadBaseURL, nil),
		History: services.NewHistoryService(store, nil),
		Relay: services.NewSubtitleRelay(httpClient, relayCache, services.RelayOptions{
			AllowedHosts: cfg.Download.AllowedHosts,
			MaxSize:      cfg.Download.MaxSize,
		}),
		Health: store,
		UI:     web.Handler(),
	}, cfg)

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		}
	}()

	logger.Info().Str("address", address).Msg("Starting HTTP server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to serve HTTP")
	}

	<-shutdownDone
	logger.Info().Msg("Server stopped gracefully")
}
