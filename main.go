package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/m-zayed5722/elliott-wave-analyzer/cache"
	"github.com/m-zayed5722/elliott-wave-analyzer/fetch"
	"github.com/m-zayed5722/elliott-wave-analyzer/service"
	"github.com/rs/zerolog/log"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.With().Str("service", "analyzer").Logger()

	fetcher, err := fetch.NewFMPClient(&fetch.FMPConfig{
		APIKey:  cfg.FMPAPIKey,
		BaseURL: fetch.BaseURL,
	})
	if err != nil {
		logger.Error().Msgf("creating fmp client: %v", err)
		return
	}

	cacheLogger := logger.With().Str("component", "pricecache").Logger()
	store, err := cache.NewCache(ctx, &cache.CacheConfig{
		Endpoint: cfg.CacheEndpoint,
		User:     cfg.CacheUser,
		Pass:     cfg.CachePass,
		Logger:   &cacheLogger,
	})
	if err != nil {
		logger.Error().Msgf("creating price cache: %v", err)
		return
	}

	apiLogger := logger.With().Str("component", "api").Logger()
	api, err := service.NewAPI(&service.APIConfig{
		ListenAddr: cfg.ListenAddr,
		Fetcher:    fetcher,
		Store:      store,
		Logger:     &apiLogger,
	})
	if err != nil {
		logger.Error().Msgf("creating analyzer service: %v", err)
		return
	}

	go handleTermination(ctx, cancel)

	err = api.Run(ctx)
	if err != nil {
		logger.Error().Msgf("running analyzer service: %v", err)
	}
}
