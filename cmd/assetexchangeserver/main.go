package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asset-exchange/internals/adapter/cache"
	"asset-exchange/internals/adapter/cache/refresher"
	"asset-exchange/internals/adapter/ratefeed"
	"asset-exchange/internals/api"
	"asset-exchange/internals/config"
	"asset-exchange/internals/registry"
	"asset-exchange/internals/repository"
	"asset-exchange/internals/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("Starting Asset Exchange Service...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	reg, err := registry.NewFromPairs(cfg.ExchangePairs)
	if err != nil {
		log.Fatalf("Failed to parse EXCHANGE_PAIRS: %v", err)
	}

	feedClient := ratefeed.NewClient(cfg.RateAPIURL)
	seriesCache := cache.NewRedisCache(redisClient, cfg.SeriesCacheTTL)
	seriesRepo := repository.NewCachedSeriesRepository(feedClient, seriesCache)
	conversionService := service.NewConversionService(seriesRepo, reg, cfg.HistoryWindowDays)
	apiHandler := api.NewHandler(conversionService, reg)

	app := fiber.New(fiber.Config{
		AppName:      "Asset Exchange Service",
		ErrorHandler: api.ErrorHandler,
	})

	app.Use(logger.New())

	api.SetupRouter(app, apiHandler)

	refreshCtx, refreshCancel := context.WithCancel(context.Background())
	defer refreshCancel()
	go refresher.StartBackgroundRebuildWithLock(refreshCtx, cfg.RefreshInterval, redisClient, conversionService)

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	refreshCancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server exited gracefully")
}
