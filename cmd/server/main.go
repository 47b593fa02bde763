package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/pip3-kill-me/ebay-scraper/internal/api"
	"github.com/pip3-kill-me/ebay-scraper/internal/config"
	"github.com/pip3-kill-me/ebay-scraper/internal/database"
	"github.com/pip3-kill-me/ebay-scraper/internal/events"
	"github.com/pip3-kill-me/ebay-scraper/internal/fetch"
	"github.com/pip3-kill-me/ebay-scraper/internal/jobs"
	"github.com/pip3-kill-me/ebay-scraper/internal/parser"
	"github.com/pip3-kill-me/ebay-scraper/internal/scraper"
	"github.com/pip3-kill-me/ebay-scraper/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting eBay analyzer service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.DBName,
		})
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	var publisher *events.Publisher
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		publisher = events.NewPublisher(redisClient, cfg.Redis.Stream, logger)
	}

	fetcher := fetch.New(fetch.Options{
		Timeout:   cfg.Scraper.FetchTimeout,
		DelayMin:  cfg.Scraper.DelayMin,
		DelayMax:  cfg.Scraper.DelayMax,
		UserAgent: cfg.Scraper.UserAgent,
		Logger:    logger,
	})

	controller := scraper.NewController(fetcher, parser.NewEbayParser(), scraper.Options{
		EmptyPageLimit: cfg.Scraper.EmptyPageLimit,
		Logger:         logger,
	})

	manager := jobs.NewManager(controller, jobs.Options{
		DB:        db,
		Publisher: publisher,
		Logger:    logger,
	})
	defer manager.Close()

	go manager.Start(ctx)

	var store api.RunStore
	if db != nil {
		store = db
	}
	handlers := api.NewHandlers(manager, store, logger)
	router := api.NewRouter(handlers)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.WriteTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", "error", err)
		}
	}()

	logger.Info("Server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
