package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pip3-kill-me/ebay-scraper/internal/config"
	"github.com/pip3-kill-me/ebay-scraper/internal/database"
	"github.com/pip3-kill-me/ebay-scraper/internal/events"
	"github.com/pip3-kill-me/ebay-scraper/internal/fetch"
	"github.com/pip3-kill-me/ebay-scraper/internal/models"
	"github.com/pip3-kill-me/ebay-scraper/internal/parser"
	"github.com/pip3-kill-me/ebay-scraper/internal/report"
	"github.com/pip3-kill-me/ebay-scraper/internal/scraper"
	"github.com/pip3-kill-me/ebay-scraper/pkg/logger"
)

func main() {
	var (
		search  = flag.String("search", "", "eBay search term, e.g. \"nvme ssd 4tb\"")
		min     = flag.Float64("min", 0, "Minimum acceptable price per TB in USD")
		max     = flag.Float64("max", 0, "Maximum acceptable price per TB in USD")
		results = flag.Int("results", 5, "How many in-bounds listings to collect before stopping")
		logPath = flag.String("log", "analysis_log.md", "Path of the markdown analysis log")
		pdfPath = flag.String("pdf", "", "Optional path for a PDF deal chart")
	)
	flag.Parse()

	if *search == "" {
		fmt.Fprintln(os.Stderr, "Usage: analyzer -search <term> -min <usd> -max <usd> [-results N] [-log path] [-pdf path]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting eBay price-per-TB analyzer", "search_term", *search)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	bounds := models.Bounds{
		MinPricePerTB: *min,
		MaxPricePerTB: *max,
		DesiredCount:  *results,
	}

	logFile, err := os.Create(*logPath)
	if err != nil {
		logger.Error("Failed to create analysis log", "path", *logPath, "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	sink, err := report.NewMarkdownLog(logFile, *search, bounds)
	if err != nil {
		logger.Error("Failed to write analysis log header", "error", err)
		os.Exit(1)
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
		Sink:           sink,
		Logger:         logger,
	})

	result, err := controller.Run(ctx, *search, bounds)
	if err != nil {
		logger.Error("Analysis aborted", "error", err)
		os.Exit(1)
	}

	logger.Info("Analysis finished",
		"state", result.State.String(),
		"pages", result.Pages,
		"listings", len(result.Listings),
		"valid", result.ValidCount)

	ranked := scraper.Rank(result.Listings, bounds)

	switch {
	case len(result.Listings) == 0:
		fmt.Println("No listings could be analyzed at all.")
	case len(ranked) == 0:
		fmt.Printf("Analyzed %d listings, but none were within $%.2f-$%.2f per TB.\n",
			len(result.Listings), bounds.MinPricePerTB, bounds.MaxPricePerTB)
	default:
		fmt.Printf("Found %d listings within $%.2f-$%.2f per TB:\n\n",
			len(ranked), bounds.MinPricePerTB, bounds.MaxPricePerTB)
		report.WriteTable(os.Stdout, ranked)
	}

	if *pdfPath != "" && len(ranked) > 0 {
		if err := report.WriteDealChart(ranked, bounds, *pdfPath); err != nil {
			logger.Error("Failed to write PDF chart", "path", *pdfPath, "error", err)
		} else {
			logger.Info("Wrote PDF deal chart", "path", *pdfPath)
		}
	}

	persist(ctx, cfg, logger, *search, bounds, result, ranked)

	if result.State == scraper.StateStoppedFailure {
		os.Exit(1)
	}
}

// persist stores the run and publishes deal events when the optional
// backends are configured.
func persist(ctx context.Context, cfg *config.Config, logger *slog.Logger, term string, bounds models.Bounds, result *scraper.Result, ranked []models.AnalyzedListing) {
	runID := uuid.New()

	if cfg.Database.Enabled {
		db, err := database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.DBName,
		})
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
		} else {
			defer db.Close()
			if err := db.Migrate(ctx); err != nil {
				logger.Error("Failed to migrate database", "error", err)
			}
			now := time.Now().UTC()
			run := &database.AnalysisRun{
				ID:            runID,
				SearchTerm:    term,
				MinPricePerTB: bounds.MinPricePerTB,
				MaxPricePerTB: bounds.MaxPricePerTB,
				DesiredCount:  bounds.DesiredCount,
				State:         result.State.String(),
				StartedAt:     now,
			}
			if err := db.InsertRun(ctx, run); err != nil {
				logger.Error("Failed to persist run", "error", err)
			} else {
				if err := db.InsertListings(ctx, runID, result.Listings); err != nil {
					logger.Error("Failed to persist listings", "error", err)
				}
				if err := db.FinishRun(ctx, runID, result.State.String(), len(result.Listings), result.ValidCount); err != nil {
					logger.Error("Failed to finish run", "error", err)
				}
			}
		}
	}

	if cfg.Redis.Enabled && len(ranked) > 0 {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			return
		}
		publisher := events.NewPublisher(client, cfg.Redis.Stream, logger)
		published := publisher.PublishDeals(ctx, runID.String(), term, ranked)
		logger.Info("Published deal events", "count", published)
	}
}
