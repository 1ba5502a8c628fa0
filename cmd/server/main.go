package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dealscout/backend/config"
	httpDelivery "github.com/dealscout/backend/internal/delivery/http"
	"github.com/dealscout/backend/internal/domain"
	"github.com/dealscout/backend/internal/infrastructure/cache"
	"github.com/dealscout/backend/internal/infrastructure/extraction"
	"github.com/dealscout/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting DealScout Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache: %s (TTL %s)", cfg.Cache.Type, cfg.Cache.TTL)

	// Initialize infrastructure dependencies
	extractionCache, err := buildCache(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}

	extractionClient := extraction.NewClient(extraction.Config{
		APIKey:  cfg.Extraction.APIKey,
		BaseURL: cfg.Extraction.BaseURL,
		Model:   cfg.Extraction.Model,
	})
	heuristic := extraction.NewHeuristicExtractor()

	debug := cfg.Server.Environment == "development"
	if debug {
		extractionClient.SetDebug(true)
		log.Printf("Extraction client debug mode enabled")
	}
	log.Printf("Extraction model: %s", cfg.Extraction.Model)

	// Resilient extraction path: cache, bounded retries, heuristic fallback
	caller := usecase.NewResilientCaller(
		extractionCache,
		cache.Key,
		cfg.Cache.TTL,
		usecase.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			MaxDelay:    cfg.Retry.MaxDelay,
		},
	)
	caller.SetDebug(debug)
	log.Printf("Retry policy: %d attempts, %s base delay, %s cap",
		cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay, cfg.Retry.MaxDelay)

	// Initialize usecase layer
	normalizer := usecase.NewStaticNormalizer()
	priceScorer := usecase.NewPriceScorer(cfg.Scoring.CurrencyRates)
	priceScorer.SetDefaultCurrency(cfg.Scoring.DefaultCurrency)
	ranker := usecase.NewCompositeRanker(
		usecase.NewSpecMatcher(normalizer),
		usecase.NewReviewAggregator(normalizer),
		priceScorer,
	)
	ranker.SetDebug(debug)

	evaluationService := usecase.NewEvaluationService(ranker, caller, extractionClient, heuristic)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(evaluationService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildCache constructs the extraction cache selected by configuration
func buildCache(cfg *config.Config) (domain.CacheRepository, error) {
	switch cfg.Cache.Type {
	case "lru":
		return cache.NewLRUCache(cfg.Cache.MaxSize)
	default:
		return cache.NewMemoryCache(), nil
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
