package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	"github.com/certhunt/deals-backend/config"
	"github.com/certhunt/deals-backend/database"
	"github.com/certhunt/deals-backend/handlers"
	"github.com/certhunt/deals-backend/jobs"
	"github.com/certhunt/deals-backend/services"
	"github.com/certhunt/deals-backend/shared"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	configureLogging(cfg.LogLevel)

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate("database/schema.sql"); err != nil {
		log.Printf("Migration warning: %v", err)
	}

	// Service configuration
	discoveryCfg := config.DefaultDiscoveryConfig()
	cacheConfig := config.DefaultCacheConfig()
	if cfg.CacheTTLHours != "" {
		cacheConfig.DefaultTTL = cfg.GetCacheTTL()
	}

	// Shared infrastructure
	clientFactory := shared.NewHTTPClientFactory(discoveryCfg.FetchTimeout)
	defer clientFactory.CleanupAllClients()
	searchRateLimiter := shared.NewSearchRequestRateLimiter(discoveryCfg.SearchRateLimit)

	// Pipeline services
	queryGenerator := services.NewQueryGenerator(discoveryCfg.MaxQueriesPerProvider)
	searchBackend := services.NewDuckDuckGoSearchBackend(
		clientFactory, searchRateLimiter,
		discoveryCfg.FetchTimeout, discoveryCfg.MaxResultsPerQuery, discoveryCfg.MaxRetryAttempts)
	pageScraper := services.NewProviderPageScraper(discoveryCfg.FetchTimeout)
	scorer := services.NewConfidenceScorer(config.DefaultScoringWeights())

	var enricher services.DealEnricher = services.NewHeuristicEnricher()
	if cfg.GeminiAPIKey != "" {
		enricher = services.NewGeminiEnricher(cfg.GeminiAPIKey, cfg.GeminiModel)
		logrus.WithField("model", cfg.GeminiModel).Info("Gemini enricher enabled")
	}

	// Stores
	offerStore := services.NewPostgresOfferStore(database.DB)
	profileStore := services.NewPostgresProfileStore(database.DB)

	discoveryService := services.NewDiscoveryService(
		queryGenerator, searchBackend, pageScraper, enricher, scorer, offerStore, discoveryCfg)

	// Matching with recommendation cache
	matcherService := services.NewMatcherService(profileStore, offerStore, config.DefaultMatcherWeights())
	recommendationCache := services.NewRecommendationCache(cacheConfig)
	cachedMatcher := services.NewCachedMatcherService(matcherService, recommendationCache)

	log.Println("Certification deal backend services initialized:")
	log.Printf("  - Discovery pipeline (rate limit: %v, fetch timeout: %v, max queries/provider: %d)",
		discoveryCfg.SearchRateLimit, discoveryCfg.FetchTimeout, discoveryCfg.MaxQueriesPerProvider)
	log.Printf("  - Recommendation cache (TTL: %v, max size: %d)", cacheConfig.DefaultTTL, cacheConfig.MaxSize)
	log.Printf("  - Enricher: %s", enricher.EnricherName())

	// Background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	dailyJob := jobs.NewDailyDiscoveryJob(discoveryService, cachedMatcher)
	dailyJob.Schedule(jobCtx, 24*time.Hour)

	cleanupJob := jobs.NewCacheCleanupJob(recommendationCache)
	cleanupJob.Schedule(jobCtx, 1*time.Hour)

	// Handlers
	dealHandler := handlers.NewDealHandler(offerStore)
	discoveryHandler := handlers.NewDiscoveryHandler(discoveryService, cachedMatcher)
	profileHandler := handlers.NewProfileHandler(profileStore, cachedMatcher)
	recommendationHandler := handlers.NewRecommendationHandler(cachedMatcher)

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
			"metrics":   discoveryService.GetMetricsSnapshot(),
		})
	})

	// Routes
	api := app.Group("/api/v1")

	// Deal Routes
	api.Get("/deals", dealHandler.GetDeals)
	api.Get("/deals/expiring", dealHandler.GetExpiringDeals)
	api.Get("/deals/provider/:provider", dealHandler.GetDealsByProvider)
	api.Get("/deals/:offer_id", dealHandler.GetDealByID)

	// Trend Routes
	api.Get("/trends", dealHandler.GetDealTrends)

	// Discovery Route (token-protected when ADMIN_TOKEN is set)
	api.Post("/discover", adminTokenGuard(cfg.AdminToken), discoveryHandler.TriggerDiscovery)

	// Profile Routes
	api.Get("/profiles/:user_id", profileHandler.GetProfile)
	api.Put("/profiles/:user_id", profileHandler.PutProfile)

	// Recommendation Routes
	api.Get("/recommendations/:user_id", recommendationHandler.GetRecommendations)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// adminTokenGuard rejects requests whose X-Admin-Token header does not match
// the configured token. An empty token leaves the route open.
func adminTokenGuard(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token != "" && c.Get("X-Admin-Token") != token {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "invalid admin token",
			})
		}
		return c.Next()
	}
}

func configureLogging(level string) {
	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		parsedLevel = logrus.InfoLevel
	}
	logrus.SetLevel(parsedLevel)
	logrus.SetFormatter(&logrus.JSONFormatter{})
}
