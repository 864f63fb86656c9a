package main

import (
	"fmt"
	"net/http"
	"os"

	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/handlers"
	"folio/internal/logger"
	"folio/internal/middleware"
	"folio/internal/pricing"
	"folio/internal/services"
	"folio/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Folio API
// @version         1.0
// @description     Folio tracks a portfolio of securities, values it with resiliently resolved prices, and scores per-holding and portfolio-level risk.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	catalogService := services.NewCatalogService(db)
	if err := catalogService.SeedIfEmpty(); err != nil {
		return fmt.Errorf("failed to seed reference catalog: %w", err)
	}

	registryService := services.NewRegistryService(db, catalogService)
	riskService := services.NewRiskService()

	httpClient := &http.Client{Timeout: appConfig.QuoteTimeout}
	sources := make([]pricing.QuoteSource, len(appConfig.QuoteAPIKeys))
	for i, key := range appConfig.QuoteAPIKeys {
		name := fmt.Sprintf("quote-api-%d", i+1)
		sources[i] = pricing.NewHTTPQuoteSource(name, httpClient, appConfig.QuoteAPIURL, key)
	}
	converter := pricing.NewRateConverter(appConfig.QuoteCurrency, appConfig.DisplayCurrency, appConfig.ConversionRate)
	resolver := pricing.NewResolver(sources, converter, pricing.ResolverConfig{
		PerSourceTimeout: appConfig.QuoteTimeout,
		Pacing:           appConfig.QuotePacing,
		FallbackPrices:   appConfig.FallbackPrices,
		DefaultPrice:     appConfig.DefaultPrice,
	})
	pricingService := pricing.NewService(resolver, db)

	ledgerService := services.NewLedgerService(db, registryService, riskService, pricingService)

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	securityHandler := handlers.NewSecurityHandler(registryService, riskService, pricingService)
	portfolioHandler := handlers.NewPortfolioHandler(ledgerService)
	quoteHandler := handlers.NewQuoteHandler(pricingService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Reference catalog routes
	catalog := v1.Group("/catalog")
	catalog.GET("/:category", catalogHandler.ListEntries)
	catalog.GET("/:category/:code", catalogHandler.GetEntry)

	// Security registry routes
	securities := v1.Group("/securities")
	securities.POST("", securityHandler.CreateSecurity)
	securities.GET("", securityHandler.ListSecurities)
	securities.GET("/:symbol", securityHandler.GetSecurity)
	securities.GET("/:symbol/risk", securityHandler.GetRisk)
	securities.GET("/:symbol/quotes", securityHandler.GetQuoteHistory)

	// Portfolio and holding routes
	portfolios := v1.Group("/portfolios")
	portfolios.POST("", portfolioHandler.CreatePortfolio)
	portfolios.GET("", portfolioHandler.ListPortfolios)
	portfolios.GET("/:id", portfolioHandler.GetPortfolio)
	portfolios.GET("/:id/holdings", portfolioHandler.ListHoldings)
	portfolios.POST("/:id/holdings/buy", portfolioHandler.Buy)
	portfolios.DELETE("/:id/holdings/:symbol", portfolioHandler.SellAll)
	portfolios.GET("/:id/snapshot", portfolioHandler.Snapshot)

	holdings := v1.Group("/holdings")
	holdings.GET("/:holdingID/transactions", portfolioHandler.ListTransactions)

	// Pipeline routes (API-key guarded quote ingestion)
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(appConfig.PipelineAPIKey))
	pipeline.POST("/quotes", quoteHandler.RecordQuotes)

	log.Infof("Starting Folio backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
