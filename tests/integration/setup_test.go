package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"folio/internal/handlers"
	"folio/internal/logger"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/pricing"
	"folio/internal/services"
	"folio/internal/validator"
)

const testPipelineKey = "test-pipeline-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB          *gorm.DB
	Router      *gin.Engine
	QuoteServer *httptest.Server
	// quotePrices maps symbol to the price string served by the mock quote
	// upstream; symbols not in the map get an empty quote body.
	quotePrices map[string]string
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.Industry{},
		&models.SecurityType{},
		&models.VarianceTier{},
		&models.Security{},
		&models.Portfolio{},
		&models.Holding{},
		&models.HoldingTransaction{},
		&models.PriceQuote{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite database and a mock quote upstream.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	app := &testApp{DB: db, quotePrices: map[string]string{}}
	app.QuoteServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		w.Header().Set("Content-Type", "application/json")
		price, ok := app.quotePrices[symbol]
		if !ok {
			fmt.Fprint(w, `{"Global Quote": {}}`)
			return
		}
		fmt.Fprintf(w, `{"Global Quote": {"01. symbol": %q, "05. price": %q}}`, symbol, price)
	}))
	t.Cleanup(app.QuoteServer.Close)

	// Services
	catalogService := services.NewCatalogService(db)
	if err := catalogService.SeedIfEmpty(); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
	registryService := services.NewRegistryService(db, catalogService)
	riskService := services.NewRiskService()

	sources := []pricing.QuoteSource{
		pricing.NewHTTPQuoteSource("quote-api-1", app.QuoteServer.Client(), app.QuoteServer.URL, "test-key"),
	}
	converter := pricing.NewRateConverter("USD", "USD", 1.0)
	resolver := pricing.NewResolver(sources, converter, pricing.ResolverConfig{
		FallbackPrices: map[string]int64{"FBK": 50000},
		DefaultPrice:   10000,
	})
	pricingService := pricing.NewService(resolver, db)
	ledgerService := services.NewLedgerService(db, registryService, riskService, pricingService)

	// Handlers
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	securityHandler := handlers.NewSecurityHandler(registryService, riskService, pricingService)
	portfolioHandler := handlers.NewPortfolioHandler(ledgerService)
	quoteHandler := handlers.NewQuoteHandler(pricingService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	catalog := v1.Group("/catalog")
	catalog.GET("/:category", catalogHandler.ListEntries)
	catalog.GET("/:category/:code", catalogHandler.GetEntry)

	securities := v1.Group("/securities")
	securities.POST("", securityHandler.CreateSecurity)
	securities.GET("", securityHandler.ListSecurities)
	securities.GET("/:symbol", securityHandler.GetSecurity)
	securities.GET("/:symbol/risk", securityHandler.GetRisk)
	securities.GET("/:symbol/quotes", securityHandler.GetQuoteHistory)

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

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(testPipelineKey))
	pipeline.POST("/quotes", quoteHandler.RecordQuotes)

	app.Router = router
	return app
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// pipelineRequest makes an API-key authenticated request to the test router.
func (app *testApp) pipelineRequest(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testPipelineKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// createPortfolio creates a portfolio via the API and returns its ID.
func (app *testApp) createPortfolio(t *testing.T, name string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/portfolios", fmt.Sprintf(`{"name":%q}`, name))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create portfolio failed: %d %s", rec.Code, rec.Body.String())
	}
	portfolio := parseJSON(t, rec)["portfolio"].(map[string]interface{})
	return portfolio["id"].(string)
}

// buy records a purchase via the API and returns the holding.
func (app *testApp) buy(t *testing.T, portfolioID, symbol string, quantity float64, priceCents int64) map[string]interface{} {
	t.Helper()
	body := fmt.Sprintf(`{
		"symbol": %q,
		"name": "%s Inc",
		"quantity": %v,
		"price_per_unit": %d,
		"industry_code": "TECH",
		"security_type_code": "STOCK",
		"variance_tier_code": "LOW"
	}`, symbol, symbol, quantity, priceCents)
	rec := app.request("POST", "/api/v1/portfolios/"+portfolioID+"/holdings/buy", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("buy failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["holding"].(map[string]interface{})
}
