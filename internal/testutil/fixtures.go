package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"folio/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// SeedTestCatalog creates the catalog rows most tests need: one industry,
// one security type at the anchor multiplier, and one variance tier.
func SeedTestCatalog(t *testing.T, db *gorm.DB) (models.Industry, models.SecurityType, models.VarianceTier) {
	t.Helper()

	industry := CreateTestIndustry(t, db, "TECH", 6.0)
	secType := CreateTestSecurityType(t, db, "STOCK", 1.0)
	tier := CreateTestVarianceTier(t, db, "LOW", 1.0)
	return industry, secType, tier
}

// CreateTestIndustry creates an industry with the given code and coefficient.
func CreateTestIndustry(t *testing.T, db *gorm.DB, code string, coefficient float64) models.Industry {
	t.Helper()

	industry := models.Industry{Code: code, Name: code + " industry", BaseRiskCoefficient: coefficient}
	if err := db.Create(&industry).Error; err != nil {
		t.Fatalf("failed to create test industry: %v", err)
	}
	return industry
}

// CreateTestSecurityType creates a security type with the given code and multiplier.
func CreateTestSecurityType(t *testing.T, db *gorm.DB, code string, multiplier float64) models.SecurityType {
	t.Helper()

	secType := models.SecurityType{Code: code, Name: code + " type", RiskMultiplier: multiplier}
	if err := db.Create(&secType).Error; err != nil {
		t.Fatalf("failed to create test security type: %v", err)
	}
	return secType
}

// CreateTestVarianceTier creates a variance tier with the given code and multiplier.
func CreateTestVarianceTier(t *testing.T, db *gorm.DB, code string, multiplier float64) models.VarianceTier {
	t.Helper()

	tier := models.VarianceTier{Code: code, Name: code + " tier", VarianceMultiplier: multiplier}
	if err := db.Create(&tier).Error; err != nil {
		t.Fatalf("failed to create test variance tier: %v", err)
	}
	return tier
}

// CreateTestSecurity creates a security linked to the given catalog rows.
func CreateTestSecurity(t *testing.T, db *gorm.DB, symbol string, industry models.Industry, secType models.SecurityType, tier models.VarianceTier) *models.Security {
	t.Helper()

	security := &models.Security{
		Symbol:         symbol,
		Name:           symbol + " Inc",
		IndustryID:     industry.ID,
		SecurityTypeID: secType.ID,
		VarianceTierID: tier.ID,
		Currency:       "USD",
	}
	if err := db.Create(security).Error; err != nil {
		t.Fatalf("failed to create test security: %v", err)
	}
	security.Industry = industry
	security.SecurityType = secType
	security.VarianceTier = tier
	return security
}

// CreateTestPortfolio creates a portfolio with a unique name.
func CreateTestPortfolio(t *testing.T, db *gorm.DB) *models.Portfolio {
	t.Helper()

	portfolio := &models.Portfolio{
		Name:         fmt.Sprintf("Test Portfolio %d", nextID()),
		BaseCurrency: "USD",
	}
	if err := db.Create(portfolio).Error; err != nil {
		t.Fatalf("failed to create test portfolio: %v", err)
	}
	return portfolio
}

// CreateTestHolding creates a holding for the given portfolio and security.
func CreateTestHolding(t *testing.T, db *gorm.DB, portfolioID, securityID string, quantity float64, avgPrice int64) *models.Holding {
	t.Helper()

	holding := &models.Holding{
		PortfolioID:      portfolioID,
		SecurityID:       securityID,
		Quantity:         quantity,
		AvgPurchasePrice: avgPrice,
		FirstPurchaseAt:  time.Now().UTC(),
	}
	if err := db.Create(holding).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return holding
}

// CreateTestQuote appends a price quote for a security.
func CreateTestQuote(t *testing.T, db *gorm.DB, securityID string, price int64, observedAt time.Time) *models.PriceQuote {
	t.Helper()

	quote := &models.PriceQuote{
		SecurityID: securityID,
		Price:      price,
		Currency:   "USD",
		Source:     models.QuoteSourceLive,
		ObservedAt: observedAt,
	}
	if err := db.Create(quote).Error; err != nil {
		t.Fatalf("failed to create test quote: %v", err)
	}
	return quote
}
