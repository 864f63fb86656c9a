package services

import (
	"context"
	"time"

	"folio/internal/models"
	"folio/internal/pagination"
	"folio/internal/pricing"
)

// CatalogServicer defines the contract for reference catalog lookups.
type CatalogServicer interface {
	Get(category models.CatalogCategory, code string) (*models.CatalogEntry, error)
	All(category models.CatalogCategory) ([]models.CatalogEntry, error)
	SeedIfEmpty() error
}

// RegisterInput holds the parameters for registering a security.
// The three catalog codes classify the instrument and must all resolve.
type RegisterInput struct {
	Symbol           string
	Name             string
	IndustryCode     string
	SecurityTypeCode string
	VarianceTierCode string
	Currency         string
	// Strict rejects an already-known symbol instead of returning it.
	Strict bool
}

// RegistryServicer defines the contract for the security registry.
type RegistryServicer interface {
	Register(input RegisterInput) (*models.Security, error)
	Find(symbol string) (*models.Security, error)
	GetByID(id string) (*models.Security, error)
	List(search string, page pagination.PageRequest) (*pagination.PageResponse[models.Security], error)
}

// RiskServicer defines the contract for the risk scoring engine.
type RiskServicer interface {
	Score(security *models.Security) float64
}

// PriceResolver resolves a current price for a security and records the
// resulting quote. It never fails: the returned resolution always carries a
// usable price, differentiated only by its source tag.
type PriceResolver interface {
	Resolve(ctx context.Context, securityID, symbol string) pricing.Resolution
}

// BuyOrder holds the parameters for a purchase. The catalog codes are only
// consulted when the symbol has never been seen before.
type BuyOrder struct {
	Symbol           string
	Name             string
	Quantity         float64
	PricePerUnit     int64 // cents
	IndustryCode     string
	SecurityTypeCode string
	VarianceTierCode string
	Currency         string
}

// HoldingPosition is one valued, scored holding inside a snapshot.
type HoldingPosition struct {
	Security     models.Security       `json:"security"`
	Quantity     float64               `json:"quantity"`
	CurrentPrice int64                 `json:"current_price"`
	PriceSource  models.QuoteSourceTag `json:"price_source"`
	Value        int64                 `json:"value"`
	CostBasis    int64                 `json:"cost_basis"`
	GainLoss     int64                 `json:"gain_loss"`
	RiskScore    float64               `json:"risk_score"`
}

// PortfolioSnapshot is the derived, never-persisted valuation of a portfolio.
// TotalRiskExposure is the value-weighted average risk score.
type PortfolioSnapshot struct {
	PortfolioID       string            `json:"portfolio_id"`
	Holdings          []HoldingPosition `json:"holdings"`
	TotalValue        int64             `json:"total_value"`
	TotalCostBasis    int64             `json:"total_cost_basis"`
	TotalGainLoss     int64             `json:"total_gain_loss"`
	TotalRiskExposure float64           `json:"total_risk_exposure"`
	GeneratedAt       time.Time         `json:"generated_at"`
}

// LedgerServicer defines the contract for the holding ledger.
type LedgerServicer interface {
	CreatePortfolio(name, baseCurrency string) (*models.Portfolio, error)
	GetPortfolio(id string) (*models.Portfolio, error)
	ListPortfolios(page pagination.PageRequest) (*pagination.PageResponse[models.Portfolio], error)
	Buy(portfolioID string, order BuyOrder) (*models.Holding, error)
	SellAll(portfolioID, symbol string) error
	Holdings(portfolioID string, page pagination.PageRequest) (*pagination.PageResponse[models.Holding], error)
	Transactions(holdingID string, page pagination.PageRequest) (*pagination.PageResponse[models.HoldingTransaction], error)
	Snapshot(ctx context.Context, portfolioID string) (*PortfolioSnapshot, error)
}
