package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	apperrors "folio/internal/errors"
	"folio/internal/logger"
	"folio/internal/models"
	"folio/internal/pagination"
)

// ledgerService handles portfolio holdings: purchases, disposals, and
// on-demand valuation snapshots.
type ledgerService struct {
	db       *gorm.DB
	registry RegistryServicer
	risk     RiskServicer
	resolver PriceResolver

	// One writer at a time per portfolio; holdings of different portfolios
	// never contend.
	locks sync.Map // portfolio ID -> *sync.Mutex
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB, registry RegistryServicer, risk RiskServicer, resolver PriceResolver) LedgerServicer {
	return &ledgerService{db: db, registry: registry, risk: risk, resolver: resolver}
}

func (s *ledgerService) portfolioLock(portfolioID string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(portfolioID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// CreatePortfolio creates a new, empty portfolio.
func (s *ledgerService) CreatePortfolio(name, baseCurrency string) (*models.Portfolio, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}
	if baseCurrency == "" {
		baseCurrency = "USD"
	}

	portfolio := &models.Portfolio{Name: name, BaseCurrency: strings.ToUpper(baseCurrency)}
	if err := s.db.Create(portfolio).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return portfolio, nil
}

// GetPortfolio returns a portfolio by ID.
func (s *ledgerService) GetPortfolio(id string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := s.db.Where("id = ?", id).First(&portfolio).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPortfolioNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &portfolio, nil
}

// ListPortfolios returns a paginated list of portfolios ordered by name.
func (s *ledgerService) ListPortfolios(page pagination.PageRequest) (*pagination.PageResponse[models.Portfolio], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Portfolio{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var portfolios []models.Portfolio
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&portfolios).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(portfolios, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// Buy records a purchase. An unseen symbol is registered first using the
// order's classification codes; this is the only place classification
// enters the system. A repeat purchase updates the holding with a
// quantity-weighted average cost basis and every purchase appends a buy
// record to the audit trail.
func (s *ledgerService) Buy(portfolioID string, order BuyOrder) (*models.Holding, error) {
	if order.Quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity must be positive")
	}
	if order.PricePerUnit <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Price must be positive")
	}

	if _, err := s.GetPortfolio(portfolioID); err != nil {
		return nil, err
	}

	security, err := s.registry.Register(RegisterInput{
		Symbol:           order.Symbol,
		Name:             order.Name,
		IndustryCode:     order.IndustryCode,
		SecurityTypeCode: order.SecurityTypeCode,
		VarianceTierCode: order.VarianceTierCode,
		Currency:         order.Currency,
	})
	if err != nil {
		return nil, err
	}

	lock := s.portfolioLock(portfolioID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()
	var holding models.Holding

	err = s.db.Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("portfolio_id = ? AND security_id = ?", portfolioID, security.ID).
			First(&holding).Error
		switch {
		case findErr == nil:
			newQuantity := holding.Quantity + order.Quantity
			newAvg := weightedAverage(holding.Quantity, holding.AvgPurchasePrice, order.Quantity, order.PricePerUnit)
			if txErr := tx.Model(&holding).Updates(map[string]interface{}{
				"quantity":           newQuantity,
				"avg_purchase_price": newAvg,
			}).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
			holding.Quantity = newQuantity
			holding.AvgPurchasePrice = newAvg
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			holding = models.Holding{
				PortfolioID:      portfolioID,
				SecurityID:       security.ID,
				Quantity:         order.Quantity,
				AvgPurchasePrice: order.PricePerUnit,
				FirstPurchaseAt:  now,
			}
			if txErr := tx.Create(&holding).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
		default:
			return apperrors.Wrap(apperrors.ErrInternalServer, findErr)
		}

		record := models.HoldingTransaction{
			HoldingID:    holding.ID,
			Type:         models.HoldingTransactionBuy,
			Date:         now,
			Quantity:     order.Quantity,
			PricePerUnit: order.PricePerUnit,
			TotalAmount:  int64(math.Round(order.Quantity * float64(order.PricePerUnit))),
		}
		if txErr := tx.Create(&record).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	holding.Security = *security
	return &holding, nil
}

// SellAll disposes of the entire position in a symbol. Partial sells are not
// supported; disposal always removes the holding. A symbol that is not held
// is reported as not found without touching ledger state.
func (s *ledgerService) SellAll(portfolioID, symbol string) error {
	if _, err := s.GetPortfolio(portfolioID); err != nil {
		return err
	}

	security, err := s.registry.Find(symbol)
	if err != nil {
		if errors.Is(err, apperrors.ErrSecurityNotFound) {
			return apperrors.ErrHoldingNotFound
		}
		return err
	}

	lock := s.portfolioLock(portfolioID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var holding models.Holding
		findErr := tx.Where("portfolio_id = ? AND security_id = ?", portfolioID, security.ID).
			First(&holding).Error
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperrors.ErrHoldingNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, findErr)
		}

		record := models.HoldingTransaction{
			HoldingID:    holding.ID,
			Type:         models.HoldingTransactionSellAll,
			Date:         time.Now().UTC(),
			Quantity:     holding.Quantity,
			PricePerUnit: holding.AvgPurchasePrice,
			TotalAmount:  int64(math.Round(holding.Quantity * float64(holding.AvgPurchasePrice))),
		}
		if txErr := tx.Create(&record).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		// Hard delete so the (portfolio, security) slot is free for a re-buy.
		// The audit trail keeps the full history.
		if txErr := tx.Unscoped().Delete(&holding).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		return nil
	})
}

// Holdings returns a paginated list of a portfolio's holdings with securities
// and catalog links preloaded.
func (s *ledgerService) Holdings(portfolioID string, page pagination.PageRequest) (*pagination.PageResponse[models.Holding], error) {
	if _, err := s.GetPortfolio(portfolioID); err != nil {
		return nil, err
	}

	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Holding{}).Where("portfolio_id = ?", portfolioID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var holdings []models.Holding
	if err := s.db.Preload("Security").
		Preload("Security.Industry").Preload("Security.SecurityType").Preload("Security.VarianceTier").
		Where("portfolio_id = ?", portfolioID).
		Scopes(pagination.Paginate(page)).Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(holdings, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// Transactions returns the paginated audit history of one holding.
func (s *ledgerService) Transactions(holdingID string, page pagination.PageRequest) (*pagination.PageResponse[models.HoldingTransaction], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.HoldingTransaction{}).Where("holding_id = ?", holdingID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.HoldingTransaction
	if err := base.Order("date DESC").Scopes(pagination.Paginate(page)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// Snapshot values every holding at its resolved current price and aggregates
// portfolio totals. Resolution is sequential and the result is derived on
// demand, never persisted. TotalRiskExposure is the value-weighted average
// risk score; an empty or zero-value portfolio has exposure 0.0.
func (s *ledgerService) Snapshot(ctx context.Context, portfolioID string) (*PortfolioSnapshot, error) {
	if _, err := s.GetPortfolio(portfolioID); err != nil {
		return nil, err
	}

	var holdings []models.Holding
	if err := s.db.Preload("Security").
		Preload("Security.Industry").Preload("Security.SecurityType").Preload("Security.VarianceTier").
		Where("portfolio_id = ?", portfolioID).Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	snapshot := &PortfolioSnapshot{
		PortfolioID: portfolioID,
		Holdings:    make([]HoldingPosition, 0, len(holdings)),
		GeneratedAt: time.Now().UTC(),
	}

	var weightedRisk float64

	for i := range holdings {
		holding := &holdings[i]
		price, source := s.currentPrice(ctx, holding)

		score := s.risk.Score(&holding.Security)
		if !Scoreable(&holding.Security) {
			logger.Get().Warnw("security has dangling catalog reference, scoring 0.0",
				"symbol", holding.Security.Symbol,
				"security_id", holding.SecurityID,
			)
		}

		value := int64(math.Round(holding.Quantity * float64(price)))
		costBasis := int64(math.Round(holding.Quantity * float64(holding.AvgPurchasePrice)))

		snapshot.Holdings = append(snapshot.Holdings, HoldingPosition{
			Security:     holding.Security,
			Quantity:     holding.Quantity,
			CurrentPrice: price,
			PriceSource:  source,
			Value:        value,
			CostBasis:    costBasis,
			GainLoss:     value - costBasis,
			RiskScore:    score,
		})

		snapshot.TotalValue += value
		snapshot.TotalCostBasis += costBasis
		weightedRisk += float64(value) * score
	}

	snapshot.TotalGainLoss = snapshot.TotalValue - snapshot.TotalCostBasis
	if snapshot.TotalValue > 0 {
		snapshot.TotalRiskExposure = weightedRisk / float64(snapshot.TotalValue)
	}

	return snapshot, nil
}

// currentPrice resolves a holding's valuation price. The resolver contract
// guarantees a usable price; the average purchase price only backs the case
// where no resolver is wired at all.
func (s *ledgerService) currentPrice(ctx context.Context, holding *models.Holding) (int64, models.QuoteSourceTag) {
	if s.resolver == nil {
		return holding.AvgPurchasePrice, models.QuoteSourceCostBasis
	}
	res := s.resolver.Resolve(ctx, holding.SecurityID, holding.Security.Symbol)
	return res.Price, res.Source
}

// weightedAverage computes the quantity-weighted mean purchase price in cents.
func weightedAverage(oldQty float64, oldAvg int64, addQty float64, addPrice int64) int64 {
	total := oldQty*float64(oldAvg) + addQty*float64(addPrice)
	return int64(math.Round(total / (oldQty + addQty)))
}
