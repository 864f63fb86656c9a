package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "folio/internal/errors"
	"folio/internal/pagination"
	"folio/internal/services"
)

// PortfolioHandler handles portfolio and holding requests.
type PortfolioHandler struct {
	ledgerService services.LedgerServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(ledgerService services.LedgerServicer) *PortfolioHandler {
	return &PortfolioHandler{ledgerService: ledgerService}
}

// CreatePortfolioRequest represents the request payload for creating a portfolio.
type CreatePortfolioRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=100"`
	BaseCurrency string `json:"base_currency" binding:"omitempty,iso4217"`
}

// CreatePortfolio handles creating a new portfolio.
// @Summary     Create portfolio
// @Description Create a new, empty portfolio
// @Tags        portfolios
// @Accept      json
// @Produce     json
// @Param       request body CreatePortfolioRequest true "Portfolio details"
// @Success     201 {object} models.Portfolio "Portfolio created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /portfolios [post]
func (h *PortfolioHandler) CreatePortfolio(c *gin.Context) {
	var req CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	portfolio, err := h.ledgerService.CreatePortfolio(req.Name, req.BaseCurrency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"portfolio": portfolio})
}

// ListPortfolios handles listing portfolios.
// @Summary     List portfolios
// @Description Get a paginated list of portfolios
// @Tags        portfolios
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Portfolio] "Paginated portfolios"
// @Router      /portfolios [get]
func (h *PortfolioHandler) ListPortfolios(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.ledgerService.ListPortfolios(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPortfolio handles retrieving a portfolio by ID.
// @Summary     Get portfolio
// @Description Get a portfolio by ID
// @Tags        portfolios
// @Produce     json
// @Param       id path string true "Portfolio ID"
// @Success     200 {object} models.Portfolio "Portfolio"
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id} [get]
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	portfolio, err := h.ledgerService.GetPortfolio(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

// BuyRequest represents the request payload for a purchase. Classification
// codes are required on the first purchase of an unseen symbol and ignored on
// repeat purchases.
type BuyRequest struct {
	Symbol           string  `json:"symbol" binding:"required,symbol"`
	Name             string  `json:"name" binding:"required,min=1,max=200"`
	Quantity         float64 `json:"quantity" binding:"required,gt=0"`
	PricePerUnit     int64   `json:"price_per_unit" binding:"required,gt=0"`
	IndustryCode     string  `json:"industry_code" binding:"required,catalog_code"`
	SecurityTypeCode string  `json:"security_type_code" binding:"required,catalog_code"`
	VarianceTierCode string  `json:"variance_tier_code" binding:"required,catalog_code"`
	Currency         string  `json:"currency" binding:"omitempty,iso4217"`
}

// Buy handles recording a purchase.
// @Summary     Buy
// @Description Record a purchase, registering the security on first sight and updating the weighted-average cost basis
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Param       id      path string     true "Portfolio ID"
// @Param       request body BuyRequest true "Purchase details"
// @Success     201 {object} models.Holding "Updated holding"
// @Failure     400 {object} ErrorResponse "Invalid input or catalog code"
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id}/holdings/buy [post]
func (h *PortfolioHandler) Buy(c *gin.Context) {
	var req BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	holding, err := h.ledgerService.Buy(c.Param("id"), services.BuyOrder{
		Symbol:           req.Symbol,
		Name:             req.Name,
		Quantity:         req.Quantity,
		PricePerUnit:     req.PricePerUnit,
		IndustryCode:     req.IndustryCode,
		SecurityTypeCode: req.SecurityTypeCode,
		VarianceTierCode: req.VarianceTierCode,
		Currency:         req.Currency,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"holding": holding})
}

// SellAll handles disposing of an entire position.
// @Summary     Sell all
// @Description Remove the portfolio's entire position in a symbol
// @Tags        holdings
// @Produce     json
// @Param       id     path string true "Portfolio ID"
// @Param       symbol path string true "Ticker symbol"
// @Success     200 {object} map[string]string "Position removed"
// @Failure     404 {object} ErrorResponse "Portfolio or holding not found"
// @Router      /portfolios/{id}/holdings/{symbol} [delete]
func (h *PortfolioHandler) SellAll(c *gin.Context) {
	if err := h.ledgerService.SellAll(c.Param("id"), c.Param("symbol")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Position removed"})
}

// ListHoldings handles listing a portfolio's holdings.
// @Summary     List holdings
// @Description Get a paginated list of the portfolio's holdings
// @Tags        holdings
// @Produce     json
// @Param       id        path  string true "Portfolio ID"
// @Param       page      query int   false "Page number (default 1)"
// @Param       page_size query int   false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Holding] "Paginated holdings"
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id}/holdings [get]
func (h *PortfolioHandler) ListHoldings(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.ledgerService.Holdings(c.Param("id"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Snapshot handles computing a portfolio valuation snapshot.
// @Summary     Portfolio snapshot
// @Description Value every holding at its resolved current price and aggregate totals and risk exposure
// @Tags        portfolios
// @Produce     json
// @Param       id path string true "Portfolio ID"
// @Success     200 {object} services.PortfolioSnapshot "Snapshot"
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id}/snapshot [get]
func (h *PortfolioHandler) Snapshot(c *gin.Context) {
	snapshot, err := h.ledgerService.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ListTransactions handles listing the audit history of a holding.
// @Summary     List holding transactions
// @Description Get the paginated audit history of a holding, newest first
// @Tags        holdings
// @Produce     json
// @Param       holdingID path  string true "Holding ID"
// @Param       page      query int   false "Page number (default 1)"
// @Param       page_size query int   false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.HoldingTransaction] "Paginated transactions"
// @Router      /holdings/{holdingID}/transactions [get]
func (h *PortfolioHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.ledgerService.Transactions(c.Param("holdingID"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
