package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "folio/internal/errors"
	"folio/internal/pagination"
	"folio/internal/pricing"
	"folio/internal/services"
)

// SecurityHandler handles security registry requests.
type SecurityHandler struct {
	registryService services.RegistryServicer
	riskService     services.RiskServicer
	pricingService  *pricing.Service
}

// NewSecurityHandler creates a new SecurityHandler.
func NewSecurityHandler(registryService services.RegistryServicer, riskService services.RiskServicer, pricingService *pricing.Service) *SecurityHandler {
	return &SecurityHandler{registryService: registryService, riskService: riskService, pricingService: pricingService}
}

// CreateSecurityRequest represents the request payload for registering a security.
type CreateSecurityRequest struct {
	Symbol           string `json:"symbol" binding:"required,symbol"`
	Name             string `json:"name" binding:"required,min=1,max=200"`
	IndustryCode     string `json:"industry_code" binding:"required,catalog_code"`
	SecurityTypeCode string `json:"security_type_code" binding:"required,catalog_code"`
	VarianceTierCode string `json:"variance_tier_code" binding:"required,catalog_code"`
	Currency         string `json:"currency" binding:"omitempty,iso4217"`
}

// CreateSecurity handles registering a new security with strict-create semantics.
// @Summary     Register security
// @Description Register a new security; an already-known symbol is rejected
// @Tags        securities
// @Accept      json
// @Produce     json
// @Param       request body CreateSecurityRequest true "Security details"
// @Success     201 {object} models.Security "Security created"
// @Failure     400 {object} ErrorResponse "Invalid input or catalog code"
// @Failure     409 {object} ErrorResponse "Duplicate symbol"
// @Router      /securities [post]
func (h *SecurityHandler) CreateSecurity(c *gin.Context) {
	var req CreateSecurityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	security, err := h.registryService.Register(services.RegisterInput{
		Symbol:           req.Symbol,
		Name:             req.Name,
		IndustryCode:     req.IndustryCode,
		SecurityTypeCode: req.SecurityTypeCode,
		VarianceTierCode: req.VarianceTierCode,
		Currency:         req.Currency,
		Strict:           true,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"security": security})
}

// ListSecurities handles listing registered securities.
// @Summary     List securities
// @Description Get a paginated list of securities, optionally filtered by search term
// @Tags        securities
// @Produce     json
// @Param       search    query string false "Search by symbol or name (case-insensitive)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Security] "Paginated securities"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /securities [get]
func (h *SecurityHandler) ListSecurities(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.registryService.List(c.Query("search"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSecurity handles retrieving a security by symbol.
// @Summary     Get security
// @Description Get a security and its catalog links by symbol
// @Tags        securities
// @Produce     json
// @Param       symbol path string true "Ticker symbol"
// @Success     200 {object} models.Security "Security"
// @Failure     404 {object} ErrorResponse "Security not found"
// @Router      /securities/{symbol} [get]
func (h *SecurityHandler) GetSecurity(c *gin.Context) {
	security, err := h.registryService.Find(c.Param("symbol"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, security)
}

// RiskResponse carries a security's computed risk score.
type RiskResponse struct {
	Symbol    string  `json:"symbol"`
	RiskScore float64 `json:"risk_score"`
	Scoreable bool    `json:"scoreable"`
}

// GetRisk handles computing the risk score of a security.
// @Summary     Get security risk score
// @Description Compute the multiplicative risk score from the security's catalog links
// @Tags        securities
// @Produce     json
// @Param       symbol path string true "Ticker symbol"
// @Success     200 {object} RiskResponse "Risk score"
// @Failure     404 {object} ErrorResponse "Security not found"
// @Router      /securities/{symbol}/risk [get]
func (h *SecurityHandler) GetRisk(c *gin.Context) {
	security, err := h.registryService.Find(c.Param("symbol"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, RiskResponse{
		Symbol:    security.Symbol,
		RiskScore: h.riskService.Score(security),
		Scoreable: services.Scoreable(security),
	})
}

// GetQuoteHistory handles listing a security's recorded quotes.
// @Summary     Get quote history
// @Description Get paginated quote history for a security within a date range, newest first
// @Tags        securities
// @Produce     json
// @Param       symbol    path  string true  "Ticker symbol"
// @Param       from      query string false "Range start (RFC3339, default 30 days ago)"
// @Param       to        query string false "Range end (RFC3339, default now)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.PriceQuote] "Paginated quotes"
// @Failure     404 {object} ErrorResponse "Security not found"
// @Router      /securities/{symbol}/quotes [get]
func (h *SecurityHandler) GetQuoteHistory(c *gin.Context) {
	security, err := h.registryService.Find(c.Param("symbol"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	page.Defaults()

	now := time.Now().UTC()
	from, err := parseTimeQuery(c, "from", now.AddDate(0, 0, -30))
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := parseTimeQuery(c, "to", now)
	if err != nil {
		respondWithError(c, err)
		return
	}

	quotes, totalItems, err := h.pricingService.History(security.ID, from, to, page.PageSize, page.Offset())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.NewPageResponse(quotes, page.Page, page.PageSize, totalItems))
}

// parseTimeQuery parses an RFC3339 query parameter with a default.
func parseTimeQuery(c *gin.Context, name string, defaultVal time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return defaultVal, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+name+" timestamp")
	}
	return parsed, nil
}
