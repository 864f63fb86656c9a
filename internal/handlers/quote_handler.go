package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "folio/internal/errors"
	"folio/internal/pricing"
)

// QuoteHandler handles pipeline quote ingestion.
type QuoteHandler struct {
	pricingService *pricing.Service
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(pricingService *pricing.Service) *QuoteHandler {
	return &QuoteHandler{pricingService: pricingService}
}

// RecordQuotesRequest represents the request payload for bulk quote recording.
type RecordQuotesRequest struct {
	Quotes []RecordQuoteEntry `json:"quotes" binding:"required,min=1,dive"`
}

// RecordQuoteEntry represents a single quote entry in a bulk request.
type RecordQuoteEntry struct {
	SecurityID string    `json:"security_id" binding:"required,uuid"`
	Price      int64     `json:"price" binding:"required,gt=0"`
	Currency   string    `json:"currency" binding:"required,iso4217"`
	ObservedAt time.Time `json:"observed_at" binding:"required"`
}

// RecordQuotes handles bulk quote ingestion from the pipeline.
// @Summary     Record quotes
// @Description Bulk-append externally observed quotes, skipping duplicates (pipeline endpoint)
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body RecordQuotesRequest true "Quotes"
// @Success     201 {object} map[string]int "Count of recorded quotes"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/quotes [post]
func (h *QuoteHandler) RecordQuotes(c *gin.Context) {
	var req RecordQuotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	inputs := make([]pricing.QuoteInput, len(req.Quotes))
	for i, q := range req.Quotes {
		inputs[i] = pricing.QuoteInput{
			SecurityID: q.SecurityID,
			Price:      q.Price,
			Currency:   q.Currency,
			ObservedAt: q.ObservedAt,
		}
	}

	count, err := h.pricingService.RecordQuotes(inputs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recorded": count})
}
