package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"folio/internal/models"
	"folio/internal/services"
)

// CatalogHandler handles reference catalog requests.
type CatalogHandler struct {
	catalogService services.CatalogServicer
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService services.CatalogServicer) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListEntries handles listing all entries of a catalog category.
// @Summary     List catalog entries
// @Description Get all entries of a catalog category ordered by code
// @Tags        catalog
// @Produce     json
// @Param       category path string true "Catalog category" Enums(industry, security_type, variance_tier)
// @Success     200 {object} map[string][]models.CatalogEntry "Catalog entries"
// @Failure     400 {object} ErrorResponse "Unknown category"
// @Router      /catalog/{category} [get]
func (h *CatalogHandler) ListEntries(c *gin.Context) {
	category := models.CatalogCategory(c.Param("category"))

	entries, err := h.catalogService.All(category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// GetEntry handles retrieving one catalog entry by category and code.
// @Summary     Get catalog entry
// @Description Get a single catalog entry by category and code
// @Tags        catalog
// @Produce     json
// @Param       category path string true "Catalog category" Enums(industry, security_type, variance_tier)
// @Param       code     path string true "Entry code"
// @Success     200 {object} models.CatalogEntry "Catalog entry"
// @Failure     400 {object} ErrorResponse "Unknown category"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Router      /catalog/{category}/{code} [get]
func (h *CatalogHandler) GetEntry(c *gin.Context) {
	category := models.CatalogCategory(c.Param("category"))
	code := c.Param("code")

	entry, err := h.catalogService.Get(category, code)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}
