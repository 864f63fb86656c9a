package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "folio/internal/errors"
	"folio/internal/models"
)

// catalogService handles reference catalog lookups and seeding.
type catalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new CatalogServicer.
func NewCatalogService(db *gorm.DB) CatalogServicer {
	return &catalogService{db: db}
}

// Get returns the catalog entry for a code within a category.
// An unknown code is a data-integrity defect for callers, not a user error.
func (s *catalogService) Get(category models.CatalogCategory, code string) (*models.CatalogEntry, error) {
	switch category {
	case models.CategoryIndustry:
		var row models.Industry
		if err := s.db.Where("code = ?", code).First(&row).Error; err != nil {
			return nil, catalogLookupError(err)
		}
		return &models.CatalogEntry{Category: category, ID: row.ID, Code: row.Code, Name: row.Name, Coefficient: row.BaseRiskCoefficient}, nil
	case models.CategorySecurityType:
		var row models.SecurityType
		if err := s.db.Where("code = ?", code).First(&row).Error; err != nil {
			return nil, catalogLookupError(err)
		}
		return &models.CatalogEntry{Category: category, ID: row.ID, Code: row.Code, Name: row.Name, Coefficient: row.RiskMultiplier}, nil
	case models.CategoryVarianceTier:
		var row models.VarianceTier
		if err := s.db.Where("code = ?", code).First(&row).Error; err != nil {
			return nil, catalogLookupError(err)
		}
		return &models.CatalogEntry{Category: category, ID: row.ID, Code: row.Code, Name: row.Name, Coefficient: row.VarianceMultiplier}, nil
	default:
		return nil, apperrors.WithMessage(apperrors.ErrUnknownCategory, "Unknown catalog category: "+string(category))
	}
}

// All returns every entry of a category ordered by code.
func (s *catalogService) All(category models.CatalogCategory) ([]models.CatalogEntry, error) {
	entries := []models.CatalogEntry{}

	switch category {
	case models.CategoryIndustry:
		var rows []models.Industry
		if err := s.db.Order("code ASC").Find(&rows).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, row := range rows {
			entries = append(entries, models.CatalogEntry{Category: category, ID: row.ID, Code: row.Code, Name: row.Name, Coefficient: row.BaseRiskCoefficient})
		}
	case models.CategorySecurityType:
		var rows []models.SecurityType
		if err := s.db.Order("code ASC").Find(&rows).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, row := range rows {
			entries = append(entries, models.CatalogEntry{Category: category, ID: row.ID, Code: row.Code, Name: row.Name, Coefficient: row.RiskMultiplier})
		}
	case models.CategoryVarianceTier:
		var rows []models.VarianceTier
		if err := s.db.Order("code ASC").Find(&rows).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, row := range rows {
			entries = append(entries, models.CatalogEntry{Category: category, ID: row.ID, Code: row.Code, Name: row.Name, Coefficient: row.VarianceMultiplier})
		}
	default:
		return nil, apperrors.WithMessage(apperrors.ErrUnknownCategory, "Unknown catalog category: "+string(category))
	}

	return entries, nil
}

// defaultIndustries is the seed set. The coefficient is the baseline score
// for a typical stock in the industry.
var defaultIndustries = []models.Industry{
	{Code: "TECH", Name: "Technology", BaseRiskCoefficient: 6.0},
	{Code: "FIN", Name: "Financials", BaseRiskCoefficient: 4.0},
	{Code: "HEALTH", Name: "Healthcare", BaseRiskCoefficient: 3.0},
	{Code: "ENERGY", Name: "Energy", BaseRiskCoefficient: 5.0},
	{Code: "UTIL", Name: "Utilities", BaseRiskCoefficient: 2.0},
	{Code: "CONS", Name: "Consumer Goods", BaseRiskCoefficient: 2.5},
}

// defaultSecurityTypes anchors common stock at multiplier 1.0.
var defaultSecurityTypes = []models.SecurityType{
	{Code: "STOCK", Name: "Common Stock", RiskMultiplier: 1.0},
	{Code: "PREF", Name: "Preferred Stock", RiskMultiplier: 0.8},
	{Code: "BOND", Name: "Bond", RiskMultiplier: 0.5},
}

// defaultVarianceTiers anchors the low tier at multiplier 1.0.
var defaultVarianceTiers = []models.VarianceTier{
	{Code: "LOW", Name: "Low Variance", VarianceMultiplier: 1.0},
	{Code: "MEDIUM", Name: "Medium Variance", VarianceMultiplier: 1.5},
	{Code: "HIGH", Name: "High Variance", VarianceMultiplier: 2.0},
}

// SeedIfEmpty populates each catalog table with its default set when the
// table has no rows. Re-running never duplicates rows or resets coefficients
// that were customized after seeding.
func (s *catalogService) SeedIfEmpty() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64

		if err := tx.Model(&models.Industry{}).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			rows := make([]models.Industry, len(defaultIndustries))
			copy(rows, defaultIndustries)
			if err := tx.Create(&rows).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Model(&models.SecurityType{}).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			rows := make([]models.SecurityType, len(defaultSecurityTypes))
			copy(rows, defaultSecurityTypes)
			if err := tx.Create(&rows).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Model(&models.VarianceTier{}).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			rows := make([]models.VarianceTier, len(defaultVarianceTiers))
			copy(rows, defaultVarianceTiers)
			if err := tx.Create(&rows).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		return nil
	})
}

// catalogLookupError maps a GORM lookup failure onto the catalog taxonomy.
func catalogLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrCatalogEntryNotFound
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// ValidCategory reports whether the category names one of the catalog tables.
func ValidCategory(category models.CatalogCategory) bool {
	switch category {
	case models.CategoryIndustry, models.CategorySecurityType, models.CategoryVarianceTier:
		return true
	default:
		return false
	}
}
