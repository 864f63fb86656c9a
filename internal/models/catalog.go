package models

// CatalogCategory names one of the three reference catalog tables.
type CatalogCategory string

const (
	CategoryIndustry     CatalogCategory = "industry"
	CategorySecurityType CatalogCategory = "security_type"
	CategoryVarianceTier CatalogCategory = "variance_tier"
)

// Industry is reference data classifying securities by sector. Its coefficient
// is the baseline risk score for a typical stock in that industry.
type Industry struct {
	Base
	Code                string  `gorm:"not null;uniqueIndex" json:"code"`
	Name                string  `gorm:"not null" json:"name"`
	BaseRiskCoefficient float64 `gorm:"not null" json:"base_risk_coefficient"`
}

// SecurityType is reference data for the kind of instrument (stock, bond, ...).
// The anchor type "STOCK" carries multiplier 1.0.
type SecurityType struct {
	Base
	Code           string  `gorm:"not null;uniqueIndex" json:"code"`
	Name           string  `gorm:"not null" json:"name"`
	RiskMultiplier float64 `gorm:"not null" json:"risk_multiplier"`
}

// VarianceTier is reference data bucketing securities by price variance.
// The anchor tier "LOW" carries multiplier 1.0.
type VarianceTier struct {
	Base
	Code               string  `gorm:"not null;uniqueIndex" json:"code"`
	Name               string  `gorm:"not null" json:"name"`
	VarianceMultiplier float64 `gorm:"not null" json:"variance_multiplier"`
}

// CatalogEntry is the category-independent view of a catalog row returned by
// lookups. Coefficient holds whichever multiplier the category defines.
type CatalogEntry struct {
	Category    CatalogCategory `json:"category"`
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Coefficient float64         `json:"coefficient"`
}
