// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"folio/internal/models"
)

// symbolRegex matches ticker-style symbols: uppercase letters, digits, dots
// and dashes, starting with a letter.
var symbolRegex = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,19}$`)

// catalogCodeRegex matches catalog entry codes such as TECH or SECURITY_TYPE codes.
var catalogCodeRegex = regexp.MustCompile(`^[A-Z][A-Z0-9_]{0,31}$`)

// validCurrencies contains the ISO 4217 codes accepted for quotes and portfolios.
var validCurrencies = map[string]bool{
	"AUD": true, "BRL": true, "CAD": true, "CHF": true, "CNY": true,
	"EUR": true, "GBP": true, "HKD": true, "IDR": true, "INR": true,
	"JPY": true, "KRW": true, "MXN": true, "MYR": true, "NOK": true,
	"NZD": true, "PHP": true, "PLN": true, "SEK": true, "SGD": true,
	"THB": true, "TRY": true, "TWD": true, "USD": true, "VND": true,
	"ZAR": true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("iso4217", validateISO4217)
		_ = v.RegisterValidation("symbol", validateSymbol)
		_ = v.RegisterValidation("catalog_code", validateCatalogCode)
		_ = v.RegisterValidation("catalog_category", validateCatalogCategory)
	}
}

func validateISO4217(fl validator.FieldLevel) bool {
	return validCurrencies[fl.Field().String()]
}

func validateSymbol(fl validator.FieldLevel) bool {
	return symbolRegex.MatchString(fl.Field().String())
}

func validateCatalogCode(fl validator.FieldLevel) bool {
	return catalogCodeRegex.MatchString(fl.Field().String())
}

func validateCatalogCategory(fl validator.FieldLevel) bool {
	switch models.CatalogCategory(fl.Field().String()) {
	case models.CategoryIndustry, models.CategorySecurityType, models.CategoryVarianceTier:
		return true
	default:
		return false
	}
}
