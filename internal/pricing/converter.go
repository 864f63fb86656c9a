package pricing

import (
	"math"
	"strings"
)

// RateConverter applies a fixed multiplicative conversion from the quote
// currency to the display currency at the pricing boundary: after the raw
// price is obtained, before it is returned.
type RateConverter struct {
	fromCurrency string
	toCurrency   string
	rate         float64
}

// NewRateConverter creates a converter with a fixed configured rate
// (1 fromCurrency = rate toCurrency).
func NewRateConverter(fromCurrency, toCurrency string, rate float64) *RateConverter {
	return &RateConverter{
		fromCurrency: strings.ToUpper(fromCurrency),
		toCurrency:   strings.ToUpper(toCurrency),
		rate:         rate,
	}
}

// TargetCurrency returns the display currency code.
func (c *RateConverter) TargetCurrency() string { return c.toCurrency }

// NeedsConversion returns true if quote and display currencies differ.
func (c *RateConverter) NeedsConversion() bool {
	return c.fromCurrency != c.toCurrency && c.rate > 0
}

// Convert converts a price in quote-currency cents to display-currency cents.
func (c *RateConverter) Convert(priceCents int64) int64 {
	if !c.NeedsConversion() {
		return priceCents
	}
	return int64(math.Round(float64(priceCents) * c.rate))
}
