// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Quote resolution
	QuoteAPIURL    string
	QuoteAPIKeys   []string // ordered by preference; one source per credential
	QuoteTimeout   time.Duration
	QuotePacing    time.Duration
	QuoteCurrency  string
	FallbackPrices map[string]int64 // symbol -> price in display-currency cents
	DefaultPrice   int64            // sentinel in display-currency cents

	// Currency normalization applied at the pricing boundary
	DisplayCurrency string
	ConversionRate  float64

	// Pipeline
	PipelineAPIKey string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		QuoteAPIURL:     getEnv("QUOTE_API_URL", "https://www.alphavantage.co"),
		QuoteCurrency:   strings.ToUpper(getEnv("QUOTE_CURRENCY", "USD")),
		DisplayCurrency: strings.ToUpper(getEnv("DISPLAY_CURRENCY", "USD")),
		PipelineAPIKey:  os.Getenv("PIPELINE_API_KEY"),
	}

	config.QuoteAPIKeys = splitList(getEnv("QUOTE_API_KEYS", "demo"))

	timeout, err := parseDuration(os.Getenv("QUOTE_TIMEOUT"), 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTE_TIMEOUT: %w", err)
	}
	config.QuoteTimeout = timeout

	pacing, err := parseDuration(os.Getenv("QUOTE_PACING"), 200*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTE_PACING: %w", err)
	}
	config.QuotePacing = pacing

	rate, err := parseFloat(os.Getenv("CURRENCY_CONVERSION_RATE"), 1.0)
	if err != nil {
		return nil, fmt.Errorf("invalid CURRENCY_CONVERSION_RATE: %w", err)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("CURRENCY_CONVERSION_RATE must be positive, got %v", rate)
	}
	config.ConversionRate = rate

	fallbacks, err := parsePriceTable(os.Getenv("FALLBACK_PRICES"))
	if err != nil {
		return nil, fmt.Errorf("invalid FALLBACK_PRICES: %w", err)
	}
	config.FallbackPrices = fallbacks

	defaultPrice, err := parseCents(os.Getenv("DEFAULT_PRICE"), 10000)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_PRICE: %w", err)
	}
	config.DefaultPrice = defaultPrice

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList splits a comma-separated value, trimming blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseDuration(s string, defaultVal time.Duration) (time.Duration, error) {
	if s == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %v", d)
	}
	return d, nil
}

func parseFloat(s string, defaultVal float64) (float64, error) {
	if s == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseCents parses a decimal price string (e.g. "100.00") into cents.
func parseCents(s string, defaultVal int64) (int64, error) {
	if s == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, fmt.Errorf("must be positive, got %v", f)
	}
	return int64(f*100 + 0.5), nil
}

// parsePriceTable parses "SYM:price,SYM:price" pairs into a cents table.
func parsePriceTable(s string) (map[string]int64, error) {
	table := make(map[string]int64)
	if s == "" {
		return table, nil
	}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		symbol, priceStr, found := strings.Cut(pair, ":")
		if !found {
			return nil, fmt.Errorf("malformed entry %q: expected SYMBOL:PRICE", pair)
		}
		cents, err := parseCents(strings.TrimSpace(priceStr), 0)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", pair, err)
		}
		table[strings.ToUpper(strings.TrimSpace(symbol))] = cents
	}
	return table, nil
}
