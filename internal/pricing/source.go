// Package pricing resolves current security prices from a prioritized chain
// of upstream quote sources, absorbing rate limits and transport failures so
// callers always receive a usable price.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
)

// Outcome classifies a quote attempt. The resolver only depends on this
// three-way split, never on the upstream wire format.
type Outcome int

const (
	// OutcomePrice means the source returned a usable price.
	OutcomePrice Outcome = iota
	// OutcomeRateLimited means the source explicitly signaled rate limiting.
	OutcomeRateLimited
	// OutcomeNoData covers everything else: transport errors, malformed
	// responses, and responses missing the price field.
	OutcomeNoData
)

// QuoteSource fetches the current quote for one symbol from one upstream.
type QuoteSource interface {
	// Name returns the source's display name for logging and tagging.
	Name() string

	// Quote fetches the current price in cents for the symbol. The error is
	// diagnostic only; callers branch on the Outcome.
	Quote(ctx context.Context, symbol string) (int64, Outcome, error)
}

// globalQuoteResponse is the upstream quote API response. The price lives in
// a nested object keyed by positional field names; a rate-limited request
// carries a top-level note instead.
type globalQuoteResponse struct {
	GlobalQuote map[string]string `json:"Global Quote"`
	Note        string            `json:"Note"`
	Information string            `json:"Information"`
}

const globalQuotePriceField = "05. price"

// httpQuoteSource fetches quotes from a GLOBAL_QUOTE-style HTTP API. The
// free tier rate-limits aggressively per credential, so each configured key
// becomes its own source in the resolver chain.
type httpQuoteSource struct {
	name       string
	httpClient *http.Client
	baseURL    string // overridable for tests
	apiKey     string
}

// NewHTTPQuoteSource creates a quote source bound to one API credential.
func NewHTTPQuoteSource(name string, httpClient *http.Client, baseURL, apiKey string) QuoteSource {
	return &httpQuoteSource{name: name, httpClient: httpClient, baseURL: baseURL, apiKey: apiKey}
}

// Name returns the source's display name.
func (s *httpQuoteSource) Name() string { return s.name }

// Quote fetches the current price for a symbol and classifies the response.
func (s *httpQuoteSource) Quote(ctx context.Context, symbol string) (int64, Outcome, error) {
	endpoint := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		s.baseURL, url.QueryEscape(symbol), url.QueryEscape(s.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, OutcomeNoData, fmt.Errorf("building request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, OutcomeNoData, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return 0, OutcomeRateLimited, fmt.Errorf("status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, OutcomeNoData, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var quoteResp globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
		return 0, OutcomeNoData, fmt.Errorf("decoding response: %w", err)
	}

	// Free-tier exhaustion arrives as HTTP 200 with an informational marker.
	if quoteResp.Note != "" || quoteResp.Information != "" {
		return 0, OutcomeRateLimited, fmt.Errorf("rate limited by upstream")
	}

	raw, ok := quoteResp.GlobalQuote[globalQuotePriceField]
	if !ok || raw == "" {
		return 0, OutcomeNoData, fmt.Errorf("no price field for %s", symbol)
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, OutcomeNoData, fmt.Errorf("parsing price %q: %w", raw, err)
	}
	if price <= 0 {
		return 0, OutcomeNoData, fmt.Errorf("non-positive price for %s", symbol)
	}

	return int64(math.Round(price * 100)), OutcomePrice, nil
}
