package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// quoteJSON builds a GLOBAL_QUOTE response body carrying one price.
func quoteJSON(symbol, price string) map[string]interface{} {
	return map[string]interface{}{
		"Global Quote": map[string]string{
			"01. symbol": symbol,
			"05. price":  price,
		},
	}
}

// newQuoteServer serves a fixed JSON body for every request.
func newQuoteServer(t *testing.T, status int, body interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}))
}

func TestHTTPQuoteSource_Quote(t *testing.T) {
	t.Run("price", func(t *testing.T) {
		server := newQuoteServer(t, http.StatusOK, quoteJSON("AAPL", "123.45"))
		defer server.Close()

		source := NewHTTPQuoteSource("test", server.Client(), server.URL, "key")
		price, outcome, err := source.Quote(context.Background(), "AAPL")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome != OutcomePrice {
			t.Fatalf("expected OutcomePrice, got %v", outcome)
		}
		if price != 12345 {
			t.Errorf("expected 12345 cents, got %d", price)
		}
	})

	t.Run("rounds_sub_cent_prices", func(t *testing.T) {
		server := newQuoteServer(t, http.StatusOK, quoteJSON("AAPL", "123.456"))
		defer server.Close()

		source := NewHTTPQuoteSource("test", server.Client(), server.URL, "key")
		price, outcome, _ := source.Quote(context.Background(), "AAPL")

		if outcome != OutcomePrice || price != 12346 {
			t.Errorf("expected 12346 cents, got %d (outcome %v)", price, outcome)
		}
	})

	t.Run("rate_limited_note", func(t *testing.T) {
		body := map[string]string{
			"Note": "Thank you for using our API! Our standard API rate limit is 25 requests per day.",
		}
		server := newQuoteServer(t, http.StatusOK, body)
		defer server.Close()

		source := NewHTTPQuoteSource("test", server.Client(), server.URL, "key")
		_, outcome, err := source.Quote(context.Background(), "AAPL")

		if outcome != OutcomeRateLimited {
			t.Fatalf("expected OutcomeRateLimited, got %v", outcome)
		}
		if err == nil {
			t.Error("expected diagnostic error alongside rate-limit outcome")
		}
	})

	t.Run("rate_limited_information", func(t *testing.T) {
		body := map[string]string{
			"Information": "API key has reached its daily limit.",
		}
		server := newQuoteServer(t, http.StatusOK, body)
		defer server.Close()

		source := NewHTTPQuoteSource("test", server.Client(), server.URL, "key")
		_, outcome, _ := source.Quote(context.Background(), "AAPL")

		if outcome != OutcomeRateLimited {
			t.Fatalf("expected OutcomeRateLimited, got %v", outcome)
		}
	})

	t.Run("rate_limited_status_429", func(t *testing.T) {
		server := newQuoteServer(t, http.StatusTooManyRequests, nil)
		defer server.Close()

		source := NewHTTPQuoteSource("test", server.Client(), server.URL, "key")
		_, outcome, _ := source.Quote(context.Background(), "AAPL")

		if outcome != OutcomeRateLimited {
			t.Fatalf("expected OutcomeRateLimited, got %v", outcome)
		}
	})

	t.Run("no_data_empty_body", func(t *testing.T) {
		server := newQuoteServer(t, http.StatusOK, map[string]interface{}{"Global Quote": map[string]string{}})
		defer server.Close()

		source := NewHTTPQuoteSource("test", server.Client(), server.URL, "key")
		_, outcome, _ := source.Quote(context.Background(), "GHOST")

		if outcome != OutcomeNoData {
			t.Fatalf("expected OutcomeNoData, got %v", outcome)
		}
	})

	t.Run("no_data_malformed_price", func(t *testing.T) {
		server := newQuoteServer(t, http.StatusOK, quoteJSON("AAPL", "not-a-number"))
		defer server.Close()

		source := NewHTTPQuoteSource("test", server.Client(), server.URL, "key")
		_, outcome, _ := source.Quote(context.Background(), "AAPL")

		if outcome != OutcomeNoData {
			t.Fatalf("expected OutcomeNoData, got %v", outcome)
		}
	})

	t.Run("no_data_non_positive_price", func(t *testing.T) {
		server := newQuoteServer(t, http.StatusOK, quoteJSON("AAPL", "0"))
		defer server.Close()

		source := NewHTTPQuoteSource("test", server.Client(), server.URL, "key")
		_, outcome, _ := source.Quote(context.Background(), "AAPL")

		if outcome != OutcomeNoData {
			t.Fatalf("expected OutcomeNoData, got %v", outcome)
		}
	})

	t.Run("no_data_server_error", func(t *testing.T) {
		server := newQuoteServer(t, http.StatusInternalServerError, nil)
		defer server.Close()

		source := NewHTTPQuoteSource("test", server.Client(), server.URL, "key")
		_, outcome, _ := source.Quote(context.Background(), "AAPL")

		if outcome != OutcomeNoData {
			t.Fatalf("expected OutcomeNoData, got %v", outcome)
		}
	})

	t.Run("no_data_unreachable", func(t *testing.T) {
		server := newQuoteServer(t, http.StatusOK, nil)
		server.Close() // connection refused

		source := NewHTTPQuoteSource("test", http.DefaultClient, server.URL, "key")
		_, outcome, err := source.Quote(context.Background(), "AAPL")

		if outcome != OutcomeNoData {
			t.Fatalf("expected OutcomeNoData, got %v", outcome)
		}
		if err == nil {
			t.Error("expected transport error")
		}
	})

	t.Run("sends_symbol_and_key", func(t *testing.T) {
		var gotSymbol, gotKey, gotFunction string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSymbol = r.URL.Query().Get("symbol")
			gotKey = r.URL.Query().Get("apikey")
			gotFunction = r.URL.Query().Get("function")
			_ = json.NewEncoder(w).Encode(quoteJSON(gotSymbol, "1.00"))
		}))
		defer server.Close()

		source := NewHTTPQuoteSource("test", server.Client(), server.URL, "secret-key")
		_, _, err := source.Quote(context.Background(), "BRK.B")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotSymbol != "BRK.B" {
			t.Errorf("expected symbol BRK.B, got %q", gotSymbol)
		}
		if gotKey != "secret-key" {
			t.Errorf("expected apikey secret-key, got %q", gotKey)
		}
		if gotFunction != "GLOBAL_QUOTE" {
			t.Errorf("expected function GLOBAL_QUOTE, got %q", gotFunction)
		}
	})
}
