package pricing

import (
	"context"
	"fmt"
	"testing"

	"folio/internal/models"
)

// fakeSource scripts a fixed outcome and counts calls.
type fakeSource struct {
	name    string
	price   int64
	outcome Outcome
	calls   int
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Quote(_ context.Context, _ string) (int64, Outcome, error) {
	s.calls++
	if s.outcome == OutcomePrice {
		return s.price, OutcomePrice, nil
	}
	return 0, s.outcome, fmt.Errorf("scripted %v", s.outcome)
}

func identityConverter() *RateConverter {
	return NewRateConverter("USD", "USD", 1.0)
}

func TestResolverResolve(t *testing.T) {
	t.Run("live_from_first_source", func(t *testing.T) {
		first := &fakeSource{name: "one", price: 12345, outcome: OutcomePrice}
		second := &fakeSource{name: "two", price: 99999, outcome: OutcomePrice}
		resolver := NewResolver([]QuoteSource{first, second}, identityConverter(), ResolverConfig{})

		res := resolver.Resolve(context.Background(), "AAPL")

		if res.Source != models.QuoteSourceLive {
			t.Fatalf("expected live source tag, got %s", res.Source)
		}
		if res.Price != 12345 {
			t.Errorf("expected price 12345, got %d", res.Price)
		}
		if res.SourceName != "one" {
			t.Errorf("expected source name one, got %s", res.SourceName)
		}
		if second.calls != 0 {
			t.Errorf("expected second source untouched, got %d calls", second.calls)
		}
	})

	t.Run("advances_past_no_data", func(t *testing.T) {
		first := &fakeSource{name: "one", outcome: OutcomeNoData}
		second := &fakeSource{name: "two", price: 5000, outcome: OutcomePrice}
		resolver := NewResolver([]QuoteSource{first, second}, identityConverter(), ResolverConfig{})

		res := resolver.Resolve(context.Background(), "AAPL")

		if res.Source != models.QuoteSourceLive || res.SourceName != "two" {
			t.Errorf("expected live price from second source, got %s from %q", res.Source, res.SourceName)
		}
	})

	t.Run("each_source_tried_once", func(t *testing.T) {
		first := &fakeSource{name: "one", outcome: OutcomeRateLimited}
		second := &fakeSource{name: "two", outcome: OutcomeNoData}
		resolver := NewResolver([]QuoteSource{first, second}, identityConverter(), ResolverConfig{
			FallbackPrices: map[string]int64{"AAPL": 10000},
		})

		resolver.Resolve(context.Background(), "AAPL")

		if first.calls != 1 || second.calls != 1 {
			t.Errorf("expected one attempt per source, got %d and %d", first.calls, second.calls)
		}
	})

	t.Run("fallback_table_with_jitter", func(t *testing.T) {
		source := &fakeSource{name: "one", outcome: OutcomeRateLimited}
		resolver := NewResolver([]QuoteSource{source}, identityConverter(), ResolverConfig{
			FallbackPrices: map[string]int64{"AAPL": 10000},
		})

		res := resolver.Resolve(context.Background(), "AAPL")

		if res.Source != models.QuoteSourceFallback {
			t.Fatalf("expected fallback source tag, got %s", res.Source)
		}
		// Jitter stays within the 2% band and never returns the base exactly.
		if res.Price < 9800 || res.Price > 10200 {
			t.Errorf("expected jittered price within [9800, 10200], got %d", res.Price)
		}
		if res.Price == 10000 {
			t.Errorf("expected jitter to move the price off the base, got %d", res.Price)
		}
	})

	t.Run("jitter_varies_between_calls", func(t *testing.T) {
		source := &fakeSource{name: "one", outcome: OutcomeRateLimited}
		resolver := NewResolver([]QuoteSource{source}, identityConverter(), ResolverConfig{
			FallbackPrices: map[string]int64{"AAPL": 1000000},
		})

		seen := map[int64]bool{}
		for i := 0; i < 16; i++ {
			seen[resolver.Resolve(context.Background(), "AAPL").Price] = true
		}
		if len(seen) < 2 {
			t.Errorf("expected varying jittered prices, saw only %d distinct value(s)", len(seen))
		}
	})

	t.Run("default_sentinel_for_unknown_symbol", func(t *testing.T) {
		source := &fakeSource{name: "one", outcome: OutcomeNoData}
		resolver := NewResolver([]QuoteSource{source}, identityConverter(), ResolverConfig{
			FallbackPrices: map[string]int64{"AAPL": 10000},
			DefaultPrice:   10000,
		})

		res := resolver.Resolve(context.Background(), "GHOST")

		if res.Source != models.QuoteSourceDefault {
			t.Fatalf("expected default source tag, got %s", res.Source)
		}
		if res.Price != 10000 {
			t.Errorf("expected sentinel price 10000, got %d", res.Price)
		}
	})

	t.Run("no_sources_configured", func(t *testing.T) {
		resolver := NewResolver(nil, identityConverter(), ResolverConfig{DefaultPrice: 10000})

		res := resolver.Resolve(context.Background(), "AAPL")

		if res.Source != models.QuoteSourceDefault || res.Price != 10000 {
			t.Errorf("expected default sentinel, got %s at %d", res.Source, res.Price)
		}
	})

	t.Run("rotates_past_rate_limited_head", func(t *testing.T) {
		first := &fakeSource{name: "one", outcome: OutcomeRateLimited}
		second := &fakeSource{name: "two", price: 5000, outcome: OutcomePrice}
		resolver := NewResolver([]QuoteSource{first, second}, identityConverter(), ResolverConfig{})

		resolver.Resolve(context.Background(), "AAPL")
		res := resolver.Resolve(context.Background(), "AAPL")

		// The second resolution starts at the rotated preference, so the
		// rate-limited head is never retried.
		if first.calls != 1 {
			t.Errorf("expected rate-limited source skipped on second resolution, got %d calls", first.calls)
		}
		if res.SourceName != "two" {
			t.Errorf("expected preferred source two, got %q", res.SourceName)
		}
	})

	t.Run("no_data_does_not_rotate", func(t *testing.T) {
		first := &fakeSource{name: "one", price: 5000, outcome: OutcomeNoData}
		second := &fakeSource{name: "two", price: 7000, outcome: OutcomePrice}
		resolver := NewResolver([]QuoteSource{first, second}, identityConverter(), ResolverConfig{})

		resolver.Resolve(context.Background(), "AAPL")
		first.outcome = OutcomePrice
		res := resolver.Resolve(context.Background(), "AAPL")

		if res.SourceName != "one" {
			t.Errorf("expected preference to stay on first source, got %q", res.SourceName)
		}
	})

	t.Run("currency_conversion_applied_to_live", func(t *testing.T) {
		source := &fakeSource{name: "one", price: 10000, outcome: OutcomePrice}
		converter := NewRateConverter("USD", "SGD", 1.35)
		resolver := NewResolver([]QuoteSource{source}, converter, ResolverConfig{})

		res := resolver.Resolve(context.Background(), "AAPL")

		if res.Price != 13500 {
			t.Errorf("expected converted price 13500, got %d", res.Price)
		}
		if res.Currency != "SGD" {
			t.Errorf("expected display currency SGD, got %s", res.Currency)
		}
	})
}

func TestRateConverter(t *testing.T) {
	t.Run("identity_when_same_currency", func(t *testing.T) {
		converter := NewRateConverter("usd", "USD", 1.35)
		if converter.NeedsConversion() {
			t.Error("expected no conversion for matching currencies")
		}
		if got := converter.Convert(12345); got != 12345 {
			t.Errorf("expected passthrough 12345, got %d", got)
		}
	})

	t.Run("rounds_converted_cents", func(t *testing.T) {
		converter := NewRateConverter("USD", "SGD", 1.333)
		if got := converter.Convert(100); got != 133 {
			t.Errorf("expected 133, got %d", got)
		}
		if got := converter.Convert(150); got != 200 {
			t.Errorf("expected 200, got %d", got)
		}
	})

	t.Run("non_positive_rate_disables_conversion", func(t *testing.T) {
		converter := NewRateConverter("USD", "SGD", 0)
		if converter.NeedsConversion() {
			t.Error("expected zero rate to disable conversion")
		}
	})
}
