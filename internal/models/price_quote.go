package models

import (
	"time"

	"folio/internal/uuid"

	"gorm.io/gorm"
)

// QuoteSourceTag marks the trust level of a resolved price.
type QuoteSourceTag string

const (
	QuoteSourceLive     QuoteSourceTag = "live"
	QuoteSourceFallback QuoteSourceTag = "fallback"
	QuoteSourceDefault  QuoteSourceTag = "default"

	// QuoteSourceCostBasis appears only in derived snapshots, when valuation
	// had to fall back to the holding's average purchase price. It is never
	// persisted as a quote.
	QuoteSourceCostBasis QuoteSourceTag = "cost-basis"
)

// PriceQuote represents one observed price for a security.
// This is immutable time-series data: no Base embed, no soft deletes.
// The current price of a security is the latest quote by ObservedAt.
type PriceQuote struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	SecurityID string         `gorm:"type:uuid;not null;index" json:"security_id"`
	Price      int64          `gorm:"type:bigint;not null" json:"price"`
	Currency   string         `gorm:"not null" json:"currency"`
	Source     QuoteSourceTag `gorm:"not null" json:"source"`
	ObservedAt time.Time      `gorm:"not null" json:"observed_at"`

	Security Security `gorm:"foreignKey:SecurityID" json:"security,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (q *PriceQuote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New()
	}
	return nil
}
