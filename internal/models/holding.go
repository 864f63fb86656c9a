package models

import "time"

// Holding represents a portfolio's position in one security: quantity plus a
// quantity-weighted average purchase price in cents. Quantity never goes
// negative; a disposal removes the holding outright.
type Holding struct {
	Base
	PortfolioID      string    `gorm:"type:uuid;not null;uniqueIndex:uq_holdings_portfolio_security" json:"portfolio_id"`
	SecurityID       string    `gorm:"type:uuid;not null;uniqueIndex:uq_holdings_portfolio_security" json:"security_id"`
	Quantity         float64   `gorm:"not null" json:"quantity"`
	AvgPurchasePrice int64     `gorm:"type:bigint;not null" json:"avg_purchase_price"`
	FirstPurchaseAt  time.Time `gorm:"not null" json:"first_purchase_at"`

	Portfolio Portfolio `gorm:"foreignKey:PortfolioID" json:"portfolio,omitempty"`
	Security  Security  `gorm:"foreignKey:SecurityID" json:"security"`
}

// HoldingTransactionType represents the kind of ledger mutation recorded.
type HoldingTransactionType string

const (
	HoldingTransactionBuy     HoldingTransactionType = "buy"
	HoldingTransactionSellAll HoldingTransactionType = "sell_all"
)

// HoldingTransaction is the append-only audit trail behind a holding. The log
// retains enough to reconstruct current quantity and average price.
type HoldingTransaction struct {
	Base
	HoldingID    string                 `gorm:"type:uuid;not null" json:"holding_id"`
	Type         HoldingTransactionType `gorm:"not null" json:"type"`
	Date         time.Time              `gorm:"not null" json:"date"`
	Quantity     float64                `gorm:"not null" json:"quantity"`
	PricePerUnit int64                  `gorm:"type:bigint;not null" json:"price_per_unit"`
	TotalAmount  int64                  `gorm:"type:bigint;not null" json:"total_amount"`

	Holding Holding `gorm:"foreignKey:HoldingID" json:"holding,omitempty"`
}
