package models

// Portfolio groups holdings under one owner-facing bucket. Writers against a
// portfolio's holdings serialize on the portfolio, never across portfolios.
type Portfolio struct {
	Base
	Name         string `gorm:"not null" json:"name"`
	BaseCurrency string `gorm:"not null;default:'USD'" json:"base_currency"`
}
