package models

// Security represents a normalized tradable instrument. It is created on the
// first purchase of a previously-unseen symbol and its symbol is immutable.
// All three catalog references must resolve at creation time.
type Security struct {
	Base
	Symbol         string `gorm:"not null;uniqueIndex" json:"symbol"`
	Name           string `gorm:"not null" json:"name"`
	IndustryID     string `gorm:"type:uuid;not null" json:"industry_id"`
	SecurityTypeID string `gorm:"type:uuid;not null" json:"security_type_id"`
	VarianceTierID string `gorm:"type:uuid;not null" json:"variance_tier_id"`
	Currency       string `gorm:"not null;default:'USD'" json:"currency"`

	Industry     Industry     `gorm:"foreignKey:IndustryID" json:"industry,omitempty"`
	SecurityType SecurityType `gorm:"foreignKey:SecurityTypeID" json:"security_type,omitempty"`
	VarianceTier VarianceTier `gorm:"foreignKey:VarianceTierID" json:"variance_tier,omitempty"`
}
