package models

import "time"

// PricingConfig holds per-page rates and the flat delivery fee. Rows are
// append-only; the most recently inserted one is in force.
type PricingConfig struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	BWSinglePage    float64   `gorm:"not null" json:"bw_single_page"`
	BWDoublePage    float64   `gorm:"not null" json:"bw_double_page"`
	ColorSinglePage float64   `gorm:"not null" json:"color_single_page"`
	ColorDoublePage float64   `gorm:"not null" json:"color_double_page"`
	DeliveryFee     float64   `gorm:"not null" json:"delivery_fee"`
	CreatedAt       time.Time `json:"updated_at"`
}

// Rate returns the per-page price for a colour mode and sidedness.
func (p PricingConfig) Rate(color ColorType, doubleSided bool) float64 {
	switch {
	case color == ColorFull && doubleSided:
		return p.ColorDoublePage
	case color == ColorFull:
		return p.ColorSinglePage
	case doubleSided:
		return p.BWDoublePage
	default:
		return p.BWSinglePage
	}
}
