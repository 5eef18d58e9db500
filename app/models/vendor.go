package models

import "time"

// Vendor is a print shop. Vendors are provisioned out-of-band (CLI or
// seeders); the public API only lets them log in and work the queue.
type Vendor struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
	PasswordHash string    `gorm:"size:255" json:"-"` // bcrypt, never serialised
	ShopName     string    `gorm:"size:255;not null" json:"shop_name"`
	ContactEmail string    `gorm:"size:255" json:"contact_email,omitempty"`
	ContactPhone string    `gorm:"size:32" json:"contact_phone,omitempty"`
	IsActive     bool      `gorm:"not null;default:true;index" json:"-"`
	CurrentLoad  int       `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// VendorSession is one login. Rows past ExpiresAt are ignored by lookups and
// removed by `printhub vendor:sessions:prune`.
type VendorSession struct {
	ID           uint      `gorm:"primaryKey"`
	VendorID     uint      `gorm:"not null;index"`
	SessionToken string    `gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt    time.Time `gorm:"not null;index"`
	CreatedAt    time.Time
}
