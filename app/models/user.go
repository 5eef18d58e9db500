package models

import "time"

// User is a student known to the identity provider. IdentityID is the
// provider's key and never changes; the profile fields are editable.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	IdentityID string    `gorm:"uniqueIndex;size:128;not null" json:"identity_id"`
	Email      string    `gorm:"size:255;not null" json:"email"`
	Name       string    `gorm:"size:255" json:"name,omitempty"`
	Phone      string    `gorm:"size:32" json:"phone,omitempty"`
	Hostel     string    `gorm:"size:64" json:"hostel,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
