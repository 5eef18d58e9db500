package models

import "time"

// OrderStatus is the fulfilment stage of an order. The wire values are part
// of the public API.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusAccepted       OrderStatus = "accepted"
	StatusPrinting       OrderStatus = "printing"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
)

// statusSequence is the only path an order may take.
var statusSequence = []OrderStatus{
	StatusPending,
	StatusAccepted,
	StatusPrinting,
	StatusOutForDelivery,
	StatusDelivered,
}

// Rank is the position in the pipeline starting at 1, or 0 for unknown values.
// The vendor queue is ordered by it.
func (s OrderStatus) Rank() int {
	for i, st := range statusSequence {
		if st == s {
			return i + 1
		}
	}
	return 0
}

func (s OrderStatus) Valid() bool { return s.Rank() > 0 }

// Statuses returns the pipeline in order.
func Statuses() []OrderStatus {
	out := make([]OrderStatus, len(statusSequence))
	copy(out, statusSequence)
	return out
}

// Next returns the immediate successor, or "" for delivered.
func (s OrderStatus) Next() OrderStatus {
	r := s.Rank()
	if r == 0 || r == len(statusSequence) {
		return ""
	}
	return statusSequence[r]
}

// Before returns the stages preceding s, earliest first. It is empty for
// pending and for unknown values.
func (s OrderStatus) Before() []OrderStatus {
	r := s.Rank()
	if r <= 1 {
		return nil
	}
	return append([]OrderStatus(nil), statusSequence[:r-1]...)
}

// VendorSettable reports whether a vendor may request s through a status
// update (acceptance has its own operation).
func (s OrderStatus) VendorSettable() bool {
	switch s {
	case StatusPrinting, StatusOutForDelivery, StatusDelivered:
		return true
	}
	return false
}

// ColorType is the print colour mode.
type ColorType string

const (
	ColorBW   ColorType = "bw"
	ColorFull ColorType = "color"
)

// Order is a student's print job. TotalPrice is fixed at creation.
type Order struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	UserID         uint        `gorm:"not null;index" json:"-"`
	VendorID       *uint       `gorm:"index" json:"vendor_id"`
	Status         OrderStatus `gorm:"size:32;not null;default:pending;index" json:"status"`
	TotalPrice     float64     `gorm:"not null" json:"total_price"`
	DeliveryHostel string      `gorm:"size:64;not null" json:"delivery_hostel"`
	DeliveryGate   string      `gorm:"size:64;not null" json:"delivery_gate"`
	DeliveryPhone  string      `gorm:"size:32;not null" json:"delivery_phone"`
	ExpectedTime   string      `gorm:"size:64" json:"expected_time,omitempty"`
	Notes          string      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	Files  []OrderFile `gorm:"foreignKey:OrderID" json:"files"`
	User   *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Vendor *Vendor     `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
}

// OrderFile is one document inside an order with its print settings.
type OrderFile struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	OrderID          uint      `gorm:"not null;index" json:"-"`
	FileKey          string    `gorm:"size:512;not null;index" json:"file_key"`
	OriginalFilename string    `gorm:"size:255;not null" json:"original_filename"`
	PageCount        int       `gorm:"not null" json:"page_count"`
	ColorType        ColorType `gorm:"size:8;not null" json:"color_type"`
	IsDoubleSided    bool      `gorm:"not null" json:"is_double_sided"`
	PagesPerSide     int       `gorm:"not null;default:1" json:"pages_per_side"`
	Copies           int       `gorm:"not null;default:1" json:"copies"`
	Comments         string    `gorm:"type:text" json:"comments,omitempty"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}
