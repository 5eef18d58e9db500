package seeders

import (
	"errors"

	"github.com/campusprint/printhub/app/models"
	"github.com/campusprint/printhub/config"
	"github.com/campusprint/printhub/pkg/auth"
	"gorm.io/gorm"
)

// DefaultPricing is the rate card installed on a fresh database.
var DefaultPricing = models.PricingConfig{
	BWSinglePage:    2,
	BWDoublePage:    3,
	ColorSinglePage: 5,
	ColorDoublePage: 8,
	DeliveryFee:     20,
}

func init() {
	Register("pricing", SeedPricing)
	Register("demo_vendor", SeedDemoVendor)
}

// SeedPricing inserts DefaultPricing when no pricing row exists.
func SeedPricing(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.PricingConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	row := DefaultPricing
	return db.Create(&row).Error
}

// SeedDemoVendor creates a "demo" vendor outside production so a fresh
// checkout has someone to accept orders. The password comes from
// DEMO_VENDOR_PASSWORD.
func SeedDemoVendor(db *gorm.DB) error {
	if config.IsProduction() {
		return nil
	}
	var existing models.Vendor
	err := db.Where("username = ?", "demo").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(config.Get("DEMO_VENDOR_PASSWORD", "demo-vendor"))
	if err != nil {
		return err
	}
	return db.Create(&models.Vendor{
		Username:     "demo",
		PasswordHash: hash,
		ShopName:     "Demo Print Shop",
		IsActive:     true,
	}).Error
}
