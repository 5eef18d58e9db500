package migrations

import (
	"github.com/campusprint/printhub/app/models"
	"github.com/campusprint/printhub/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	table("20260101000000_create_users_table", "users", &models.User{})
	table("20260101000001_create_vendors_table", "vendors", &models.Vendor{})
	table("20260101000002_create_vendor_sessions_table", "vendor_sessions", &models.VendorSession{})
	table("20260101000003_create_pricing_configs_table", "pricing_configs", &models.PricingConfig{})
	table("20260101000004_create_orders_table", "orders", &models.Order{})
	table("20260101000005_create_order_files_table", "order_files", &models.OrderFile{})
}

func table(name, tableName string, model interface{}) {
	migration.Register(migration.Migration{
		Name: name,
		Up:   func(db *gorm.DB) error { return db.AutoMigrate(model) },
		Down: func(db *gorm.DB) error { return db.Migrator().DropTable(tableName) },
	})
}
