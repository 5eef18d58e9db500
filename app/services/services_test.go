package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/campusprint/printhub/app/models"
	"github.com/campusprint/printhub/app/repositories"
	"github.com/campusprint/printhub/pkg/cache"
	"github.com/campusprint/printhub/pkg/storage"
	"github.com/campusprint/printhub/pkg/testkit"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixture wires every service over one in-memory database, a miniredis
// cache and a temp-dir disk.
type fixture struct {
	db    *gorm.DB
	cache *cache.Store
	redis *miniredis.Miniredis
	disk  *storage.Local

	userRepo    *repositories.UserRepository
	vendorRepo  *repositories.VendorRepository
	orderRepo   *repositories.OrderRepository
	pricingRepo *repositories.PricingRepository

	users   *UserService
	vendors *VendorAuthService
	pricing *PricingService
	orders  *OrderService
	files   *FileService
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()

	f := &fixture{db: testkit.NewDB(t), disk: testkit.NewDisk(t)}
	f.cache, f.redis = testkit.NewCache(t)

	f.userRepo = repositories.NewUserRepository(f.db)
	f.vendorRepo = repositories.NewVendorRepository(f.db)
	f.orderRepo = repositories.NewOrderRepository(f.db)
	f.pricingRepo = repositories.NewPricingRepository(f.db)

	f.users = NewUserService(f.userRepo, "@pilani.bits-pilani.ac.in")
	f.vendors = NewVendorAuthService(f.vendorRepo)
	f.pricing = NewPricingService(f.pricingRepo, f.cache)
	f.orders = NewOrderService(f.orderRepo, f.userRepo, f.vendorRepo, f.pricing, strict)
	f.files = NewFileService(f.disk, f.orderRepo)
	return f
}

func (f *fixture) seedPricing(t *testing.T) {
	t.Helper()
	require.NoError(t, f.pricingRepo.Insert(context.Background(), &models.PricingConfig{
		BWSinglePage: 2, BWDoublePage: 3, ColorSinglePage: 5, ColorDoublePage: 8, DeliveryFee: 20,
	}))
}

func (f *fixture) seedUser(t *testing.T, identityID string) *models.User {
	t.Helper()
	u := &models.User{IdentityID: identityID, Email: identityID + "@pilani.bits-pilani.ac.in"}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) seedVendor(t *testing.T, username, password string) *models.Vendor {
	t.Helper()
	v := &models.Vendor{Username: username, ShopName: username + " prints"}
	require.NoError(t, f.vendors.CreateVendor(context.Background(), v, password))
	return v
}

func orderInput(identityID string, files ...FileInput) CreateOrderInput {
	if len(files) == 0 {
		files = []FileInput{{
			FileKey:          UploadPrefix(identityID) + "1-abcd1234-notes.pdf",
			OriginalFilename: "notes.pdf",
			PageCount:        10,
			ColorType:        "bw",
		}}
	}
	return CreateOrderInput{
		Files:          files,
		DeliveryHostel: "Ram",
		DeliveryGate:   "Gate 2",
		DeliveryPhone:  "9876543210",
	}
}

func (f *fixture) seedOrder(t *testing.T, identityID string) *models.Order {
	t.Helper()
	o, err := f.orders.Create(context.Background(), identityID, orderInput(identityID))
	require.NoError(t, err)
	return o
}
