package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/campusprint/printhub/app/models"
	"github.com/campusprint/printhub/pkg/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, identityID string) *models.User {
	t.Helper()
	u := &models.User{IdentityID: identityID, Email: identityID + "@pilani.bits-pilani.ac.in"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedVendor(t *testing.T, db *gorm.DB, username string, load int) *models.Vendor {
	t.Helper()
	v := &models.Vendor{Username: username, ShopName: username + " prints", IsActive: true, CurrentLoad: load}
	require.NoError(t, db.Create(v).Error)
	return v
}

func seedOrder(t *testing.T, repo *OrderRepository, userID uint, keys ...string) *models.Order {
	t.Helper()
	o := &models.Order{
		UserID:         userID,
		Status:         models.StatusPending,
		TotalPrice:     40,
		DeliveryHostel: "Ram",
		DeliveryGate:   "A",
		DeliveryPhone:  "9999999999",
	}
	for _, k := range keys {
		o.Files = append(o.Files, models.OrderFile{
			FileKey:          k,
			OriginalFilename: "doc.pdf",
			PageCount:        10,
			ColorType:        models.ColorBW,
			PagesPerSide:     1,
			Copies:           1,
		})
	}
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func loadOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var v models.Vendor
	require.NoError(t, db.First(&v, id).Error)
	return v.CurrentLoad
}

func TestUserFirstOrCreateIsIdempotent(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first, err := repo.FirstOrCreate(ctx, &models.User{IdentityID: "id-1", Email: "a@x", Name: "A"})
	require.NoError(t, err)
	second, err := repo.FirstOrCreate(ctx, &models.User{IdentityID: "id-1", Email: "a@x", Name: "Other"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "A", second.Name)

	var n int64
	db.Model(&models.User{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestUserUpdateProfile(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewUserRepository(db)
	seedUser(t, db, "id-1")

	require.NoError(t, repo.UpdateProfile(context.Background(), "id-1", "98765", "Budh"))
	u, err := repo.FindByIdentityID(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, "98765", u.Phone)
	assert.Equal(t, "Budh", u.Hostel)

	assert.ErrorIs(t, repo.UpdateProfile(context.Background(), "ghost", "", ""), ErrNotFound)
}

func TestOrderCreatePersistsFilesInOrder(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewOrderRepository(db)
	u := seedUser(t, db, "id-1")

	o := seedOrder(t, repo, u.ID, "uploads/id-1/a.pdf", "uploads/id-1/b.pdf", "uploads/id-1/c.pdf")
	require.NotZero(t, o.ID)

	got, err := repo.GetForUser(context.Background(), u.ID, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Files, 3)
	assert.Equal(t, "uploads/id-1/a.pdf", got.Files[0].FileKey)
	assert.Equal(t, "uploads/id-1/c.pdf", got.Files[2].FileKey)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestOrderCreateRollsBackOnFileFailure(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewOrderRepository(db)
	u := seedUser(t, db, "id-1")

	o := &models.Order{
		UserID: u.ID, Status: models.StatusPending,
		DeliveryHostel: "Ram", DeliveryGate: "A", DeliveryPhone: "1",
		// two files with the same primary key make the second insert fail
		Files: []models.OrderFile{
			{ID: 7, FileKey: "k1", OriginalFilename: "a.pdf", PageCount: 1, ColorType: models.ColorBW, PagesPerSide: 1, Copies: 1},
			{ID: 7, FileKey: "k2", OriginalFilename: "b.pdf", PageCount: 1, ColorType: models.ColorBW, PagesPerSide: 1, Copies: 1},
		},
	}
	require.Error(t, repo.Create(context.Background(), o))

	var n int64
	db.Model(&models.Order{}).Count(&n)
	assert.Zero(t, n)
}

func TestGetForUserHidesOtherUsersOrders(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewOrderRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	o := seedOrder(t, repo, alice.ID, "k")

	_, err := repo.GetForUser(context.Background(), bob.ID, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccept(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewOrderRepository(db)
	u := seedUser(t, db, "id-1")
	v := seedVendor(t, db, "shop", 0)
	o := seedOrder(t, repo, u.ID, "k")
	ctx := context.Background()

	require.NoError(t, repo.Accept(ctx, o.ID, v.ID))
	assert.Equal(t, 1, loadOf(t, db, v.ID))

	assert.ErrorIs(t, repo.Accept(ctx, o.ID, v.ID), ErrPrecondition)
	assert.ErrorIs(t, repo.Accept(ctx, 9999, v.ID), ErrNotFound)
	assert.Equal(t, 1, loadOf(t, db, v.ID))

	var got models.Order
	require.NoError(t, db.First(&got, o.ID).Error)
	assert.Equal(t, models.StatusAccepted, got.Status)
	require.NotNil(t, got.VendorID)
	assert.Equal(t, v.ID, *got.VendorID)
}

func TestAdvance(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewOrderRepository(db)
	u := seedUser(t, db, "id-1")
	v := seedVendor(t, db, "shop", 0)
	other := seedVendor(t, db, "other", 0)
	o := seedOrder(t, repo, u.ID, "k")
	ctx := context.Background()

	// pending orders must be accepted first
	assert.ErrorIs(t, repo.Advance(ctx, o.ID, v.ID, models.StatusPrinting), ErrNotOwner)

	require.NoError(t, repo.Accept(ctx, o.ID, v.ID))
	assert.ErrorIs(t, repo.Advance(ctx, o.ID, other.ID, models.StatusPrinting), ErrNotOwner)
	assert.ErrorIs(t, repo.Advance(ctx, 9999, v.ID, models.StatusPrinting), ErrNotFound)

	// guarded move from the wrong status
	assert.ErrorIs(t, repo.Advance(ctx, o.ID, v.ID, models.StatusOutForDelivery, models.StatusPrinting), ErrOutOfOrder)

	require.NoError(t, repo.Advance(ctx, o.ID, v.ID, models.StatusDelivered))
	assert.Equal(t, 0, loadOf(t, db, v.ID))

	// repeating delivered does not release load twice
	assert.ErrorIs(t, repo.Advance(ctx, o.ID, v.ID, models.StatusDelivered), ErrOutOfOrder)
	assert.ErrorIs(t, repo.Advance(ctx, o.ID, v.ID, models.StatusDelivered, models.StatusOutForDelivery), ErrOutOfOrder)
	assert.Equal(t, 0, loadOf(t, db, v.ID))
}

func TestAdvanceNeverMovesBackward(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewOrderRepository(db)
	u := seedUser(t, db, "id-1")
	v := seedVendor(t, db, "shop", 0)
	first := seedOrder(t, repo, u.ID, "k1")
	second := seedOrder(t, repo, u.ID, "k2")
	ctx := context.Background()

	require.NoError(t, repo.Accept(ctx, first.ID, v.ID))
	require.NoError(t, repo.Accept(ctx, second.ID, v.ID))
	require.Equal(t, 2, loadOf(t, db, v.ID))

	require.NoError(t, repo.Advance(ctx, first.ID, v.ID, models.StatusDelivered))
	require.Equal(t, 1, loadOf(t, db, v.ID))

	for _, back := range []models.OrderStatus{models.StatusPrinting, models.StatusOutForDelivery, models.StatusAccepted} {
		assert.ErrorIs(t, repo.Advance(ctx, first.ID, v.ID, back), ErrOutOfOrder, back)
	}

	var got models.Order
	require.NoError(t, db.First(&got, first.ID).Error)
	assert.Equal(t, models.StatusDelivered, got.Status)

	// a second delivery of the same order must not release the other order's slot
	assert.ErrorIs(t, repo.Advance(ctx, first.ID, v.ID, models.StatusDelivered), ErrOutOfOrder)
	assert.Equal(t, 1, loadOf(t, db, v.ID))

	// forward skips stay allowed
	require.NoError(t, repo.Advance(ctx, second.ID, v.ID, models.StatusOutForDelivery))
	assert.ErrorIs(t, repo.Advance(ctx, second.ID, v.ID, models.StatusPrinting), ErrOutOfOrder)
	require.NoError(t, repo.Advance(ctx, second.ID, v.ID, models.StatusDelivered))
	assert.Equal(t, 0, loadOf(t, db, v.ID))
}

func TestAdvanceLoadNeverNegative(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewOrderRepository(db)
	u := seedUser(t, db, "id-1")
	v := seedVendor(t, db, "shop", 0)
	o := seedOrder(t, repo, u.ID, "k")
	ctx := context.Background()

	require.NoError(t, repo.Accept(ctx, o.ID, v.ID))
	require.NoError(t, db.Model(&models.Vendor{}).Where("id = ?", v.ID).UpdateColumn("current_load", 0).Error)

	require.NoError(t, repo.Advance(ctx, o.ID, v.ID, models.StatusDelivered))
	assert.Equal(t, 0, loadOf(t, db, v.ID))
}

func TestListForVendorQueueOrder(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewOrderRepository(db)
	u := seedUser(t, db, "id-1")
	v := seedVendor(t, db, "shop", 0)
	other := seedVendor(t, db, "other", 0)
	ctx := context.Background()

	delivered := seedOrder(t, repo, u.ID, "k1")
	printing := seedOrder(t, repo, u.ID, "k2")
	pendingOld := seedOrder(t, repo, u.ID, "k3")
	accepted := seedOrder(t, repo, u.ID, "k4")
	pendingNew := seedOrder(t, repo, u.ID, "k5")
	foreign := seedOrder(t, repo, u.ID, "k6")

	require.NoError(t, repo.Accept(ctx, delivered.ID, v.ID))
	require.NoError(t, repo.Advance(ctx, delivered.ID, v.ID, models.StatusDelivered))
	require.NoError(t, repo.Accept(ctx, printing.ID, v.ID))
	require.NoError(t, repo.Advance(ctx, printing.ID, v.ID, models.StatusPrinting))
	require.NoError(t, repo.Accept(ctx, accepted.ID, v.ID))
	require.NoError(t, repo.Accept(ctx, foreign.ID, other.ID))

	orders, err := repo.ListForVendor(ctx, v.ID)
	require.NoError(t, err)

	var ids []uint
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []uint{pendingOld.ID, pendingNew.ID, accepted.ID, printing.ID, delivered.ID}, ids)
	require.NotNil(t, orders[0].User)
	assert.Equal(t, "id-1", orders[0].User.IdentityID)

	_, err = repo.GetForVendor(ctx, v.ID, foreign.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := repo.GetForVendor(ctx, other.ID, pendingOld.ID)
	require.NoError(t, err)
	assert.Len(t, got.Files, 1)
}

func TestListForUserNewestFirst(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewOrderRepository(db)
	u := seedUser(t, db, "id-1")
	a := seedOrder(t, repo, u.ID, "k1")
	b := seedOrder(t, repo, u.ID, "k2")

	orders, err := repo.ListForUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, b.ID, orders[0].ID)
	assert.Equal(t, a.ID, orders[1].ID)
}

func TestVendorCanAccessFile(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewOrderRepository(db)
	u := seedUser(t, db, "id-1")
	v := seedVendor(t, db, "shop", 0)
	other := seedVendor(t, db, "other", 0)
	ctx := context.Background()

	pending := seedOrder(t, repo, u.ID, "uploads/id-1/pending.pdf")
	taken := seedOrder(t, repo, u.ID, "uploads/id-1/taken.pdf")
	require.NoError(t, repo.Accept(ctx, taken.ID, other.ID))
	_ = pending

	ok, err := repo.VendorCanAccessFile(ctx, v.ID, "uploads/id-1/pending.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.VendorCanAccessFile(ctx, v.ID, "uploads/id-1/taken.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.VendorCanAccessFile(ctx, other.ID, "uploads/id-1/taken.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.VendorCanAccessFile(ctx, v.ID, "uploads/id-1/unknown.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVendorSessions(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewVendorRepository(db)
	v := seedVendor(t, db, "shop", 0)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.CreateSession(ctx, &models.VendorSession{VendorID: v.ID, SessionToken: "live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.CreateSession(ctx, &models.VendorSession{VendorID: v.ID, SessionToken: "stale", ExpiresAt: now.Add(-time.Hour)}))

	id, err := repo.SessionVendorID(ctx, "live", now)
	require.NoError(t, err)
	assert.Equal(t, v.ID, id)

	_, err = repo.SessionVendorID(ctx, "stale", now)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := repo.PruneSessions(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, repo.DeleteSession(ctx, "live"))
	require.NoError(t, repo.DeleteSession(ctx, "live"))
	_, err = repo.SessionVendorID(ctx, "live", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeastLoaded(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewVendorRepository(db)
	ctx := context.Background()

	id, err := repo.LeastLoaded(ctx)
	require.NoError(t, err)
	assert.Nil(t, id)

	seedVendor(t, db, "busy", 5)
	idle := seedVendor(t, db, "idle", 1)
	off := seedVendor(t, db, "off", 0)
	require.NoError(t, db.Model(off).UpdateColumn("is_active", false).Error)

	id, err = repo.LeastLoaded(ctx)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, idle.ID, *id)

	_, err = repo.FindActiveByUsername(ctx, "off")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPricingLatestWins(t *testing.T) {
	db := testkit.NewDB(t)
	repo := NewPricingRepository(db)
	ctx := context.Background()

	_, err := repo.Latest(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Insert(ctx, &models.PricingConfig{BWSinglePage: 2, DeliveryFee: 20}))
	require.NoError(t, repo.Insert(ctx, &models.PricingConfig{BWSinglePage: 3, DeliveryFee: 25}))

	p, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.0, p.BWSinglePage)
}

func TestStatusRankSQL(t *testing.T) {
	sql := statusRankSQL("status")
	assert.Contains(t, sql, "WHEN 'pending' THEN 1")
	assert.Contains(t, sql, "WHEN 'delivered' THEN 5")
}
