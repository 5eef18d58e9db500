package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campusprint/printhub/app/models"
	"gorm.io/gorm"
)

// OrderRepository handles orders and their files.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts order and order.Files in one transaction. Either both land
// or neither does.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		files := order.Files
		if err := tx.Omit("Files", "User", "Vendor").Create(order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if len(files) == 0 {
			return nil
		}
		for i := range files {
			files[i].OrderID = order.ID
		}
		if err := tx.Create(&files).Error; err != nil {
			return fmt.Errorf("insert order files: %w", err)
		}
		order.Files = files
		return nil
	})
}

// Accept moves a pending order to accepted and assigns it to vendorID with
// a single conditional update, so of two concurrent accepts exactly one
// wins. The vendor's load is incremented in the same transaction.
//
// Returns ErrNotFound when the order does not exist and ErrPrecondition
// when it is no longer pending.
func (r *OrderRepository) Accept(ctx context.Context, orderID, vendorID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.StatusPending).
			Updates(map[string]interface{}{
				"status":    models.StatusAccepted,
				"vendor_id": vendorID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := exists(tx, orderID); err != nil {
				return err
			}
			return ErrPrecondition
		}
		return incrementLoad(tx, vendorID)
	})
}

// Advance moves an accepted order assigned to vendorID to status to. The
// order must currently be in one of from, or, when from is empty, in any
// post-acceptance stage before to. Statuses therefore never move backward,
// and the single move into delivered releases one unit of the vendor's load.
//
// Returns ErrNotFound, ErrNotOwner, ErrPrecondition (still pending) or
// ErrOutOfOrder when nothing changed.
func (r *OrderRepository) Advance(ctx context.Context, orderID, vendorID uint, to models.OrderStatus, from ...models.OrderStatus) error {
	if len(from) == 0 {
		from = to.Before()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND vendor_id = ?", orderID, vendorID).
			Where("status <> ? AND status IN ?", models.StatusPending, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			if to == models.StatusDelivered {
				return decrementLoad(tx, vendorID)
			}
			return nil
		}

		var cur models.Order
		if err := tx.Select("id", "vendor_id", "status").First(&cur, orderID).Error; err != nil {
			return err
		}
		switch {
		case cur.VendorID == nil || *cur.VendorID != vendorID:
			return ErrNotOwner
		case cur.Status == models.StatusPending:
			return ErrPrecondition
		}
		return ErrOutOfOrder
	})
}

// ListForUser returns the user's orders newest first with files and vendor.
func (r *OrderRepository) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Files", orderFilesByID).
		Preload("Vendor").
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// GetForUser returns one of the user's orders. Orders of other users are
// reported as ErrNotFound.
func (r *OrderRepository) GetForUser(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		Preload("Files", orderFilesByID).
		Preload("Vendor").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListForVendor returns the vendor's queue: orders assigned to vendorID plus
// every pending order, grouped by pipeline stage and oldest first within a
// stage.
func (r *OrderRepository) ListForVendor(ctx context.Context, vendorID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("(vendor_id = ? OR status = ?)", vendorID, models.StatusPending).
		Preload("Files", orderFilesByID).
		Preload("User").
		Order(statusRankSQL("status")).
		Order("created_at ASC").
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

// GetForVendor returns an order visible to vendorID.
func (r *OrderRepository) GetForVendor(ctx context.Context, vendorID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		Where("(vendor_id = ? OR status = ?)", vendorID, models.StatusPending).
		Preload("Files", orderFilesByID).
		Preload("User").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// VendorCanAccessFile reports whether key belongs to an order that is
// assigned to vendorID or still pending.
func (r *OrderRepository) VendorCanAccessFile(ctx context.Context, vendorID uint, key string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderFile{}).
		Joins("JOIN orders ON orders.id = order_files.order_id").
		Where("order_files.file_key = ?", key).
		Where("(orders.vendor_id = ? OR orders.status = ?)", vendorID, models.StatusPending).
		Count(&n).Error
	return n > 0, err
}

func exists(tx *gorm.DB, orderID uint) error {
	var n int64
	if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func orderFilesByID(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }

// statusRankSQL builds "CASE col WHEN 'pending' THEN 1 ... END" from the
// pipeline. The values are compile-time constants.
func statusRankSQL(col string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(col)
	for _, s := range models.Statuses() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, s.Rank())
	}
	b.WriteString(" ELSE 99 END")
	return b.String()
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
