package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/campusprint/printhub/app/models"
	"gorm.io/gorm"
)

// VendorRepository handles vendors and their login sessions.
type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// Create persists a new vendor.
func (r *VendorRepository) Create(ctx context.Context, v *models.Vendor) error {
	return r.db.WithContext(ctx).Create(v).Error
}

// FindByID looks up a vendor by primary key.
func (r *VendorRepository) FindByID(ctx context.Context, id uint) (*models.Vendor, error) {
	var v models.Vendor
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// FindActiveByUsername returns the active vendor with username.
func (r *VendorRepository) FindActiveByUsername(ctx context.Context, username string) (*models.Vendor, error) {
	var v models.Vendor
	err := r.db.WithContext(ctx).
		Where("username = ? AND is_active = ?", username, true).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// LeastLoaded returns the id of the active vendor with the lowest load, or
// nil when no vendor is active.
func (r *VendorRepository) LeastLoaded(ctx context.Context) (*uint, error) {
	var v models.Vendor
	err := r.db.WithContext(ctx).
		Select("id").
		Where("is_active = ?", true).
		Order("current_load ASC").
		Order("id ASC").
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v.ID, nil
}

// CreateSession stores a new login session.
func (r *VendorRepository) CreateSession(ctx context.Context, s *models.VendorSession) error {
	s.ExpiresAt = s.ExpiresAt.UTC()
	return r.db.WithContext(ctx).Create(s).Error
}

// SessionVendorID returns the vendor owning token if the session has not
// expired by now. Missing and expired sessions both yield ErrNotFound.
func (r *VendorRepository) SessionVendorID(ctx context.Context, token string, now time.Time) (uint, error) {
	var s models.VendorSession
	err := r.db.WithContext(ctx).
		Select("vendor_id").
		Where("session_token = ? AND expires_at > ?", token, now.UTC()).
		First(&s).Error
	if err != nil {
		return 0, err
	}
	return s.VendorID, nil
}

// DeleteSession removes the session for token if there is one.
func (r *VendorRepository) DeleteSession(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Where("session_token = ?", token).
		Delete(&models.VendorSession{}).Error
}

// PruneSessions deletes every session that expired before now.
func (r *VendorRepository) PruneSessions(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&models.VendorSession{})
	return res.RowsAffected, res.Error
}

func incrementLoad(tx *gorm.DB, vendorID uint) error {
	return tx.Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		UpdateColumn("current_load", gorm.Expr("current_load + 1")).Error
}

func decrementLoad(tx *gorm.DB, vendorID uint) error {
	return tx.Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		UpdateColumn("current_load", gorm.Expr("CASE WHEN current_load > 0 THEN current_load - 1 ELSE 0 END")).Error
}
