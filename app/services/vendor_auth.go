package services

import (
	"context"
	"errors"
	"time"

	"github.com/campusprint/printhub/app/models"
	"github.com/campusprint/printhub/app/repositories"
	"github.com/campusprint/printhub/pkg/auth"
	"github.com/campusprint/printhub/pkg/logger"
	"github.com/campusprint/printhub/pkg/metrics"
	"github.com/campusprint/printhub/pkg/session"
	"github.com/google/uuid"
)

// VendorAuthService logs vendors in with a password and tracks their
// opaque session tokens.
type VendorAuthService struct {
	vendors *repositories.VendorRepository
	now     func() time.Time
}

func NewVendorAuthService(vendors *repositories.VendorRepository) *VendorAuthService {
	return &VendorAuthService{vendors: vendors, now: time.Now}
}

// Login verifies the credentials of an active vendor and opens a new
// session. Unknown usernames, inactive vendors and wrong passwords all
// return ErrInvalidCredentials.
func (s *VendorAuthService) Login(ctx context.Context, username, password string) (string, error) {
	v, err := s.vendors.FindActiveByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		metrics.VendorLogins.WithLabelValues("rejected").Inc()
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !auth.CheckPassword(v.PasswordHash, password) {
		metrics.VendorLogins.WithLabelValues("rejected").Inc()
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	err = s.vendors.CreateSession(ctx, &models.VendorSession{
		VendorID:     v.ID,
		SessionToken: token,
		ExpiresAt:    s.now().Add(session.VendorTTL),
	})
	if err != nil {
		return "", err
	}

	metrics.VendorLogins.WithLabelValues("ok").Inc()
	logger.WithCtx(ctx).Info("vendor logged in", "vendor_id", v.ID)
	return token, nil
}

// VerifySession returns the vendor owning token. Unknown and expired
// tokens both yield ErrInvalidSession.
func (s *VendorAuthService) VerifySession(ctx context.Context, token string) (uint, error) {
	if token == "" {
		return 0, ErrInvalidSession
	}
	id, err := s.vendors.SessionVendorID(ctx, token, s.now())
	if errors.Is(err, repositories.ErrNotFound) {
		return 0, ErrInvalidSession
	}
	return id, err
}

// Logout ends the session for token. It never fails for unknown tokens.
func (s *VendorAuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.vendors.DeleteSession(ctx, token)
}

// Profile returns the vendor's public profile.
func (s *VendorAuthService) Profile(ctx context.Context, vendorID uint) (*models.Vendor, error) {
	v, err := s.vendors.FindByID(ctx, vendorID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrVendorNotFound
	}
	return v, err
}

// PruneSessions removes expired session rows and returns how many went.
func (s *VendorAuthService) PruneSessions(ctx context.Context) (int64, error) {
	return s.vendors.PruneSessions(ctx, s.now())
}

// CreateVendor provisions a vendor with a bcrypt-hashed password.
func (s *VendorAuthService) CreateVendor(ctx context.Context, v *models.Vendor, password string) error {
	fields := map[string]string{}
	if v.Username == "" {
		fields["username"] = "The username field is required."
	}
	if v.ShopName == "" {
		fields["shop_name"] = "The shop_name field is required."
	}
	if len(password) < 8 {
		fields["password"] = "The password must be at least 8 characters."
	}
	if len(fields) > 0 {
		return Invalid(fields)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	v.PasswordHash = hash
	v.IsActive = true
	return s.vendors.Create(ctx, v)
}
