package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campusprint/printhub/app/models"
	"github.com/campusprint/printhub/app/repositories"
	"github.com/campusprint/printhub/pkg/logger"
	"github.com/campusprint/printhub/pkg/metrics"
	"github.com/campusprint/printhub/pkg/validate"
)

// FileInput is one document and its print settings in a new order.
type FileInput struct {
	FileKey          string `json:"fileKey" validate:"required,max=512"`
	OriginalFilename string `json:"originalFilename" validate:"max=255"`
	PageCount        int    `json:"pageCount" validate:"gte=1"`
	ColorType        string `json:"colorType" validate:"required,oneof=bw color"`
	IsDoubleSided    bool   `json:"isDoubleSided"`
	PagesPerSide     int    `json:"pagesPerSide" validate:"omitempty,oneof=1 2 4"`
	Copies           int    `json:"copies" validate:"omitempty,gte=1,lte=100"`
	Comments         string `json:"comments" validate:"max=1000"`
}

// CreateOrderInput is the body of a new order.
type CreateOrderInput struct {
	Files          []FileInput `json:"files" validate:"required,min=1,dive"`
	DeliveryHostel string      `json:"deliveryHostel" validate:"required,max=64"`
	DeliveryGate   string      `json:"deliveryGate" validate:"required,max=64"`
	DeliveryPhone  string      `json:"deliveryPhone" validate:"required,max=32"`
	ExpectedTime   string      `json:"expectedTime" validate:"max=64"`
	Notes          string      `json:"notes" validate:"max=2000"`
}

func (in *CreateOrderInput) normalize() {
	in.DeliveryHostel = strings.TrimSpace(in.DeliveryHostel)
	in.DeliveryGate = strings.TrimSpace(in.DeliveryGate)
	in.DeliveryPhone = strings.TrimSpace(in.DeliveryPhone)
	in.ExpectedTime = strings.TrimSpace(in.ExpectedTime)
	in.Notes = strings.TrimSpace(in.Notes)
	for i := range in.Files {
		f := &in.Files[i]
		f.FileKey = strings.TrimSpace(f.FileKey)
		if f.PagesPerSide == 0 {
			f.PagesPerSide = 1
		}
		if f.Copies == 0 {
			f.Copies = 1
		}
	}
}

// OrderService runs the order state machine.
type OrderService struct {
	orders  *repositories.OrderRepository
	users   *repositories.UserRepository
	vendors *repositories.VendorRepository
	pricing *PricingService
	strict  bool
}

// NewOrderService returns an OrderService. With strict set, a status update
// must name the immediate successor of the current status.
func NewOrderService(
	orders *repositories.OrderRepository,
	users *repositories.UserRepository,
	vendors *repositories.VendorRepository,
	pricing *PricingService,
	strict bool,
) *OrderService {
	return &OrderService{orders: orders, users: users, vendors: vendors, pricing: pricing, strict: strict}
}

// Create prices and stores a new pending order for identityID. The least
// loaded active vendor is recorded as a suggestion.
func (s *OrderService) Create(ctx context.Context, identityID string, in CreateOrderInput) (*models.Order, error) {
	in.normalize()
	fields := validate.Struct(in)
	for i, f := range in.Files {
		if f.FileKey != "" && !OwnsKey(identityID, f.FileKey) {
			fields[fmt.Sprintf("files[%d].fileKey", i)] = "The file was not uploaded by you."
		}
	}
	if len(fields) > 0 {
		return nil, Invalid(fields)
	}

	user, err := s.users.FindByIdentityID(ctx, identityID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	cfg, err := s.pricing.Current(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]models.OrderFile, len(in.Files))
	for i, f := range in.Files {
		files[i] = models.OrderFile{
			FileKey:          f.FileKey,
			OriginalFilename: f.OriginalFilename,
			PageCount:        f.PageCount,
			ColorType:        models.ColorType(f.ColorType),
			IsDoubleSided:    f.IsDoubleSided,
			PagesPerSide:     f.PagesPerSide,
			Copies:           f.Copies,
			Comments:         f.Comments,
		}
	}

	vendorID, err := s.vendors.LeastLoaded(ctx)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:         user.ID,
		VendorID:       vendorID,
		Status:         models.StatusPending,
		TotalPrice:     Price(files, *cfg),
		DeliveryHostel: in.DeliveryHostel,
		DeliveryGate:   in.DeliveryGate,
		DeliveryPhone:  in.DeliveryPhone,
		ExpectedTime:   in.ExpectedTime,
		Notes:          in.Notes,
		Files:          files,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	logger.WithCtx(ctx).Info("order created",
		"order_id", order.ID, "user_id", user.ID, "files", len(files), "total", order.TotalPrice)
	return order, nil
}

// ListForUser returns the caller's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, identityID string) ([]models.Order, error) {
	user, err := s.user(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return s.orders.ListForUser(ctx, user.ID)
}

// GetForUser returns one of the caller's orders.
func (s *OrderService) GetForUser(ctx context.Context, identityID string, orderID uint) (*models.Order, error) {
	user, err := s.user(ctx, identityID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetForUser(ctx, user.ID, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// ListForVendor returns the vendor's work queue.
func (s *OrderService) ListForVendor(ctx context.Context, vendorID uint) ([]models.Order, error) {
	return s.orders.ListForVendor(ctx, vendorID)
}

// GetForVendor returns an order in the vendor's queue.
func (s *OrderService) GetForVendor(ctx context.Context, vendorID, orderID uint) (*models.Order, error) {
	order, err := s.orders.GetForVendor(ctx, vendorID, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// Accept claims a pending order for vendorID.
func (s *OrderService) Accept(ctx context.Context, vendorID, orderID uint) error {
	err := s.orders.Accept(ctx, orderID, vendorID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrOrderNotFound
	case errors.Is(err, repositories.ErrPrecondition):
		return ErrAlreadyAccepted
	case err != nil:
		return err
	}

	metrics.RecordTransition(string(models.StatusAccepted))
	logger.WithCtx(ctx).Info("order accepted", "order_id", orderID, "vendor_id", vendorID)
	return nil
}

// Advance moves an order the vendor owns to status.
func (s *OrderService) Advance(ctx context.Context, vendorID, orderID uint, status string) error {
	to := models.OrderStatus(status)
	if !to.VendorSettable() {
		return Invalid(map[string]string{
			"status": "The status field must be one of: printing, out_for_delivery, delivered.",
		})
	}

	var from []models.OrderStatus
	if s.strict {
		before := to.Before()
		from = before[len(before)-1:]
	}

	err := s.orders.Advance(ctx, orderID, vendorID, to, from...)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrOrderNotFound
	case errors.Is(err, repositories.ErrNotOwner):
		return ErrNotYourOrder
	case errors.Is(err, repositories.ErrPrecondition):
		return ErrNotAccepted
	case errors.Is(err, repositories.ErrOutOfOrder):
		return ErrInvalidTransition
	case err != nil:
		return err
	}

	metrics.RecordTransition(status)
	logger.WithCtx(ctx).Info("order status updated", "order_id", orderID, "vendor_id", vendorID, "status", status)
	return nil
}

func (s *OrderService) user(ctx context.Context, identityID string) (*models.User, error) {
	user, err := s.users.FindByIdentityID(ctx, identityID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
