package controllers

import (
	"github.com/campusprint/printhub/app/services"
	"github.com/campusprint/printhub/pkg/ctx"
	"github.com/campusprint/printhub/pkg/resource"
	"github.com/campusprint/printhub/pkg/session"
)

// VendorController is the print shop's side of the API.
type VendorController struct {
	auth   *services.VendorAuthService
	orders *services.OrderService
	files  *services.FileService
}

func NewVendorController(auth *services.VendorAuthService, orders *services.OrderService, files *services.FileService) *VendorController {
	return &VendorController{auth: auth, orders: orders, files: files}
}

type vendorLoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/vendor/login.
func (v *VendorController) Login(c *ctx.Context) {
	var in vendorLoginInput
	if !decode(c, &in) {
		return
	}
	token, err := v.auth.Login(c.Context(), in.Username, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	session.Vendor().Issue(c.W, token)
	c.Success()
}

// Logout handles POST /api/vendor/logout. It succeeds without a session.
func (v *VendorController) Logout(c *ctx.Context) {
	if err := v.auth.Logout(c.Context(), session.Token(c.R, session.VendorCookie)); err != nil {
		fail(c, err)
		return
	}
	session.Vendor().Clear(c.W)
	c.Success()
}

// Me handles GET /api/vendor/me.
func (v *VendorController) Me(c *ctx.Context) {
	vendor, err := v.auth.Profile(c.Context(), currentVendor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(resource.Item(*vendor, vendorProfileResource))
}

// Orders handles GET /api/vendor/orders: the claimable pool plus the
// vendor's own work, pending first.
func (v *VendorController) Orders(c *ctx.Context) {
	orders, err := v.orders.ListForVendor(c.Context(), currentVendor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(resource.Collection(orders, vendorOrderResource))
}

// Show handles GET /api/vendor/orders/{id}.
func (v *VendorController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		fail(c, services.ErrOrderNotFound)
		return
	}
	order, err := v.orders.GetForVendor(c.Context(), currentVendor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(resource.Item(*order, vendorOrderResource))
}

// Accept handles POST /api/vendor/orders/{id}/accept.
func (v *VendorController) Accept(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		fail(c, services.ErrOrderNotFound)
		return
	}
	if err := v.orders.Accept(c.Context(), currentVendor(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Success()
}

type statusInput struct {
	Status string `json:"status" validate:"required,oneof=printing out_for_delivery delivered"`
}

// UpdateStatus handles PATCH /api/vendor/orders/{id}/status.
func (v *VendorController) UpdateStatus(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		fail(c, services.ErrOrderNotFound)
		return
	}
	var in statusInput
	if !c.BindJSON(&in) {
		return
	}
	if err := v.orders.Advance(c.Context(), currentVendor(c), id, in.Status); err != nil {
		fail(c, err)
		return
	}
	c.Success()
}

// File handles GET /api/vendor/files/*.
func (v *VendorController) File(c *ctx.Context) {
	key := wildcardKey(c)
	obj, err := v.files.OpenForVendor(c.Context(), currentVendor(c), key)
	if err != nil {
		fail(c, err)
		return
	}
	serveObject(c, key, obj)
}
