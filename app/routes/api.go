package routes

import (
	"github.com/campusprint/printhub/app/controllers"
	"github.com/campusprint/printhub/app/services"
	"github.com/campusprint/printhub/pkg/ctx"
	"github.com/campusprint/printhub/pkg/identity"
	"github.com/campusprint/printhub/pkg/middleware"
	"github.com/campusprint/printhub/pkg/router"
	"github.com/campusprint/printhub/pkg/session"
)

// Deps is what the API routes are built from.
type Deps struct {
	Identity identity.Provider
	Users    *services.UserService
	Vendors  *services.VendorAuthService
	Orders   *services.OrderService
	Pricing  *services.PricingService
	Files    *services.FileService

	// LoginLimiter throttles vendor password attempts per client IP. Nil
	// disables the extra limit.
	LoginLimiter *middleware.RateLimiter
}

func RegisterAPI(r *router.Router, d Deps) {
	authController := controllers.NewAuthController(d.Identity, d.Users)
	orderController := controllers.NewOrderController(d.Orders, d.Pricing)
	fileController := controllers.NewFileController(d.Files)
	vendorController := controllers.NewVendorController(d.Vendors, d.Orders, d.Files)

	student := middleware.RequireSession(session.StudentCookie,
		controllers.StudentAuthenticator(d.Identity, d.Users), controllers.AuthFailure)
	vendor := middleware.RequireSession(session.VendorCookie,
		controllers.VendorAuthenticator(d.Vendors), controllers.AuthFailure)

	var loginGuards []router.Middleware
	if d.LoginLimiter != nil {
		loginGuards = append(loginGuards, middleware.RateLimit(d.LoginLimiter))
	}

	api := r.Group("/api")
	api.Get("/oauth/google/redirect_url", "auth.redirect", ctx.Wrap(authController.RedirectURL))
	api.Post("/sessions", "auth.session", ctx.Wrap(authController.CreateSession))
	api.Get("/logout", "auth.logout", ctx.Wrap(authController.Logout))
	api.Get("/pricing", "pricing.show", ctx.Wrap(orderController.Pricing))

	me := api.Group("", student)
	me.Get("/users/me", "users.me", ctx.Wrap(authController.Me))
	me.Patch("/profile", "users.profile", ctx.Wrap(authController.UpdateProfile))
	me.Post("/files/upload", "files.upload", ctx.Wrap(fileController.Upload))
	me.Get("/files/*", "files.show", ctx.Wrap(fileController.Show))
	me.Post("/orders", "orders.store", ctx.Wrap(orderController.Store))
	me.Get("/orders", "orders.index", ctx.Wrap(orderController.Index))
	me.Get("/orders/{id}", "orders.show", ctx.Wrap(orderController.Show))

	vendors := api.Group("/vendor")
	vendors.Post("/login", "vendor.login", ctx.Wrap(vendorController.Login), loginGuards...)
	vendors.Post("/logout", "vendor.logout", ctx.Wrap(vendorController.Logout))

	shop := vendors.Group("", vendor)
	shop.Get("/me", "vendor.me", ctx.Wrap(vendorController.Me))
	shop.Get("/orders", "vendor.orders.index", ctx.Wrap(vendorController.Orders))
	shop.Get("/orders/{id}", "vendor.orders.show", ctx.Wrap(vendorController.Show))
	shop.Post("/orders/{id}/accept", "vendor.orders.accept", ctx.Wrap(vendorController.Accept))
	shop.Patch("/orders/{id}/status", "vendor.orders.status", ctx.Wrap(vendorController.UpdateStatus))
	shop.Get("/files/*", "vendor.files.show", ctx.Wrap(vendorController.File))
}
