// Package kernel wires repositories, services and controllers onto the
// infrastructure booted by pkg/app.
package kernel

import (
	"context"
	"time"

	"github.com/campusprint/printhub/app/repositories"
	"github.com/campusprint/printhub/app/routes"
	"github.com/campusprint/printhub/app/services"
	"github.com/campusprint/printhub/config"
	"github.com/campusprint/printhub/pkg/app"
	"github.com/campusprint/printhub/pkg/middleware"
	"github.com/campusprint/printhub/pkg/logger"
	"github.com/campusprint/printhub/pkg/router"
	"github.com/campusprint/printhub/pkg/schedule"
)

// Services is the domain layer built on one App.
type Services struct {
	Users   *services.UserService
	Vendors *services.VendorAuthService
	Orders  *services.OrderService
	Pricing *services.PricingService
	Files   *services.FileService
}

// NewServices builds the services over a's connections.
func NewServices(a *app.App) *Services {
	users := repositories.NewUserRepository(a.DB)
	vendors := repositories.NewVendorRepository(a.DB)
	orders := repositories.NewOrderRepository(a.DB)
	pricing := services.NewPricingService(repositories.NewPricingRepository(a.DB), a.Cache)

	return &Services{
		Users:   services.NewUserService(users, config.AllowedEmailDomain()),
		Vendors: services.NewVendorAuthService(vendors),
		Orders:  services.NewOrderService(orders, users, vendors, pricing, config.StrictTransitions()),
		Pricing: pricing,
		Files:   services.NewFileService(a.Disk, orders),
	}
}

// Routes returns the callback registering the API on a router.
func Routes(a *app.App, s *Services) func(*router.Router) {
	return func(r *router.Router) {
		routes.RegisterAPI(r, routes.Deps{
			Identity: a.Identity,
			Users:    s.Users,
			Vendors:  s.Vendors,
			Orders:   s.Orders,
			Pricing:  s.Pricing,
			Files:    s.Files,
			LoginLimiter: middleware.NewRateLimiter(
				config.VendorLoginPerMinute(),
				config.VendorLoginBurst(),
			),
		})
	}
}

// Build returns the complete HTTP router for a.
func Build(a *app.App) *router.Router {
	return a.Kernel(Routes(a, NewServices(a)))
}

// Housekeeping returns the scheduler run alongside the HTTP server.
func Housekeeping(s *Services, pruneEvery time.Duration) *schedule.Scheduler {
	sched := schedule.New()
	sched.Every(pruneEvery).Name("vendor-sessions:prune").WithoutOverlapping().Run(
		func(ctx context.Context) error {
			n, err := s.Vendors.PruneSessions(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("pruned expired vendor sessions", "count", n)
			}
			return nil
		})
	return sched
}
