package app

// pkg/app/kernel.go builds the root router. It has no imports of
// project-specific code; routes are passed in as callbacks.

import (
	"context"
	"net/http"
	"time"

	"github.com/campusprint/printhub/config"
	"github.com/campusprint/printhub/pkg/ctx"
	"github.com/campusprint/printhub/pkg/logger"
	"github.com/campusprint/printhub/pkg/metrics"
	"github.com/campusprint/printhub/pkg/middleware"
	"github.com/campusprint/printhub/pkg/reqid"
	"github.com/campusprint/printhub/pkg/response"
	"github.com/campusprint/printhub/pkg/router"
)

// Kernel returns a router carrying the global middleware, /metrics,
// /healthz and every route registered by the callbacks.
func (a *App) Kernel(routes ...func(*router.Router)) *router.Router {
	r := router.New()

	if err := ctx.TrustProxies(config.TrustedProxies()...); err != nil {
		logger.Warn("ignoring trusted proxy entries", "error", err)
	}

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics, outermost for accurate total latency
	//  2. Request ID, before anything logs
	//  3. Recovery, logs the panic with the request id
	//  4. Logger
	//  5. CORS, so preflights are answered before the rate limiter
	//  6. Rate limiter
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(config.CORSOrigins())))
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(
		config.RateLimitPerMinute(),
		config.RateLimitBurst(),
	)))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", a.health)

	for _, fn := range routes {
		fn(r)
	}
	return r
}

// health reports ok when the database answers a ping.
func (a *App) health(w http.ResponseWriter, r *http.Request) {
	if a.DB != nil {
		c, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := a.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c)
		}
		if err != nil {
			response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
