package app

// pkg/app/server.go bridges App → internal/server: it builds the kernel and
// hands it to the server that binds the port.

import (
	"context"
	"net"

	"github.com/campusprint/printhub/config"
	"github.com/campusprint/printhub/internal/server"
	"github.com/campusprint/printhub/pkg/router"
)

// Serve runs the HTTP server on APP_PORT until ctx is cancelled.
func (a *App) Serve(ctx context.Context, routes ...func(*router.Router)) error {
	return server.Serve(ctx, net.JoinHostPort("", config.AppPort()), a.Kernel(routes...).Handler())
}
