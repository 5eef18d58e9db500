// Package app boots the infrastructure a printhub process runs on: the
// database, the Redis cache, the blob disk, the identity provider and the
// optional MongoDB log sink. It knows nothing about routes or services;
// commands pick the pieces they need.
//
//	a, err := app.Boot(ctx)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusprint/printhub/config"
	"github.com/campusprint/printhub/pkg/cache"
	"github.com/campusprint/printhub/pkg/database"
	"github.com/campusprint/printhub/pkg/identity"
	"github.com/campusprint/printhub/pkg/logger"
	"github.com/campusprint/printhub/pkg/storage"
	"gorm.io/gorm"
)

// App holds the connections shared by every request.
type App struct {
	DB       *gorm.DB
	Cache    *cache.Store // nil when Redis is unreachable
	Disk     storage.Disk
	Identity identity.Provider

	closers []func() error
}

// BootDB loads configuration and opens only the database. Migrations,
// seeders and the admin commands need nothing else.
func BootDB() (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	db, err := database.Connect()
	if err != nil {
		return nil, err
	}

	a := &App{DB: db}
	a.onClose(func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	return a, nil
}

// Boot opens everything the HTTP server needs. A Redis outage is tolerated:
// the pricing cache is skipped and the signed identity driver stops
// enforcing single-use codes.
func Boot(ctx context.Context) (*App, error) {
	a, err := BootDB()
	if err != nil {
		return nil, err
	}

	if err := a.attachLogSink(ctx); err != nil {
		logger.Warn("mongo log sink disabled", "error", err.Error())
	}

	store, err := cache.Connect(ctx)
	if err != nil {
		logger.Warn("cache unavailable, continuing without it", "error", err.Error())
	} else {
		a.Cache = store
		a.onClose(store.Close)
	}

	if a.Disk, err = storage.Connect(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if a.Identity, err = identity.Connect(a.Cache); err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("application booted",
		"env", config.AppEnv(),
		"db", config.DatabaseDriver(),
		"storage", config.StorageDefault(),
		"identity", config.IdentityDriver(),
		"cache", a.Cache.Available(),
	)
	return a, nil
}

func (a *App) attachLogSink(ctx context.Context) error {
	uri := config.LogMongoURI()
	if uri == "" {
		return nil
	}
	h, err := logger.NewMongoHandler(ctx, uri, config.LogMongoDatabase(), config.LogMongoCollection())
	if err != nil {
		return err
	}
	logger.Attach(h)
	a.onClose(func() error {
		h.Close()
		return nil
	})
	return nil
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
