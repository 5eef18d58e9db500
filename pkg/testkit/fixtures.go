package testkit

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/campusprint/printhub/pkg/cache"
	"github.com/campusprint/printhub/pkg/database"
	"github.com/campusprint/printhub/pkg/migration"
	"github.com/campusprint/printhub/pkg/storage"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	// register the schema migrations
	_ "github.com/campusprint/printhub/database/migrations"
)

// NewDB returns a private in-memory sqlite database with every migration
// applied. It is closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatalf("testkit: open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := migration.New(db).Run(); err != nil {
		t.Fatalf("testkit: migrate: %v", err)
	}
	return db
}

// NewCache returns a cache backed by a fresh miniredis server.
func NewCache(t testing.TB) (*cache.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.New(rdb), mr
}

// NewDisk returns a local disk rooted in a temp directory.
func NewDisk(t testing.TB) *storage.Local {
	t.Helper()

	d, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("testkit: local disk: %v", err)
	}
	return d
}
